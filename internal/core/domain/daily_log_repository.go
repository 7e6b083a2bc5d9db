package domain

import "context"

type DailyLogRepository interface {
	// Upsert writes one log keyed on (user, date): an existing row for
	// the same calendar date is overwritten last-write-wins, stamping
	// UpdatedAt; otherwise an id is generated and the row inserted.
	Upsert(ctx context.Context, log *DailyLog) error

	// GetByDate retrieves the single log for one user and date key.
	GetByDate(ctx context.Context, userID, date string) (*DailyLog, error)

	// ListRecent returns the most recent N logs, newest date first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*DailyLog, error)

	// ListRange returns logs with date in [start, end] inclusive,
	// ascending by date. This is the batch-job fetch path.
	ListRange(ctx context.Context, userID, start, end string) ([]*DailyLog, error)

	// CountSince counts logs with date >= since. Used only by the
	// data-sufficiency gate.
	CountSince(ctx context.Context, userID, since string) (int, error)

	// Delete removes the log for one date.
	Delete(ctx context.Context, userID, date string) error
}
