package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

type PostgresDailyLogRepository struct {
	db *sqlx.DB
}

func NewPostgresDailyLogRepository(db *sqlx.DB) *PostgresDailyLogRepository {
	return &PostgresDailyLogRepository{db: db}
}

// dailyLogRow flattens the activities list into a jsonb column.
type dailyLogRow struct {
	domain.DailyLog
	ActivitiesJSON []byte `db:"activities"`
}

func newDailyLogRow(l *domain.DailyLog) (*dailyLogRow, error) {
	activities := l.Activities
	if activities == nil {
		activities = []string{}
	}
	data, err := json.Marshal(activities)
	if err != nil {
		return nil, err
	}
	return &dailyLogRow{DailyLog: *l, ActivitiesJSON: data}, nil
}

func (r *dailyLogRow) toDomain() *domain.DailyLog {
	l := r.DailyLog
	if len(r.ActivitiesJSON) > 0 {
		// Corrupt activities degrade to an empty list, never an error.
		if err := json.Unmarshal(r.ActivitiesJSON, &l.Activities); err != nil {
			l.Activities = nil
		}
	}
	l.FillDefaults()
	return &l
}

func (r *PostgresDailyLogRepository) Upsert(ctx context.Context, log *domain.DailyLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.UpdatedAt = time.Now().UTC()

	row, err := newDailyLogRow(log)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO daily_logs (
			id, user_id, date, mood,
			morning_mood, general_mood, morning_energy, general_energy,
			stress_level, digestive_flow, pain_level,
			time_to_bed, time_woke_up, activities,
			food_breakfast, food_snack1, food_lunch, food_snack2, food_dinner, food_drinks,
			medicines, digestive_notes, pain_notes, notes,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :date, :mood,
			:morning_mood, :general_mood, :morning_energy, :general_energy,
			:stress_level, :digestive_flow, :pain_level,
			:time_to_bed, :time_woke_up, :activities,
			:food_breakfast, :food_snack1, :food_lunch, :food_snack2, :food_dinner, :food_drinks,
			:medicines, :digestive_notes, :pain_notes, :notes,
			:created_at, :updated_at
		)
		ON CONFLICT (user_id, date) DO UPDATE SET
			mood = EXCLUDED.mood,
			morning_mood = EXCLUDED.morning_mood,
			general_mood = EXCLUDED.general_mood,
			morning_energy = EXCLUDED.morning_energy,
			general_energy = EXCLUDED.general_energy,
			stress_level = EXCLUDED.stress_level,
			digestive_flow = EXCLUDED.digestive_flow,
			pain_level = EXCLUDED.pain_level,
			time_to_bed = EXCLUDED.time_to_bed,
			time_woke_up = EXCLUDED.time_woke_up,
			activities = EXCLUDED.activities,
			food_breakfast = EXCLUDED.food_breakfast,
			food_snack1 = EXCLUDED.food_snack1,
			food_lunch = EXCLUDED.food_lunch,
			food_snack2 = EXCLUDED.food_snack2,
			food_dinner = EXCLUDED.food_dinner,
			food_drinks = EXCLUDED.food_drinks,
			medicines = EXCLUDED.medicines,
			digestive_notes = EXCLUDED.digestive_notes,
			pain_notes = EXCLUDED.pain_notes,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, row)
	if err != nil {
		if isPGError(err, "23503") {
			return domain.ErrUserNotFound
		}
		return err
	}
	defer rows.Close()

	// On conflict the stored id and created_at win over the fresh ones.
	if rows.Next() {
		if err := rows.Scan(&log.ID, &log.CreatedAt); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r *PostgresDailyLogRepository) GetByDate(ctx context.Context, userID, date string) (*domain.DailyLog, error) {
	var row dailyLogRow
	query := `SELECT * FROM daily_logs WHERE user_id = $1 AND date = $2`

	err := r.db.GetContext(ctx, &row, query, userID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresDailyLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.DailyLog, error) {
	rows := []dailyLogRow{}

	query := `
		SELECT * FROM daily_logs
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, err
	}

	logs := make([]*domain.DailyLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toDomain())
	}
	return logs, nil
}

func (r *PostgresDailyLogRepository) ListRange(ctx context.Context, userID, start, end string) ([]*domain.DailyLog, error) {
	rows := []dailyLogRow{}

	query := `
		SELECT * FROM daily_logs
		WHERE user_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC`

	if err := r.db.SelectContext(ctx, &rows, query, userID, start, end); err != nil {
		return nil, err
	}

	logs := make([]*domain.DailyLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].toDomain())
	}
	return logs, nil
}

func (r *PostgresDailyLogRepository) CountSince(ctx context.Context, userID, since string) (int, error) {
	var count int
	query := `SELECT count(*) FROM daily_logs WHERE user_id = $1 AND date >= $2`

	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresDailyLogRepository) Delete(ctx context.Context, userID, date string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_logs WHERE user_id = $1 AND date = $2`, userID, date)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrLogNotFound
	}

	return nil
}
