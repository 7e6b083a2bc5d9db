package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

type PostgresAnalysisRepository struct {
	db *sqlx.DB
}

func NewPostgresAnalysisRepository(db *sqlx.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// analysisRow flattens the nested date range into two columns.
type analysisRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	AnalysisType string    `db:"analysis_type"`
	Content      string    `db:"content"`
	RangeStart   string    `db:"range_start"`
	RangeEnd     string    `db:"range_end"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *analysisRow) toDomain() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		ID:           r.ID,
		UserID:       r.UserID,
		AnalysisType: domain.AnalysisType(r.AnalysisType),
		Content:      r.Content,
		DateRange:    domain.DateRange{Start: r.RangeStart, End: r.RangeEnd},
		CreatedAt:    r.CreatedAt,
	}
}

func (r *PostgresAnalysisRepository) Create(ctx context.Context, result *domain.AnalysisResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	query := `
		INSERT INTO analysis_results (
			id, user_id, analysis_type, content,
			range_start, range_end, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		result.ID, result.UserID, string(result.AnalysisType), result.Content,
		result.DateRange.Start, result.DateRange.End, result.CreatedAt,
	)
	if err != nil {
		if isPGError(err, "23503") {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresAnalysisRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AnalysisResult, error) {
	rows := []analysisRow{}

	query := `
		SELECT * FROM analysis_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, err
	}

	results := make([]*domain.AnalysisResult, 0, len(rows))
	for i := range rows {
		results = append(results, rows[i].toDomain())
	}
	return results, nil
}

func (r *PostgresAnalysisRepository) Latest(ctx context.Context, userID string, analysisType domain.AnalysisType) (*domain.AnalysisResult, error) {
	var row analysisRow

	query := `
		SELECT * FROM analysis_results
		WHERE user_id = $1 AND analysis_type = $2
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &row, query, userID, string(analysisType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}
