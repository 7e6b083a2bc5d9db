package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/innerflow/flow-engine/internal/core/domain"
)

// isPGError matches a Postgres error code across both drivers in use
// (pgx for the pools, lib/pq in some tooling paths).
func isPGError(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return true
	}
	return false
}

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// userProfileRow flattens the nested settings objects into jsonb
// columns on the users table.
type userProfileRow struct {
	domain.UserProfile
	NotificationsJSON []byte `db:"notification_settings"`
	TrackingJSON      []byte `db:"tracking_settings"`
}

func newUserProfileRow(p *domain.UserProfile) (*userProfileRow, error) {
	notifications, err := json.Marshal(p.NotificationSettings)
	if err != nil {
		return nil, err
	}
	tracking, err := json.Marshal(p.TrackingSettings)
	if err != nil {
		return nil, err
	}
	return &userProfileRow{
		UserProfile:       *p,
		NotificationsJSON: notifications,
		TrackingJSON:      tracking,
	}, nil
}

func (r *userProfileRow) toDomain() *domain.UserProfile {
	p := r.UserProfile
	p.NotificationSettings = domain.DefaultNotificationSettings()
	p.TrackingSettings = domain.DefaultTrackingSettings()

	// Missing or corrupt settings fall back to defaults.
	if len(r.NotificationsJSON) > 0 {
		_ = json.Unmarshal(r.NotificationsJSON, &p.NotificationSettings)
	}
	if len(r.TrackingJSON) > 0 {
		_ = json.Unmarshal(r.TrackingJSON, &p.TrackingSettings)
	}
	return &p
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User, profile *domain.UserProfile) error {
	row, err := newUserProfileRow(profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (
			id, email, password_hash, name, last_name,
			age, gender, weight, height, medical_condition, medicines,
			notification_settings, tracking_settings,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13,
			$14, $15
		)`

	_, err = r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, row.Name, row.LastName,
		row.Age, row.Gender, row.Weight, row.Height, row.MedicalCondition, row.Medicines,
		row.NotificationsJSON, row.TrackingJSON,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isPGError(err, "23505") {
			return domain.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) ListIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY created_at ASC`); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresUserRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var row userProfileRow
	query := `
		SELECT id AS user_id, name, email, last_name,
		       age, gender, weight, height, medical_condition, medicines,
		       notification_settings, tracking_settings,
		       created_at, updated_at
		FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, profile *domain.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()

	row, err := newUserProfileRow(profile)
	if err != nil {
		return err
	}

	query := `
		UPDATE users SET
			name = $1, last_name = $2,
			age = $3, gender = $4, weight = $5, height = $6,
			medical_condition = $7, medicines = $8,
			notification_settings = $9, tracking_settings = $10,
			updated_at = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		row.Name, row.LastName,
		row.Age, row.Gender, row.Weight, row.Height,
		row.MedicalCondition, row.Medicines,
		row.NotificationsJSON, row.TrackingJSON,
		profile.UpdatedAt, profile.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}
