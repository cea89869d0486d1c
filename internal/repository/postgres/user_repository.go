package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
)

// userRepository implements repositories.UserRepository
type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *pgxpool.Pool) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, google_id, timezone, created_at FROM app_user WHERE id = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.GoogleID, &user.Timezone, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpsertByGoogleID(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO app_user (email, google_id, timezone, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (google_id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, timezone, created_at
	`
	return r.db.QueryRow(ctx, query,
		user.Email, user.GoogleID, user.Timezone, user.CreatedAt,
	).Scan(&user.ID, &user.Timezone, &user.CreatedAt)
}

func (r *userRepository) UpdateTimezone(ctx context.Context, userID int64, timezone string) error {
	tag, err := r.db.Exec(ctx, `UPDATE app_user SET timezone = $2 WHERE id = $1`, userID, timezone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// sessionRepository implements repositories.SessionRepository
type sessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *pgxpool.Pool) repositories.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO app_session (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt,
	).Scan(&session.ID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT id, token, user_id, expires_at, created_at FROM app_session WHERE token = $1`

	var session models.Session
	err := r.db.QueryRow(ctx, query, token).Scan(
		&session.ID, &session.Token, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM app_session WHERE token = $1`, token)
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM app_session WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
