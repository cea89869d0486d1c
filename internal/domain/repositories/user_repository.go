package repositories

import (
	"context"
	"time"

	"diswantin/internal/domain/models"
)

// UserRepository defines the interface for account data operations
type UserRepository interface {
	// FindByID returns the user or domain.ErrNotFound
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// UpsertByGoogleID inserts the user or refreshes the email of an
	// existing account with the same Google subject; the user's ID is
	// populated either way.
	UpsertByGoogleID(ctx context.Context, user *models.User) error

	// UpdateTimezone stores a new IANA zone name for the user
	UpdateTimezone(ctx context.Context, userID int64, timezone string) error
}

// SessionRepository defines the interface for login session storage
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error

	// FindByToken returns the session or domain.ErrNotFound
	FindByToken(ctx context.Context, token string) (*models.Session, error)

	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions past their expiry and reports how
	// many were swept.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
