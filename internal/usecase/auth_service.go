package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
)

// DefaultSessionTTL is how long a login session stays valid
const DefaultSessionTTL = 30 * 24 * time.Hour

// GoogleProfile is the already-verified identity handed over by the
// OAuth exchange, which happens outside this service.
type GoogleProfile struct {
	Subject string
	Email   string
}

// AuthService resolves cookie sessions to users and signs users in
// from verified OAuth profiles.
type AuthService struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, sessions repositories.SessionRepository, ttl time.Duration, logger *zap.Logger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, sessions: sessions, ttl: ttl, logger: logger}
}

// SignIn upserts the account for a verified Google profile and issues
// a fresh session. The timezone applies only to first-time sign-ins;
// existing users keep their stored zone.
func (s *AuthService) SignIn(ctx context.Context, profile GoogleProfile, timezone string, now time.Time) (*models.Session, error) {
	if profile.Subject == "" || profile.Email == "" {
		return nil, fmt.Errorf("%w: profile subject and email are required", domain.ErrBadParamInput)
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", domain.ErrBadParamInput, timezone)
	}

	user := &models.User{
		Email:     profile.Email,
		GoogleID:  profile.Subject,
		Timezone:  timezone,
		CreatedAt: now,
	}
	if err := s.users.UpsertByGoogleID(ctx, user); err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", zap.Int64("user_id", user.ID))
	return session, nil
}

// Authenticate resolves a session token to its user. Expired sessions
// are removed on sight.
func (s *AuthService) Authenticate(ctx context.Context, token string, now time.Time) (*models.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.Expired(now) {
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrSessionExpired
	}
	return s.users.FindByID(ctx, session.UserID)
}

// SignOut discards the session; unknown tokens are not an error
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// UpdateTimezone stores a new IANA zone for the user after validating
// that it loads.
func (s *AuthService) UpdateTimezone(ctx context.Context, userID int64, timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", domain.ErrBadParamInput, timezone)
	}
	return s.users.UpdateTimezone(ctx, userID, timezone)
}

// SweepExpiredSessions deletes sessions past their expiry. Run
// periodically from the cron scheduler.
func (s *AuthService) SweepExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	swept, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.logger.Info("expired sessions swept", zap.Int64("count", swept))
	}
	return swept, nil
}
