package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"diswantin/internal/domain"
	"diswantin/internal/repository/memory"
)

func newTestAuthService(ttl time.Duration) *AuthService {
	return NewAuthService(memory.NewUserRepository(), memory.NewSessionRepository(), ttl, nil)
}

func TestSignInIssuesSession(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	profile := GoogleProfile{Subject: "g-123", Email: "a@example.com"}
	session, err := s.SignIn(ctx, profile, "Europe/Berlin", testNow)
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if session.Token == "" {
		t.Error("session token is empty")
	}
	if !session.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want now + ttl", session.ExpiresAt)
	}

	user, err := s.Authenticate(ctx, session.Token, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Email != "a@example.com" {
		t.Errorf("user email = %q", user.Email)
	}
	if user.Timezone != "Europe/Berlin" {
		t.Errorf("user timezone = %q, want Europe/Berlin", user.Timezone)
	}
}

func TestSignInKeepsExistingTimezone(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	profile := GoogleProfile{Subject: "g-123", Email: "a@example.com"}
	if _, err := s.SignIn(ctx, profile, "Europe/Berlin", testNow); err != nil {
		t.Fatal(err)
	}

	// A later sign-in from another device must not clobber the zone.
	session, err := s.SignIn(ctx, profile, "America/Chicago", testNow.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	user, err := s.Authenticate(ctx, session.Token, testNow.Add(2*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if user.Timezone != "Europe/Berlin" {
		t.Errorf("timezone = %q, want the original Europe/Berlin", user.Timezone)
	}
}

func TestSignInValidation(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	if _, err := s.SignIn(ctx, GoogleProfile{Email: "a@example.com"}, "", testNow); !errors.Is(err, domain.ErrBadParamInput) {
		t.Errorf("SignIn(no subject) error = %v, want ErrBadParamInput", err)
	}
	if _, err := s.SignIn(ctx, GoogleProfile{Subject: "g-1", Email: "a@example.com"}, "Mars/Olympus", testNow); !errors.Is(err, domain.ErrBadParamInput) {
		t.Errorf("SignIn(bad timezone) error = %v, want ErrBadParamInput", err)
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	session, err := s.SignIn(ctx, GoogleProfile{Subject: "g-1", Email: "a@example.com"}, "", testNow)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Authenticate(ctx, session.Token, testNow.Add(2*time.Hour))
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("Authenticate(expired) error = %v, want ErrSessionExpired", err)
	}

	// The expired session is removed on sight, so the retry reads as an
	// unknown token.
	_, err = s.Authenticate(ctx, session.Token, testNow)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Authenticate(removed) error = %v, want ErrUnauthorized", err)
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	s := newTestAuthService(time.Hour)

	if _, err := s.Authenticate(context.Background(), "nope", testNow); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Authenticate(unknown) error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.Authenticate(context.Background(), "", testNow); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Authenticate(empty) error = %v, want ErrUnauthorized", err)
	}
}

func TestSignOut(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	session, err := s.SignIn(ctx, GoogleProfile{Subject: "g-1", Email: "a@example.com"}, "", testNow)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := s.Authenticate(ctx, session.Token, testNow); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Authenticate(after sign-out) error = %v, want ErrUnauthorized", err)
	}

	// Signing out an unknown token is not an error.
	if err := s.SignOut(ctx, "already-gone"); err != nil {
		t.Errorf("SignOut(unknown) error = %v", err)
	}
}

func TestUpdateTimezoneValidation(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	session, err := s.SignIn(ctx, GoogleProfile{Subject: "g-1", Email: "a@example.com"}, "", testNow)
	if err != nil {
		t.Fatal(err)
	}
	user, err := s.Authenticate(ctx, session.Token, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateTimezone(ctx, user.ID, "Not/AZone"); !errors.Is(err, domain.ErrBadParamInput) {
		t.Errorf("UpdateTimezone(bad zone) error = %v, want ErrBadParamInput", err)
	}
	if err := s.UpdateTimezone(ctx, user.ID, "Asia/Tokyo"); err != nil {
		t.Fatalf("UpdateTimezone() error = %v", err)
	}

	updated, err := s.Authenticate(ctx, session.Token, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Timezone != "Asia/Tokyo" {
		t.Errorf("timezone = %q, want Asia/Tokyo", updated.Timezone)
	}
}

func TestSweepExpiredSessions(t *testing.T) {
	s := newTestAuthService(time.Hour)
	ctx := context.Background()

	profile := GoogleProfile{Subject: "g-1", Email: "a@example.com"}
	old, err := s.SignIn(ctx, profile, "", testNow.Add(-2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := s.SignIn(ctx, profile, "", testNow)
	if err != nil {
		t.Fatal(err)
	}

	swept, err := s.SweepExpiredSessions(ctx, testNow)
	if err != nil {
		t.Fatalf("SweepExpiredSessions() error = %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	if _, err := s.Authenticate(ctx, old.Token, testNow); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("old session error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.Authenticate(ctx, fresh.Token, testNow); err != nil {
		t.Errorf("fresh session error = %v, want success", err)
	}
}
