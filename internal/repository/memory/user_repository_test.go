package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
)

func TestUpsertByGoogleID(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	first := &models.User{GoogleID: "g-123", Email: "old@example.com", Timezone: "UTC"}
	if err := r.UpsertByGoogleID(ctx, first); err != nil {
		t.Fatalf("UpsertByGoogleID() error = %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected an id to be assigned")
	}

	// Signing in again with a changed email updates the row in place.
	again := &models.User{GoogleID: "g-123", Email: "new@example.com"}
	if err := r.UpsertByGoogleID(ctx, again); err != nil {
		t.Fatal(err)
	}
	if again.ID != first.ID {
		t.Errorf("second upsert id = %d, want %d", again.ID, first.ID)
	}

	stored, err := r.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Email != "new@example.com" {
		t.Errorf("email = %q, want updated email", stored.Email)
	}
	if stored.Timezone != "UTC" {
		t.Errorf("timezone = %q, want preserved %q", stored.Timezone, "UTC")
	}
}

func TestUpdateTimezone(t *testing.T) {
	r := NewUserRepository()
	ctx := context.Background()

	user := &models.User{GoogleID: "g-1", Email: "a@example.com", Timezone: "UTC"}
	if err := r.UpsertByGoogleID(ctx, user); err != nil {
		t.Fatal(err)
	}

	if err := r.UpdateTimezone(ctx, user.ID, "America/New_York"); err != nil {
		t.Fatalf("UpdateTimezone() error = %v", err)
	}

	stored, err := r.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Timezone != "America/New_York" {
		t.Errorf("timezone = %q, want America/New_York", stored.Timezone)
	}

	if err := r.UpdateTimezone(ctx, 999, "UTC"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateTimezone(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	r := NewSessionRepository()
	ctx := context.Background()
	now := time.Now()

	session := &models.Session{
		UserID:    1,
		Token:     "tok-1",
		ExpiresAt: now.Add(time.Hour),
	}
	if err := r.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := r.Create(ctx, &models.Session{Token: "tok-1"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Create(duplicate token) error = %v, want ErrConflict", err)
	}

	found, err := r.FindByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindByToken() error = %v", err)
	}
	if found.UserID != 1 {
		t.Errorf("session user = %d, want 1", found.UserID)
	}

	if err := r.Delete(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.FindByToken(ctx, "tok-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("FindByToken(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	r := NewSessionRepository()
	ctx := context.Background()
	now := time.Now()

	live := &models.Session{UserID: 1, Token: "live", ExpiresAt: now.Add(time.Hour)}
	stale := &models.Session{UserID: 1, Token: "stale", ExpiresAt: now.Add(-time.Minute)}
	for _, s := range []*models.Session{live, stale} {
		if err := r.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	swept, err := r.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	if _, err := r.FindByToken(ctx, "live"); err != nil {
		t.Errorf("live session should survive, got %v", err)
	}
	if _, err := r.FindByToken(ctx, "stale"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stale session should be swept, got %v", err)
	}
}
