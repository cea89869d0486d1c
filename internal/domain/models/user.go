package models

import "time"

// User is an authenticated account. Timezone is the IANA zone name all
// of the user's day-boundary calculations are done in.
type User struct {
	ID        int64     `json:"-" db:"id"`
	Email     string    `json:"email" db:"email"`
	GoogleID  string    `json:"-" db:"google_id"`
	Timezone  string    `json:"timezone" db:"timezone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Location resolves the user's IANA timezone, falling back to UTC when
// the stored name no longer loads.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Session is an opaque cookie-backed login session
type Session struct {
	ID        int64     `json:"-" db:"id"`
	Token     string    `json:"-" db:"token"`
	UserID    int64     `json:"-" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session has passed its expiry
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
