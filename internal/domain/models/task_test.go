package models

import (
	"testing"
	"time"
)

func TestRecurrenceTypeValid(t *testing.T) {
	valid := []RecurrenceType{RecurrenceDay, RecurrenceWeek, RecurrenceDayOfMonth, RecurrenceWeekOfMonth, RecurrenceYear}
	for _, rt := range valid {
		if !rt.Valid() {
			t.Errorf("%q.Valid() = false, want true", rt)
		}
	}
	for _, rt := range []RecurrenceType{"", "daily", "fortnight", "DAY"} {
		if rt.Valid() {
			t.Errorf("%q.Valid() = true, want false", rt)
		}
	}
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)

	for _, d := range []time.Weekday{time.Monday, time.Wednesday, time.Friday} {
		if !s.Contains(d) {
			t.Errorf("Contains(%v) = false, want true", d)
		}
	}
	for _, d := range []time.Weekday{time.Sunday, time.Tuesday, time.Thursday, time.Saturday} {
		if s.Contains(d) {
			t.Errorf("Contains(%v) = true, want false", d)
		}
	}

	if s.IsEmpty() {
		t.Error("IsEmpty() = true for a populated set")
	}
	if !NewWeekdaySet().IsEmpty() {
		t.Error("IsEmpty() = false for an empty set")
	}

	got := s.Weekdays()
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(got) != len(want) {
		t.Fatalf("Weekdays() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Weekdays()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWeekdaySetScan(t *testing.T) {
	var s WeekdaySet
	if err := s.Scan(int64(0b0101)); err != nil {
		t.Fatalf("Scan(int64) error = %v", err)
	}
	if !s.Contains(time.Sunday) || !s.Contains(time.Tuesday) || s.Contains(time.Monday) {
		t.Errorf("Scan(int64) = %b", s)
	}

	if err := s.Scan([]byte("64")); err != nil {
		t.Fatalf("Scan([]byte) error = %v", err)
	}
	if !s.Contains(time.Saturday) {
		t.Errorf("Scan([]byte) = %b, want Saturday set", s)
	}

	if err := s.Scan("bogus"); err == nil {
		t.Error("Scan(string) expected error")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now}

	if !s.Expired(now) {
		t.Error("a session expires exactly at its expiry instant")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Error("Expired() = true before the expiry instant")
	}
	if !s.Expired(now.Add(time.Second)) {
		t.Error("Expired() = false after the expiry instant")
	}
}

func TestUserLocationFallback(t *testing.T) {
	u := User{Timezone: "Pluto/Underworld"}
	if got := u.Location(); got != time.UTC {
		t.Errorf("Location() = %v, want UTC fallback", got)
	}

	u.Timezone = "Europe/Berlin"
	if got := u.Location(); got.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, want Europe/Berlin", got)
	}
}
