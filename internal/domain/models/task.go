package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"diswantin/internal/civil"
)

// RecurrenceType identifies the calendar pattern of a recurrence rule
type RecurrenceType string

const (
	RecurrenceDay         RecurrenceType = "day"
	RecurrenceWeek        RecurrenceType = "week"
	RecurrenceDayOfMonth  RecurrenceType = "day_of_month"
	RecurrenceWeekOfMonth RecurrenceType = "week_of_month"
	RecurrenceYear        RecurrenceType = "year"
)

// Valid reports whether t is one of the known recurrence types
func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurrenceDay, RecurrenceWeek, RecurrenceDayOfMonth, RecurrenceWeekOfMonth, RecurrenceYear:
		return true
	}
	return false
}

// Task is a single to-do item owned by one user
type Task struct {
	ID       int64  `json:"-" db:"id"`
	ClientID string `json:"id" db:"client_id"`
	UserID   int64  `json:"-" db:"user_id"`
	Name     string `json:"name" db:"name"`
	Note     string `json:"note,omitempty" db:"note"`

	// Scheduling fields. Date and time halves are stored independently;
	// a time without its date is meaningful only for start-after, where
	// it acts as a daily time-of-day gate.
	DeadlineDate   *civil.Date      `json:"deadline_date,omitempty" db:"deadline_date"`
	DeadlineTime   *civil.TimeOfDay `json:"deadline_time,omitempty" db:"deadline_time"`
	StartAfterDate *civil.Date      `json:"start_after_date,omitempty" db:"start_after_date"`
	StartAfterTime *civil.TimeOfDay `json:"start_after_time,omitempty" db:"start_after_time"`
	ScheduledDate  *civil.Date      `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ScheduledTime  *civil.TimeOfDay `json:"scheduled_time,omitempty" db:"scheduled_time"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskCompletion records one "done" event. Non-recurring tasks have at
// most one; recurring tasks have at most one per local calendar day the
// rule fires.
type TaskCompletion struct {
	ID     int64      `json:"-" db:"id"`
	TaskID int64      `json:"-" db:"task_id"`
	DoneAt time.Time  `json:"done_at" db:"done_at"`
	DoneOn civil.Date `json:"-" db:"done_on"`
}

// TaskRecurrence is one recurrence rule for a task, active from its
// start date until superseded by a rule with a later start.
type TaskRecurrence struct {
	ID       int64          `json:"-" db:"id"`
	TaskID   int64          `json:"-" db:"task_id"`
	Start    civil.Date     `json:"start" db:"start"`
	Type     RecurrenceType `json:"type" db:"type"`
	Step     int            `json:"step" db:"step"`
	Weekdays WeekdaySet     `json:"weekdays,omitempty" db:"weekdays"`
}

// TaskPath is one closure table row: ancestor reaches descendant in
// depth steps. Every task has a depth-0 row to itself.
type TaskPath struct {
	Ancestor   int64 `json:"ancestor" db:"ancestor"`
	Descendant int64 `json:"descendant" db:"descendant"`
	Depth      int   `json:"depth" db:"depth"`
}

// TaskSummary is the display projection handed to route handlers
type TaskSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
	IsDone bool   `json:"is_done,omitempty"`
}

// WeekdaySet is a bit set of weekdays (bit 0 = Sunday), stored as a
// single smallint column.
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given weekdays
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// Contains reports whether d is in the set
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// IsEmpty reports whether no weekday is set
func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Weekdays returns the members of the set in Sunday-first order
func (s WeekdaySet) Weekdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Scan implements sql.Scanner for WeekdaySet
func (s *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*s = 0
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = WeekdaySet(v)
	case []byte:
		var n int
		if _, err := fmt.Sscanf(string(v), "%d", &n); err != nil {
			return fmt.Errorf("unsupported value for WeekdaySet: %q", v)
		}
		*s = WeekdaySet(n)
	default:
		return fmt.Errorf("unsupported type for WeekdaySet: %T", value)
	}
	return nil
}

// Value implements driver.Valuer for WeekdaySet
func (s WeekdaySet) Value() (driver.Value, error) {
	return int64(s), nil
}
