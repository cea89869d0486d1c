// Package recurrence evaluates task recurrence rules against civil
// calendar dates. Evaluation is pure: no clock, no I/O, and no error
// paths — malformed rules are rejected at creation time, not here.
package recurrence

import (
	"time"

	"diswantin/internal/civil"
	"diswantin/internal/domain/models"
)

// OccursOn reports whether rule r fires on the given civil date. Dates
// before the rule's start never fire.
func OccursOn(r models.TaskRecurrence, on civil.Date) bool {
	if on.Before(r.Start) {
		return false
	}
	step := r.Step
	if step < 1 {
		step = 1
	}

	switch r.Type {
	case models.RecurrenceDay:
		return on.DaysSince(r.Start)%step == 0

	case models.RecurrenceWeek:
		weeks := weekOffset(r.Start, on)
		if weeks%step != 0 {
			return false
		}
		days := r.Weekdays
		if days.IsEmpty() {
			days = models.NewWeekdaySet(r.Start.Weekday())
		}
		return days.Contains(on.Weekday())

	case models.RecurrenceDayOfMonth:
		if monthOffset(r.Start, on)%step != 0 {
			return false
		}
		return on.Day == clampDay(r.Start.Day, on.Year, on.Month)

	case models.RecurrenceWeekOfMonth:
		if monthOffset(r.Start, on)%step != 0 {
			return false
		}
		return on.Weekday() == r.Start.Weekday() &&
			weekOfMonth(on.Day) == weekOfMonth(r.Start.Day)

	case models.RecurrenceYear:
		if (on.Year-r.Start.Year)%step != 0 {
			return false
		}
		return on.Month == r.Start.Month &&
			on.Day == clampDay(r.Start.Day, on.Year, on.Month)
	}
	return false
}

// ActiveRule picks the rule in effect on the given date: the one with
// the latest start not after it. Rules may change over time without
// losing history, so a task can carry several rows.
func ActiveRule(rules []models.TaskRecurrence, on civil.Date) *models.TaskRecurrence {
	var active *models.TaskRecurrence
	for i := range rules {
		r := &rules[i]
		if r.Start.After(on) {
			continue
		}
		if active == nil || r.Start.After(active.Start) {
			active = r
		}
	}
	return active
}

// clampDay caps a configured day-of-month to the last valid day of the
// target month, so a rule anchored on the 31st fires on Feb 28 (or 29).
func clampDay(day, year int, month time.Month) int {
	if last := civil.DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

// weekOffset counts whole weeks between the start-of-week (Sunday)
// containing each date.
func weekOffset(start, on civil.Date) int {
	return on.AddDays(-int(on.Weekday())).DaysSince(start.AddDays(-int(start.Weekday()))) / 7
}

func monthOffset(start, on civil.Date) int {
	return (on.Year-start.Year)*12 + int(on.Month) - int(start.Month)
}

// weekOfMonth returns the 1-based ordinal week for a day of the month,
// i.e. the 8th through 14th are the 2nd week of their weekday.
func weekOfMonth(day int) int {
	return (day + 6) / 7
}
