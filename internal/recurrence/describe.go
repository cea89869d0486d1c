package recurrence

import (
	"fmt"
	"strings"

	"diswantin/internal/domain/models"
)

// Describe renders a recurrence rule as a short human-readable phrase
// for the task detail view, e.g. "Every 2 weeks on Mon, Wed".
func Describe(r models.TaskRecurrence) string {
	switch r.Type {
	case models.RecurrenceDay:
		return every(r.Step, "day")

	case models.RecurrenceWeek:
		days := r.Weekdays
		if days.IsEmpty() {
			days = models.NewWeekdaySet(r.Start.Weekday())
		}
		var names []string
		for _, d := range days.Weekdays() {
			names = append(names, d.String()[:3])
		}
		return fmt.Sprintf("%s on %s", every(r.Step, "week"), strings.Join(names, ", "))

	case models.RecurrenceDayOfMonth:
		return fmt.Sprintf("%s on day %d", every(r.Step, "month"), r.Start.Day)

	case models.RecurrenceWeekOfMonth:
		return fmt.Sprintf("%s on the %s %s",
			every(r.Step, "month"),
			ordinal(weekOfMonth(r.Start.Day)),
			r.Start.Weekday())

	case models.RecurrenceYear:
		return fmt.Sprintf("%s on %s %d", every(r.Step, "year"), r.Start.Month.String()[:3], r.Start.Day)
	}
	return ""
}

func every(step int, unit string) string {
	if step <= 1 {
		return "Every " + unit
	}
	return fmt.Sprintf("Every %d %ss", step, unit)
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
