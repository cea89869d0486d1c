package usecase

import (
	"context"
	"sort"
	"time"

	"diswantin/internal/civil"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
	"diswantin/internal/recurrence"
)

// CurrentTask picks the single task the user should do right now, or
// nil when nothing is actionable. Candidates must have passed their
// start-after and scheduled-at gates, recur today if they recur at all,
// and not be done for the relevant occurrence. An undone eligible
// ancestor always beats its descendants, regardless of the descendant's
// own scheduling fields; the rest rank by scheduled-at, then deadline,
// then creation order.
func (s *TaskService) CurrentTask(ctx context.Context, user *models.User, now time.Time) (*models.TaskSummary, error) {
	today, currentTime, window := localDay(user, now)

	snapshots, err := s.repo.Snapshots(ctx, user.ID, window)
	if err != nil {
		return nil, err
	}

	eligible := make(map[int64]bool, len(snapshots))
	for _, snapshot := range snapshots {
		if isEligible(snapshot, today, currentTime) {
			eligible[snapshot.Task.ID] = true
		}
	}

	var candidates []*repositories.TaskSnapshot
	for _, snapshot := range snapshots {
		if !eligible[snapshot.Task.ID] {
			continue
		}
		if blockedByAncestor(snapshot, eligible) {
			continue
		}
		candidates = append(candidates, snapshot)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return rankLess(&candidates[i].Task, &candidates[j].Task)
	})

	top := candidates[0].Task
	return &models.TaskSummary{ID: top.ClientID, Name: top.Name, Note: top.Note}, nil
}

// isEligible applies the date gates, recurrence and completion rules
// for a single task on the given civil day.
func isEligible(s *repositories.TaskSnapshot, today civil.Date, currentTime civil.TimeOfDay) bool {
	task := &s.Task

	if !gateOpen(task.StartAfterDate, task.StartAfterTime, today, currentTime) {
		return false
	}
	if !gateOpen(task.ScheduledDate, task.ScheduledTime, today, currentTime) {
		return false
	}

	if s.Recurring() {
		rule := recurrence.ActiveRule(s.Recurrences, today)
		if rule == nil || !recurrence.OccursOn(*rule, today) {
			return false
		}
		return !s.DoneInWindow
	}
	return !s.HasCompletion
}

// gateOpen reports whether a date/time constraint has been reached. A
// time with no date recurs daily as a time-of-day gate; a date with no
// time opens at the start of that day.
func gateOpen(date *civil.Date, tod *civil.TimeOfDay, today civil.Date, currentTime civil.TimeOfDay) bool {
	if date == nil {
		if tod == nil {
			return true
		}
		return !tod.After(currentTime)
	}
	switch date.Compare(today) {
	case -1:
		return true
	case 1:
		return false
	}
	return tod == nil || !tod.After(currentTime)
}

// blockedByAncestor reports whether some undone eligible ancestor must
// be done first.
func blockedByAncestor(s *repositories.TaskSnapshot, eligible map[int64]bool) bool {
	for _, ancestorID := range s.AncestorIDs {
		if eligible[ancestorID] {
			return true
		}
	}
	return false
}

// sortMoment is a comparable (date, time) pair; a missing time counts
// as start of day.
type sortMoment struct {
	date civil.Date
	tod  civil.TimeOfDay
}

func momentOf(date *civil.Date, tod *civil.TimeOfDay) *sortMoment {
	if date == nil {
		return nil
	}
	m := &sortMoment{date: *date}
	if tod != nil {
		m.tod = *tod
	}
	return m
}

func (m *sortMoment) compare(other *sortMoment) int {
	if c := m.date.Compare(other.date); c != 0 {
		return c
	}
	return m.tod.Compare(other.tod)
}

// compareMoments orders two optional moments ascending, nils last
func compareMoments(a, b *sortMoment) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.compare(b)
	}
}

// rankLess orders candidates by scheduled-at, then deadline (each
// soonest-first with nulls last), then creation time, then internal id
// as the deterministic tie-break.
func rankLess(a, b *models.Task) bool {
	if c := compareMoments(momentOf(a.ScheduledDate, a.ScheduledTime), momentOf(b.ScheduledDate, b.ScheduledTime)); c != 0 {
		return c < 0
	}
	if c := compareMoments(momentOf(a.DeadlineDate, a.DeadlineTime), momentOf(b.DeadlineDate, b.DeadlineTime)); c != 0 {
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
