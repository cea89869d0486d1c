package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"diswantin/internal/civil"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
	"diswantin/internal/recurrence"
)

// TaskDetailView is the display-ready projection of one task
type TaskDetailView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Note string `json:"note,omitempty"`

	Deadline    string `json:"deadline,omitempty"`
	StartAfter  string `json:"start_after,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	Recurrence  string `json:"recurrence,omitempty"`

	IsDone   bool                 `json:"is_done"`
	Parent   *models.TaskSummary  `json:"parent,omitempty"`
	Children []models.TaskSummary `json:"children,omitempty"`
}

// GetTaskDetail builds the detail view: formatted scheduling fields,
// the active recurrence description, completion state, the parent
// summary and the children ordered undone-first.
func (s *TaskService) GetTaskDetail(ctx context.Context, user *models.User, clientID string, now time.Time) (*TaskDetailView, error) {
	today, _, window := localDay(user, now)

	snapshot, err := s.repo.Snapshot(ctx, user.ID, clientID, window)
	if err != nil {
		return nil, err
	}
	task := &snapshot.Task

	view := &TaskDetailView{
		ID:          task.ClientID,
		Name:        task.Name,
		Note:        task.Note,
		Deadline:    formatMoment(task.DeadlineDate, task.DeadlineTime),
		StartAfter:  formatMoment(task.StartAfterDate, task.StartAfterTime),
		ScheduledAt: formatMoment(task.ScheduledDate, task.ScheduledTime),
		IsDone:      snapshotDone(snapshot),
	}

	if rule := recurrence.ActiveRule(snapshot.Recurrences, today); rule != nil {
		view.Recurrence = recurrence.Describe(*rule)
	} else if len(snapshot.Recurrences) > 0 {
		// All rules start in the future; describe the earliest one.
		view.Recurrence = recurrence.Describe(snapshot.Recurrences[0])
	}

	parent, err := s.repo.Parent(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		view.Parent = &models.TaskSummary{ID: parent.ClientID, Name: parent.Name}
	}

	children, err := s.repo.ChildSnapshots(ctx, task.ID, window)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(children, func(i, j int) bool {
		di, dj := snapshotDone(children[i]), snapshotDone(children[j])
		if di != dj {
			return !di
		}
		return children[i].Task.ID < children[j].Task.ID
	})
	for _, child := range children {
		view.Children = append(view.Children, models.TaskSummary{
			ID:     child.Task.ClientID,
			Name:   child.Task.Name,
			IsDone: snapshotDone(child),
		})
	}
	return view, nil
}

// snapshotDone reports completion for the relevant occurrence
func snapshotDone(s *repositories.TaskSnapshot) bool {
	if s.Recurring() {
		return s.DoneInWindow
	}
	return s.HasCompletion
}

// formatMoment renders an optional date/time pair for display. A time
// without a date reads as a daily time.
func formatMoment(date *civil.Date, tod *civil.TimeOfDay) string {
	switch {
	case date == nil && tod == nil:
		return ""
	case date == nil:
		return fmt.Sprintf("%s daily", tod)
	case tod == nil:
		return formatDate(*date)
	default:
		return fmt.Sprintf("%s at %s", formatDate(*date), tod)
	}
}

func formatDate(d civil.Date) string {
	return d.In(time.UTC).Format("Jan 2, 2006")
}
