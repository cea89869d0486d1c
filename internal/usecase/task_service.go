package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"diswantin/internal/civil"
	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
)

const maxNameLength = 256

// TaskService handles business logic for tasks: creation, updates,
// hierarchy changes, completion state and the current-task selection.
type TaskService struct {
	repo   repositories.TaskRepository
	logger *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo repositories.TaskRepository, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, logger: logger}
}

// ValidationError carries field-level messages for malformed input,
// rejected before storage is touched.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match with errors.Is(err, domain.ErrBadParamInput)
func (e *ValidationError) Unwrap() error { return domain.ErrBadParamInput }

// RecurrenceInput describes a recurrence rule change on a task form
type RecurrenceInput struct {
	Start    civil.Date
	Type     models.RecurrenceType
	Step     int
	Weekdays models.WeekdaySet
}

func (r *RecurrenceInput) validate(fields map[string]string) {
	if r.Start.IsZero() {
		fields["recurrence.start"] = "start date is required"
	}
	if !r.Type.Valid() {
		fields["recurrence.type"] = fmt.Sprintf("unknown recurrence type %q", r.Type)
	}
	if r.Step < 1 {
		fields["recurrence.step"] = "step must be at least 1"
	}
	if r.Type == models.RecurrenceWeek && r.Weekdays.IsEmpty() {
		fields["recurrence.weekdays"] = "weekly recurrence needs at least one weekday"
	}
}

// TaskForm is the input for creating a task
type TaskForm struct {
	// ClientID lets retried submissions stay idempotent; generated
	// when empty.
	ClientID string
	Name     string
	Note     string

	DeadlineDate   *civil.Date
	DeadlineTime   *civil.TimeOfDay
	StartAfterDate *civil.Date
	StartAfterTime *civil.TimeOfDay
	ScheduledDate  *civil.Date
	ScheduledTime  *civil.TimeOfDay

	// ParentID is the client id of the parent task, if any
	ParentID string

	Recurrence *RecurrenceInput
}

func (f *TaskForm) validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(f.Name) > maxNameLength {
		fields["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}
	if f.ClientID != "" {
		if _, err := uuid.Parse(f.ClientID); err != nil {
			fields["id"] = "id must be a UUID"
		}
	}
	if f.Recurrence != nil {
		f.Recurrence.validate(fields)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateTask inserts a task (and its hierarchy link) and returns the
// client-facing id. A retried submission with the same client id is a
// no-op returning the same id.
func (s *TaskService) CreateTask(ctx context.Context, user *models.User, form TaskForm) (string, error) {
	if err := form.validate(); err != nil {
		return "", err
	}

	clientID := form.ClientID
	if clientID == "" {
		clientID = uuid.New().String()
	}

	var parentID *int64
	if form.ParentID != "" {
		parent, err := s.repo.FindByClientID(ctx, user.ID, form.ParentID)
		if err != nil {
			return "", fmt.Errorf("resolve parent: %w", err)
		}
		parentID = &parent.ID
	}

	task := &models.Task{
		ClientID:       clientID,
		UserID:         user.ID,
		Name:           strings.TrimSpace(form.Name),
		Note:           form.Note,
		DeadlineDate:   form.DeadlineDate,
		DeadlineTime:   form.DeadlineTime,
		StartAfterDate: form.StartAfterDate,
		StartAfterTime: form.StartAfterTime,
		ScheduledDate:  form.ScheduledDate,
		ScheduledTime:  form.ScheduledTime,
		CreatedAt:      time.Now(),
	}

	err := s.repo.Create(ctx, task, parentID)
	if errors.Is(err, domain.ErrConflict) {
		// The client id unique index is global; only a duplicate
		// submission by the same user is an idempotent success.
		if _, lookupErr := s.repo.FindByClientID(ctx, user.ID, clientID); lookupErr != nil {
			if errors.Is(lookupErr, domain.ErrNotFound) {
				return "", fmt.Errorf("client id already in use: %w", domain.ErrConflict)
			}
			return "", lookupErr
		}
		s.logger.Debug("duplicate task create ignored", zap.String("client_id", clientID))
		return clientID, nil
	}
	if err != nil {
		return "", err
	}

	if form.Recurrence != nil {
		rec := &models.TaskRecurrence{
			TaskID:   task.ID,
			Start:    form.Recurrence.Start,
			Type:     form.Recurrence.Type,
			Step:     form.Recurrence.Step,
			Weekdays: form.Recurrence.Weekdays,
		}
		if err := s.repo.UpsertRecurrence(ctx, rec); err != nil {
			return "", err
		}
	}

	s.logger.Info("task created",
		zap.String("client_id", clientID),
		zap.Int64("user_id", user.ID),
	)
	return clientID, nil
}

// UpdateTaskForm is the input for updating a task
type UpdateTaskForm struct {
	ClientID string
	Name     string
	Note     string

	DeadlineDate   *civil.Date
	DeadlineTime   *civil.TimeOfDay
	StartAfterDate *civil.Date
	StartAfterTime *civil.TimeOfDay
	ScheduledDate  *civil.Date
	ScheduledTime  *civil.TimeOfDay

	// ParentID: nil keeps the current parent, empty string moves the
	// task to the root, anything else is the new parent's client id.
	ParentID *string

	// Recurrence replaces the rule sharing its start date;
	// RemoveRecurrence clears every rule.
	Recurrence       *RecurrenceInput
	RemoveRecurrence bool
}

func (f *UpdateTaskForm) validate() error {
	fields := make(map[string]string)
	if _, err := uuid.Parse(f.ClientID); err != nil {
		fields["id"] = "id must be a UUID"
	}
	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(f.Name) > maxNameLength {
		fields["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}
	if f.Recurrence != nil {
		if f.RemoveRecurrence {
			fields["recurrence"] = "cannot set and remove recurrence at once"
		}
		f.Recurrence.validate(fields)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// UpdateTask writes scalar fields and, when requested, re-parents the
// task and adjusts its recurrence rules.
func (s *TaskService) UpdateTask(ctx context.Context, user *models.User, form UpdateTaskForm) error {
	if err := form.validate(); err != nil {
		return err
	}

	task, err := s.repo.FindByClientID(ctx, user.ID, form.ClientID)
	if err != nil {
		return err
	}

	task.Name = strings.TrimSpace(form.Name)
	task.Note = form.Note
	task.DeadlineDate = form.DeadlineDate
	task.DeadlineTime = form.DeadlineTime
	task.StartAfterDate = form.StartAfterDate
	task.StartAfterTime = form.StartAfterTime
	task.ScheduledDate = form.ScheduledDate
	task.ScheduledTime = form.ScheduledTime

	if err := s.repo.Update(ctx, task); err != nil {
		return err
	}

	if form.ParentID != nil {
		var parentID *int64
		if *form.ParentID != "" {
			parent, err := s.repo.FindByClientID(ctx, user.ID, *form.ParentID)
			if err != nil {
				return fmt.Errorf("resolve parent: %w", err)
			}
			parentID = &parent.ID
		}
		if err := s.repo.SetParent(ctx, task.ID, parentID); err != nil {
			return err
		}
	}

	switch {
	case form.RemoveRecurrence:
		if err := s.repo.ClearRecurrences(ctx, task.ID); err != nil {
			return err
		}
	case form.Recurrence != nil:
		rec := &models.TaskRecurrence{
			TaskID:   task.ID,
			Start:    form.Recurrence.Start,
			Type:     form.Recurrence.Type,
			Step:     form.Recurrence.Step,
			Weekdays: form.Recurrence.Weekdays,
		}
		if err := s.repo.UpsertRecurrence(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTask removes the task, splicing its children up to its parent
func (s *TaskService) DeleteTask(ctx context.Context, user *models.User, clientID string) error {
	task, err := s.repo.FindByClientID(ctx, user.ID, clientID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID, task.ID); err != nil {
		return err
	}
	s.logger.Info("task deleted",
		zap.String("client_id", clientID),
		zap.Int64("user_id", user.ID),
	)
	return nil
}

// MarkTaskDone records a completion for the relevant occurrence: for a
// recurring task one per local calendar day, for a one-shot task at
// most one ever. Re-marking is a no-op.
func (s *TaskService) MarkTaskDone(ctx context.Context, user *models.User, clientID string, now time.Time) error {
	today, _, window := localDay(user, now)

	snapshot, err := s.repo.Snapshot(ctx, user.ID, clientID, window)
	if err != nil {
		return err
	}

	if snapshot.Recurring() {
		if snapshot.DoneInWindow {
			return nil
		}
	} else if snapshot.HasCompletion {
		return nil
	}
	return s.repo.AddCompletion(ctx, snapshot.Task.ID, now, today)
}

// UnmarkTaskDone reverses a completion. A non-recurring task loses its
// only completion whenever it was recorded; a recurring task loses only
// today's occurrence, leaving prior days untouched.
func (s *TaskService) UnmarkTaskDone(ctx context.Context, user *models.User, clientID string, now time.Time) error {
	_, _, window := localDay(user, now)

	snapshot, err := s.repo.Snapshot(ctx, user.ID, clientID, window)
	if err != nil {
		return err
	}

	if snapshot.Recurring() {
		return s.repo.RemoveCompletions(ctx, snapshot.Task.ID, &window)
	}
	return s.repo.RemoveCompletions(ctx, snapshot.Task.ID, nil)
}

// localDay resolves "now" into the user's civil today, current
// time-of-day, and the absolute instant window covering that day.
func localDay(user *models.User, now time.Time) (civil.Date, civil.TimeOfDay, repositories.DayWindow) {
	loc := user.Location()
	local := now.In(loc)
	today := civil.DateOf(local)
	return today, civil.TimeOfDayOf(local), repositories.DayWindow{
		Start: today.In(loc),
		End:   today.AddDays(1).In(loc),
	}
}
