package repositories

import (
	"context"
	"time"

	"diswantin/internal/civil"
	"diswantin/internal/domain/models"
)

// DayWindow is the half-open instant range [Start, End) covering one
// civil day in a user's timezone. Completion-per-occurrence checks are
// phrased against it so the store never needs to know the zone.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// TaskSnapshot is one task joined with everything the scheduling logic
// needs: its recurrence rules, completion state relative to a day
// window, and its strict ancestor chain from the closure table.
type TaskSnapshot struct {
	Task          models.Task
	Recurrences   []models.TaskRecurrence
	HasCompletion bool    // any completion ever recorded
	DoneInWindow  bool    // a completion falls inside the day window
	AncestorIDs   []int64 // ancestors at depth > 0, nearest first
}

// Recurring reports whether the task carries any recurrence rule
func (s *TaskSnapshot) Recurring() bool {
	return len(s.Recurrences) > 0
}

// SearchResult is one full-text match with its completion state
type SearchResult struct {
	Task          models.Task
	Recurring     bool
	HasCompletion bool
	DoneInWindow  bool
}

// TaskRepository defines the interface for task data operations. Every
// mutation that touches the closure table runs atomically with its task
// row change.
type TaskRepository interface {
	// Create inserts the task and its closure rows (a depth-0 self row
	// plus, when parentID is set, a link to each of the parent's
	// ancestors at incremented depth). A retried create with the same
	// client id returns domain.ErrConflict without touching storage.
	Create(ctx context.Context, task *models.Task, parentID *int64) error

	// FindByClientID resolves a task by its client-facing id, scoped to
	// the owning user. Returns domain.ErrNotFound when absent.
	FindByClientID(ctx context.Context, userID int64, clientID string) (*models.Task, error)

	// Update writes the task's scalar fields
	Update(ctx context.Context, task *models.Task) error

	// SetParent re-parents the task, rewriting the ancestor links of
	// the task and every one of its descendants. A nil parentID moves
	// the task to the root.
	SetParent(ctx context.Context, taskID int64, parentID *int64) error

	// Delete splices the task out of the hierarchy (bridging its
	// parents to its children) and removes the task row; completions
	// and recurrences go with it.
	Delete(ctx context.Context, userID, taskID int64) error

	// Parent returns the depth-1 ancestor, or nil when the task is a root
	Parent(ctx context.Context, taskID int64) (*models.Task, error)

	// Snapshots returns every task of the user with scheduling state
	// relative to the given day window.
	Snapshots(ctx context.Context, userID int64, window DayWindow) ([]*TaskSnapshot, error)

	// Snapshot returns one task's scheduling state by client id.
	// Returns domain.ErrNotFound when absent.
	Snapshot(ctx context.Context, userID int64, clientID string, window DayWindow) (*TaskSnapshot, error)

	// ChildSnapshots returns the depth-1 descendants with completion
	// state, ordered by internal id.
	ChildSnapshots(ctx context.Context, taskID int64, window DayWindow) ([]*TaskSnapshot, error)

	// AddCompletion records a done event for the user's local calendar
	// day. Completions are keyed (task, day); a concurrent duplicate
	// for the same day is silently dropped.
	AddCompletion(ctx context.Context, taskID int64, doneAt time.Time, day civil.Date) error

	// RemoveCompletions deletes completions; a nil window removes all
	// of them, otherwise only those inside the window.
	RemoveCompletions(ctx context.Context, taskID int64, window *DayWindow) error

	// UpsertRecurrence inserts or replaces the rule with the same
	// (task, start) key.
	UpsertRecurrence(ctx context.Context, rec *models.TaskRecurrence) error

	// ClearRecurrences removes every rule of the task
	ClearRecurrences(ctx context.Context, taskID int64) error

	// Search runs a full-text match over the user's task names,
	// ordered by relevance then id, keyset-paged by last-seen id.
	Search(ctx context.Context, userID int64, query string, afterID int64, limit int, window DayWindow) ([]*SearchResult, error)
}
