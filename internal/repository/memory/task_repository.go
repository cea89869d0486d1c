// Package memory provides map-backed implementations of the repository
// interfaces. It serves small single-process deployments and the unit
// tests of the scheduling logic; the closure-table maintenance here is
// the reference behavior the SQL implementation mirrors.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"diswantin/internal/civil"
	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
)

type pathKey struct {
	ancestor   int64
	descendant int64
}

// TaskRepository implements repositories.TaskRepository in memory
type TaskRepository struct {
	mu sync.RWMutex

	nextID       int64
	nextDoneID   int64
	tasks        map[int64]*models.Task
	byClientID   map[string]int64
	completions  map[int64][]models.TaskCompletion
	recurrences  map[int64][]models.TaskRecurrence
	paths        map[pathKey]int // (ancestor, descendant) -> depth
}

// NewTaskRepository creates an empty in-memory task repository
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks:       make(map[int64]*models.Task),
		byClientID:  make(map[string]int64),
		completions: make(map[int64][]models.TaskCompletion),
		recurrences: make(map[int64][]models.TaskRecurrence),
		paths:       make(map[pathKey]int),
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task, parentID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byClientID[task.ClientID]; exists {
		return domain.ErrConflict
	}
	if parentID != nil {
		if _, ok := r.tasks[*parentID]; !ok {
			return domain.ErrNotFound
		}
	}

	r.nextID++
	task.ID = r.nextID
	stored := *task
	r.tasks[task.ID] = &stored
	r.byClientID[task.ClientID] = task.ID

	r.paths[pathKey{task.ID, task.ID}] = 0
	if parentID != nil {
		for key, depth := range r.paths {
			if key.descendant == *parentID {
				r.paths[pathKey{key.ancestor, task.ID}] = depth + 1
			}
		}
	}
	return nil
}

func (r *TaskRepository) FindByClientID(ctx context.Context, userID int64, clientID string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(userID, clientID)
}

func (r *TaskRepository) findLocked(userID int64, clientID string) (*models.Task, error) {
	id, ok := r.byClientID[clientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	task := r.tasks[id]
	if task == nil || task.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrNotFound
	}
	updated := *task
	updated.CreatedAt = existing.CreatedAt
	r.tasks[task.ID] = &updated
	return nil
}

func (r *TaskRepository) SetParent(ctx context.Context, taskID int64, parentID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[taskID]; !ok {
		return domain.ErrNotFound
	}
	if parentID != nil {
		if _, ok := r.tasks[*parentID]; !ok {
			return domain.ErrNotFound
		}
		// The new parent must not sit inside the task's own subtree, or
		// the forest would gain a cycle.
		if *parentID == taskID {
			return domain.ErrBadParamInput
		}
		if _, descendant := r.paths[pathKey{taskID, *parentID}]; descendant {
			return domain.ErrBadParamInput
		}
	}

	oldAncestors := r.strictAncestorsLocked(taskID)
	subtree := r.subtreeLocked(taskID) // includes the task itself, with depth from it

	// Cut every link from the old ancestor chain into the subtree.
	for ancestor := range oldAncestors {
		for descendant := range subtree {
			delete(r.paths, pathKey{ancestor, descendant})
		}
	}

	// Re-derive links under the new chain for the task and each of its
	// descendants.
	if parentID != nil {
		for key, depth := range r.paths {
			if key.descendant != *parentID {
				continue
			}
			for descendant, sub := range subtree {
				r.paths[pathKey{key.ancestor, descendant}] = depth + 1 + sub
			}
		}
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.UserID != userID {
		return domain.ErrNotFound
	}

	// Splice the node out: every ancestor-descendant pair that passed
	// through it loses one step of depth.
	ancestors := r.strictAncestorsLocked(taskID)
	descendants := r.strictDescendantsLocked(taskID)
	for ancestor := range ancestors {
		for descendant := range descendants {
			key := pathKey{ancestor, descendant}
			if depth, exists := r.paths[key]; exists {
				r.paths[key] = depth - 1
			}
		}
	}
	for key := range r.paths {
		if key.ancestor == taskID || key.descendant == taskID {
			delete(r.paths, key)
		}
	}

	delete(r.byClientID, task.ClientID)
	delete(r.tasks, taskID)
	delete(r.completions, taskID)
	delete(r.recurrences, taskID)
	return nil
}

func (r *TaskRepository) Parent(ctx context.Context, taskID int64) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key, depth := range r.paths {
		if key.descendant == taskID && depth == 1 {
			if parent, ok := r.tasks[key.ancestor]; ok {
				copied := *parent
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (r *TaskRepository) Snapshots(ctx context.Context, userID int64, window repositories.DayWindow) ([]*repositories.TaskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var snapshots []*repositories.TaskSnapshot
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		snapshots = append(snapshots, r.snapshotLocked(task, window))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Task.ID < snapshots[j].Task.ID
	})
	return snapshots, nil
}

func (r *TaskRepository) Snapshot(ctx context.Context, userID int64, clientID string, window repositories.DayWindow) (*repositories.TaskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, err := r.findLocked(userID, clientID)
	if err != nil {
		return nil, err
	}
	return r.snapshotLocked(task, window), nil
}

func (r *TaskRepository) ChildSnapshots(ctx context.Context, taskID int64, window repositories.DayWindow) ([]*repositories.TaskSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var snapshots []*repositories.TaskSnapshot
	for key, depth := range r.paths {
		if key.ancestor != taskID || depth != 1 {
			continue
		}
		if child, ok := r.tasks[key.descendant]; ok {
			snapshots = append(snapshots, r.snapshotLocked(child, window))
		}
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Task.ID < snapshots[j].Task.ID
	})
	return snapshots, nil
}

func (r *TaskRepository) snapshotLocked(task *models.Task, window repositories.DayWindow) *repositories.TaskSnapshot {
	copied := *task
	snapshot := &repositories.TaskSnapshot{Task: copied}

	snapshot.Recurrences = append(snapshot.Recurrences, r.recurrences[task.ID]...)
	for _, done := range r.completions[task.ID] {
		snapshot.HasCompletion = true
		if window.Contains(done.DoneAt) {
			snapshot.DoneInWindow = true
		}
	}

	type link struct {
		id    int64
		depth int
	}
	var chain []link
	for key, depth := range r.paths {
		if key.descendant == task.ID && depth > 0 {
			chain = append(chain, link{key.ancestor, depth})
		}
	}
	sort.Slice(chain, func(i, j int) bool { return chain[i].depth < chain[j].depth })
	for _, l := range chain {
		snapshot.AncestorIDs = append(snapshot.AncestorIDs, l.id)
	}
	return snapshot
}

func (r *TaskRepository) AddCompletion(ctx context.Context, taskID int64, doneAt time.Time, day civil.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[taskID]; !ok {
		return domain.ErrNotFound
	}
	// One completion per task per day, matching the SQL unique key.
	for _, done := range r.completions[taskID] {
		if done.DoneOn == day {
			return nil
		}
	}
	r.nextDoneID++
	r.completions[taskID] = append(r.completions[taskID], models.TaskCompletion{
		ID:     r.nextDoneID,
		TaskID: taskID,
		DoneAt: doneAt,
		DoneOn: day,
	})
	return nil
}

func (r *TaskRepository) RemoveCompletions(ctx context.Context, taskID int64, window *repositories.DayWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if window == nil {
		delete(r.completions, taskID)
		return nil
	}
	kept := r.completions[taskID][:0]
	for _, done := range r.completions[taskID] {
		if !window.Contains(done.DoneAt) {
			kept = append(kept, done)
		}
	}
	r.completions[taskID] = kept
	return nil
}

func (r *TaskRepository) UpsertRecurrence(ctx context.Context, rec *models.TaskRecurrence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[rec.TaskID]; !ok {
		return domain.ErrNotFound
	}
	rules := r.recurrences[rec.TaskID]
	for i := range rules {
		if rules[i].Start == rec.Start {
			rec.ID = rules[i].ID
			rules[i] = *rec
			return nil
		}
	}
	r.nextDoneID++
	rec.ID = r.nextDoneID
	r.recurrences[rec.TaskID] = append(rules, *rec)
	return nil
}

func (r *TaskRepository) ClearRecurrences(ctx context.Context, taskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recurrences, taskID)
	return nil
}

func (r *TaskRepository) Search(ctx context.Context, userID int64, query string, afterID int64, limit int, window repositories.DayWindow) ([]*repositories.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		result *repositories.SearchResult
		hits   int
	}
	var matches []scored
	for _, task := range r.tasks {
		if task.UserID != userID || task.ID <= afterID {
			continue
		}
		hits := matchTerms(task.Name, terms)
		if hits < len(terms) {
			continue
		}
		snapshot := r.snapshotLocked(task, window)
		matches = append(matches, scored{
			result: &repositories.SearchResult{
				Task:          snapshot.Task,
				Recurring:     snapshot.Recurring(),
				HasCompletion: snapshot.HasCompletion,
				DoneInWindow:  snapshot.DoneInWindow,
			},
			hits: hits,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].hits != matches[j].hits {
			return matches[i].hits > matches[j].hits
		}
		return matches[i].result.Task.ID < matches[j].result.Task.ID
	})

	results := make([]*repositories.SearchResult, 0, len(matches))
	for _, m := range matches {
		if limit > 0 && len(results) >= limit {
			break
		}
		results = append(results, m.result)
	}
	return results, nil
}

// matchTerms counts query terms appearing as token prefixes of name
func matchTerms(name string, terms []string) int {
	tokens := strings.Fields(strings.ToLower(name))
	hits := 0
	for _, term := range terms {
		for _, token := range tokens {
			if strings.HasPrefix(token, term) {
				hits++
				break
			}
		}
	}
	return hits
}

// PathRows returns the closure table ordered by (ancestor, descendant).
// Exposed for tests asserting hierarchy invariants.
func (r *TaskRepository) PathRows() []models.TaskPath {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]models.TaskPath, 0, len(r.paths))
	for key, depth := range r.paths {
		rows = append(rows, models.TaskPath{Ancestor: key.ancestor, Descendant: key.descendant, Depth: depth})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Ancestor != rows[j].Ancestor {
			return rows[i].Ancestor < rows[j].Ancestor
		}
		return rows[i].Descendant < rows[j].Descendant
	})
	return rows
}

func (r *TaskRepository) strictAncestorsLocked(taskID int64) map[int64]struct{} {
	out := make(map[int64]struct{})
	for key, depth := range r.paths {
		if key.descendant == taskID && depth > 0 {
			out[key.ancestor] = struct{}{}
		}
	}
	return out
}

func (r *TaskRepository) strictDescendantsLocked(taskID int64) map[int64]struct{} {
	out := make(map[int64]struct{})
	for key, depth := range r.paths {
		if key.ancestor == taskID && depth > 0 {
			out[key.descendant] = struct{}{}
		}
	}
	return out
}

// subtreeLocked returns the task and all its descendants keyed by id,
// valued by depth below the task.
func (r *TaskRepository) subtreeLocked(taskID int64) map[int64]int {
	out := make(map[int64]int)
	for key, depth := range r.paths {
		if key.ancestor == taskID {
			out[key.descendant] = depth
		}
	}
	return out
}
