package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"diswantin/internal/civil"
	"diswantin/internal/domain"
	"diswantin/internal/domain/models"
	"diswantin/internal/domain/repositories"
)

const taskColumns = `id, client_id, user_id, name, note,
	deadline_date, deadline_time, start_after_date, start_after_time,
	scheduled_date, scheduled_time, created_at`

// taskRepository implements repositories.TaskRepository
type taskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository creates a new PostgreSQL task repository
func NewTaskRepository(db *pgxpool.Pool) repositories.TaskRepository {
	return &taskRepository{db: db}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTask(row scannable) (*models.Task, error) {
	var (
		task           models.Task
		deadlineDate   civil.NullDate
		deadlineTime   civil.NullTimeOfDay
		startAfterDate civil.NullDate
		startAfterTime civil.NullTimeOfDay
		scheduledDate  civil.NullDate
		scheduledTime  civil.NullTimeOfDay
	)
	err := row.Scan(
		&task.ID, &task.ClientID, &task.UserID, &task.Name, &task.Note,
		&deadlineDate, &deadlineTime, &startAfterDate, &startAfterTime,
		&scheduledDate, &scheduledTime, &task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.DeadlineDate = deadlineDate.Ptr()
	task.DeadlineTime = deadlineTime.Ptr()
	task.StartAfterDate = startAfterDate.Ptr()
	task.StartAfterTime = startAfterTime.Ptr()
	task.ScheduledDate = scheduledDate.Ptr()
	task.ScheduledTime = scheduledTime.Ptr()
	return &task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task, parentID *int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO task (
			client_id, user_id, name, note,
			deadline_date, deadline_time, start_after_date, start_after_time,
			scheduled_date, scheduled_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (client_id) DO NOTHING
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		task.ClientID, task.UserID, task.Name, task.Note,
		civil.NullDateOf(task.DeadlineDate), civil.NullTimeOfDayOf(task.DeadlineTime),
		civil.NullDateOf(task.StartAfterDate), civil.NullTimeOfDayOf(task.StartAfterTime),
		civil.NullDateOf(task.ScheduledDate), civil.NullTimeOfDayOf(task.ScheduledTime),
		task.CreatedAt,
	).Scan(&task.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		// A retried submission hit the client_id unique index.
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO task_path (ancestor, descendant, depth) VALUES ($1, $1, 0)`,
		task.ID,
	); err != nil {
		return err
	}
	if parentID != nil {
		if err := linkUnderParent(ctx, tx, task.ID, *parentID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// linkUnderParent connects the parent's whole ancestor set (including
// the parent's self row) to the task at incremented depth.
func linkUnderParent(ctx context.Context, tx pgx.Tx, taskID, parentID int64) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO task_path (ancestor, descendant, depth)
		SELECT ancestor, $1, depth + 1
		FROM task_path
		WHERE descendant = $2
	`, taskID, parentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *taskRepository) FindByClientID(ctx context.Context, userID int64, clientID string) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM task WHERE user_id = $1 AND client_id = $2`, taskColumns)
	task, err := scanTask(r.db.QueryRow(ctx, query, userID, clientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE task SET
			name = $3,
			note = $4,
			deadline_date = $5,
			deadline_time = $6,
			start_after_date = $7,
			start_after_time = $8,
			scheduled_date = $9,
			scheduled_time = $10
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		task.ID, task.UserID, task.Name, task.Note,
		civil.NullDateOf(task.DeadlineDate), civil.NullTimeOfDayOf(task.DeadlineTime),
		civil.NullDateOf(task.StartAfterDate), civil.NullTimeOfDayOf(task.StartAfterTime),
		civil.NullDateOf(task.ScheduledDate), civil.NullTimeOfDayOf(task.ScheduledTime),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *taskRepository) SetParent(ctx context.Context, taskID int64, parentID *int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if parentID != nil {
		if *parentID == taskID {
			return domain.ErrBadParamInput
		}
		// The new parent must not be inside the task's own subtree.
		var inSubtree bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM task_path WHERE ancestor = $1 AND descendant = $2)`,
			taskID, *parentID,
		).Scan(&inSubtree)
		if err != nil {
			return err
		}
		if inSubtree {
			return domain.ErrBadParamInput
		}
	}

	// Cut every link from the old ancestor chain into the subtree. The
	// subtree's internal rows (including each self row) survive.
	if _, err := tx.Exec(ctx, `
		DELETE FROM task_path
		WHERE descendant IN (SELECT descendant FROM task_path WHERE ancestor = $1)
		  AND ancestor IN (SELECT ancestor FROM task_path WHERE descendant = $1 AND depth > 0)
	`, taskID); err != nil {
		return err
	}

	// Re-derive links under the new chain for the task and all of its
	// descendants in one insert-select.
	if parentID != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO task_path (ancestor, descendant, depth)
			SELECT sup.ancestor, sub.descendant, sup.depth + 1 + sub.depth
			FROM task_path sup, task_path sub
			WHERE sup.descendant = $2 AND sub.ancestor = $1
		`, taskID, *parentID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *taskRepository) Delete(ctx context.Context, userID, taskID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Splice the node out before removing it: every ancestor-descendant
	// pair whose only path ran through it loses one step of depth, so
	// children attach directly to their grandparent.
	if _, err := tx.Exec(ctx, `
		UPDATE task_path SET depth = depth - 1
		WHERE ancestor IN (SELECT ancestor FROM task_path WHERE descendant = $1 AND depth > 0)
		  AND descendant IN (SELECT descendant FROM task_path WHERE ancestor = $1 AND depth > 0)
	`, taskID); err != nil {
		return err
	}

	// Path rows, completions and recurrences cascade with the task row.
	tag, err := tx.Exec(ctx, `DELETE FROM task WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *taskRepository) Parent(ctx context.Context, taskID int64) (*models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task t
		JOIN task_path p ON p.ancestor = t.id
		WHERE p.descendant = $1 AND p.depth = 1
	`, prefixed("t"))
	task, err := scanTask(r.db.QueryRow(ctx, query, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Snapshots(ctx context.Context, userID int64, window repositories.DayWindow) ([]*repositories.TaskSnapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM task WHERE user_id = $1 ORDER BY id`, taskColumns)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tasks, window)
}

func (r *taskRepository) Snapshot(ctx context.Context, userID int64, clientID string, window repositories.DayWindow) (*repositories.TaskSnapshot, error) {
	task, err := r.FindByClientID(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	snapshots, err := r.hydrate(ctx, []*models.Task{task}, window)
	if err != nil {
		return nil, err
	}
	return snapshots[0], nil
}

func (r *taskRepository) ChildSnapshots(ctx context.Context, taskID int64, window repositories.DayWindow) ([]*repositories.TaskSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM task t
		JOIN task_path p ON p.descendant = t.id
		WHERE p.ancestor = $1 AND p.depth = 1
		ORDER BY t.id
	`, prefixed("t"))
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tasks, window)
}

// hydrate joins recurrence rules, completion state and ancestor chains
// onto the given task rows.
func (r *taskRepository) hydrate(ctx context.Context, tasks []*models.Task, window repositories.DayWindow) ([]*repositories.TaskSnapshot, error) {
	snapshots := make([]*repositories.TaskSnapshot, len(tasks))
	byID := make(map[int64]*repositories.TaskSnapshot, len(tasks))
	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		snapshots[i] = &repositories.TaskSnapshot{Task: *task}
		byID[task.ID] = snapshots[i]
		ids[i] = task.ID
	}
	if len(ids) == 0 {
		return snapshots, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, task_id, start, type, step, weekdays
		FROM task_recurrence
		WHERE task_id = ANY($1)
		ORDER BY task_id, start
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rec models.TaskRecurrence
		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.Start, &rec.Type, &rec.Step, &rec.Weekdays); err != nil {
			return nil, err
		}
		if s := byID[rec.TaskID]; s != nil {
			s.Recurrences = append(s.Recurrences, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT task_id,
			   bool_or(true),
			   bool_or(done_at >= $2 AND done_at < $3)
		FROM task_completion
		WHERE task_id = ANY($1)
		GROUP BY task_id
	`, ids, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			taskID       int64
			hasAny, inWindow bool
		)
		if err := rows.Scan(&taskID, &hasAny, &inWindow); err != nil {
			return nil, err
		}
		if s := byID[taskID]; s != nil {
			s.HasCompletion = hasAny
			s.DoneInWindow = inWindow
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT descendant, ancestor
		FROM task_path
		WHERE descendant = ANY($1) AND depth > 0
		ORDER BY descendant, depth
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var descendant, ancestor int64
		if err := rows.Scan(&descendant, &ancestor); err != nil {
			return nil, err
		}
		if s := byID[descendant]; s != nil {
			s.AncestorIDs = append(s.AncestorIDs, ancestor)
		}
	}
	return snapshots, rows.Err()
}

func (r *taskRepository) AddCompletion(ctx context.Context, taskID int64, doneAt time.Time, day civil.Date) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO task_completion (task_id, done_at, done_on) VALUES ($1, $2, $3)
		 ON CONFLICT (task_id, done_on) DO NOTHING`,
		taskID, doneAt, day,
	)
	return err
}

func (r *taskRepository) RemoveCompletions(ctx context.Context, taskID int64, window *repositories.DayWindow) error {
	if window == nil {
		_, err := r.db.Exec(ctx, `DELETE FROM task_completion WHERE task_id = $1`, taskID)
		return err
	}
	_, err := r.db.Exec(ctx,
		`DELETE FROM task_completion WHERE task_id = $1 AND done_at >= $2 AND done_at < $3`,
		taskID, window.Start, window.End,
	)
	return err
}

func (r *taskRepository) UpsertRecurrence(ctx context.Context, rec *models.TaskRecurrence) error {
	query := `
		INSERT INTO task_recurrence (task_id, start, type, step, weekdays)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id, start) DO UPDATE SET
			type = EXCLUDED.type,
			step = EXCLUDED.step,
			weekdays = EXCLUDED.weekdays
		RETURNING id
	`
	return r.db.QueryRow(ctx, query,
		rec.TaskID, rec.Start, rec.Type, rec.Step, rec.Weekdays,
	).Scan(&rec.ID)
}

func (r *taskRepository) ClearRecurrences(ctx context.Context, taskID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM task_recurrence WHERE task_id = $1`, taskID)
	return err
}

func (r *taskRepository) Search(ctx context.Context, userID int64, query string, afterID int64, limit int, window repositories.DayWindow) ([]*repositories.SearchResult, error) {
	// The cursor advances on id while rank orders each page, so a
	// low-id row ranking below a page boundary never resurfaces on a
	// later page. Stable, gap-free paging is worth that trade-off.
	sql := fmt.Sprintf(`
		SELECT %s,
			   EXISTS (SELECT 1 FROM task_recurrence r WHERE r.task_id = t.id),
			   EXISTS (SELECT 1 FROM task_completion c WHERE c.task_id = t.id),
			   EXISTS (SELECT 1 FROM task_completion c WHERE c.task_id = t.id
					   AND c.done_at >= $5 AND c.done_at < $6)
		FROM task t
		WHERE t.user_id = $1
		  AND to_tsvector('simple', t.name) @@ websearch_to_tsquery('simple', $2)
		  AND t.id > $3
		ORDER BY ts_rank(to_tsvector('simple', t.name), websearch_to_tsquery('simple', $2)) DESC, t.id
		LIMIT $4
	`, prefixed("t"))

	rows, err := r.db.Query(ctx, sql, userID, query, afterID, limit, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*repositories.SearchResult
	for rows.Next() {
		var (
			task           models.Task
			deadlineDate   civil.NullDate
			deadlineTime   civil.NullTimeOfDay
			startAfterDate civil.NullDate
			startAfterTime civil.NullTimeOfDay
			scheduledDate  civil.NullDate
			scheduledTime  civil.NullTimeOfDay
			result         repositories.SearchResult
		)
		err := rows.Scan(
			&task.ID, &task.ClientID, &task.UserID, &task.Name, &task.Note,
			&deadlineDate, &deadlineTime, &startAfterDate, &startAfterTime,
			&scheduledDate, &scheduledTime, &task.CreatedAt,
			&result.Recurring, &result.HasCompletion, &result.DoneInWindow,
		)
		if err != nil {
			return nil, err
		}
		task.DeadlineDate = deadlineDate.Ptr()
		task.DeadlineTime = deadlineTime.Ptr()
		task.StartAfterDate = startAfterDate.Ptr()
		task.StartAfterTime = startAfterTime.Ptr()
		task.ScheduledDate = scheduledDate.Ptr()
		task.ScheduledTime = scheduledTime.Ptr()
		result.Task = task
		results = append(results, &result)
	}
	return results, rows.Err()
}

func collectTasks(rows pgx.Rows) ([]*models.Task, error) {
	defer rows.Close()
	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// prefixed qualifies the task column list with a table alias
func prefixed(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.client_id, %[1]s.user_id, %[1]s.name, %[1]s.note,
		%[1]s.deadline_date, %[1]s.deadline_time, %[1]s.start_after_date, %[1]s.start_after_time,
		%[1]s.scheduled_date, %[1]s.scheduled_time, %[1]s.created_at`, alias)
}
