package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// Clock supplies the timestamps the store assigns.
type Clock func() time.Time

// Option customizes the repository.
type Option func(*taskRepository)

// WithClock overrides time.Now, mostly for tests.
func WithClock(clock Clock) Option {
	return func(r *taskRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

type taskRepository struct {
	db  *sql.DB
	now Clock
}

// NewTaskRepository returns a SQLite-backed implementation of TaskRepository.
// Timestamps are stored as unix nanoseconds.
func NewTaskRepository(db *sql.DB, opts ...Option) repository.TaskRepository {
	r := &taskRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const taskColumns = `id, title, completed, created_at, updated_at`

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+taskColumns+`
	FROM todos
	ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT `+taskColumns+`
	FROM todos
	WHERE id = ?
	`, id)
	return scanTask(row)
}

func (r *taskRepository) Create(ctx context.Context, title string, completed bool) (*domain.Task, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
	INSERT INTO todos (title, completed, created_at)
	VALUES (?, ?, ?)
	RETURNING `+taskColumns,
		title, completed, r.now().UnixNano())
	return scanTask(row)
}

func (r *taskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}

	var (
		title     sql.NullString
		completed sql.NullBool
	)
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, `
	UPDATE todos
	SET title = COALESCE(?, title),
		completed = COALESCE(?, completed),
		updated_at = ?
	WHERE id = ?
	RETURNING `+taskColumns,
		title, completed, r.now().UnixNano(), id)
	return scanTask(row)
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task      domain.Task
		createdAt int64
		updatedAt sql.NullInt64
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Completed, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	task.CreatedAt = time.Unix(0, createdAt).UTC()
	if updatedAt.Valid {
		ts := time.Unix(0, updatedAt.Int64).UTC()
		task.UpdatedAt = &ts
	}
	return &task, nil
}
