package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, title, completed, "createdAt", "updatedAt"`

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM todos
	ORDER BY "createdAt" DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query)
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
	const query = `
	SELECT ` + taskColumns + `
	FROM todos
	WHERE id = $1
	`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) Create(ctx context.Context, title string, completed bool) (*domain.Task, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	const query = `
	INSERT INTO todos (title, completed)
	VALUES ($1, $2)
	RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query, title, completed))
}

// Update runs as a single statement so the read-modify-write of one row is
// serialized by Postgres row locking.
func (r *taskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}

	const query = `
	UPDATE todos
	SET title = COALESCE($2, title),
		completed = COALESCE($3, completed),
		"updatedAt" = CURRENT_TIMESTAMP
	WHERE id = $1
	RETURNING ` + taskColumns

	return scanTask(r.pool.QueryRow(ctx, query, id, patch.Title, patch.Completed))
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM todos WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}
	return &task, nil
}
