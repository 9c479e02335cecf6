package repository

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// TaskRepository is the persistence port for todos. Implementations own id
// and timestamp assignment.
type TaskRepository interface {
	// List returns every task, newest first.
	List(ctx context.Context) ([]domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, title string, completed bool) (*domain.Task, error)
	// Update applies the present patch fields and always refreshes updatedAt.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}
