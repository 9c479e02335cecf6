package todo

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/usecase"
)

type UseCase struct {
	todos  repository.TaskRepository
	logger *zap.Logger
}

func New(todos repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:  todos,
		logger: logger,
	}
}

func (uc *UseCase) ListTodos(ctx context.Context) ([]domain.Task, error) {
	tasks, err := uc.todos.List(ctx)
	if err != nil {
		return nil, domain.Classify("list todos", err)
	}
	return tasks, nil
}

func (uc *UseCase) GetTodo(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Classify("get todo", err)
	}
	return task, nil
}

// CreateTodo trims the title and rejects blank ones before touching the store.
func (uc *UseCase) CreateTodo(ctx context.Context, input usecase.CreateInput) (*domain.Task, error) {
	title, err := domain.NormalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	task, err := uc.todos.Create(ctx, title, input.Completed)
	if err != nil {
		return nil, domain.Classify("create todo", err)
	}
	uc.logger.Debug("todo created", zap.Int64("id", task.ID))
	return task, nil
}

// UpdateTodo applies the present fields of patch. An explicitly blank title
// is rejected the same way create rejects it.
func (uc *UseCase) UpdateTodo(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}

	task, err := uc.todos.Update(ctx, id, patch)
	if err != nil {
		return nil, domain.Classify("update todo", err)
	}
	uc.logger.Debug("todo updated", zap.Int64("id", task.ID))
	return task, nil
}

func (uc *UseCase) DeleteTodo(ctx context.Context, id int64) error {
	if err := uc.todos.Delete(ctx, id); err != nil {
		return domain.Classify("delete todo", err)
	}
	uc.logger.Debug("todo deleted", zap.Int64("id", id))
	return nil
}
