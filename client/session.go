package client

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/view"
)

// ErrUnknownTask is returned when a command targets a task the state does
// not mirror.
var ErrUnknownTask = errors.New("task is not in the local list")

// Notifier surfaces failures to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Session applies user actions against the API and patches State with the
// server-confirmed result. A failed call leaves State untouched, apart from
// clearing the pending checkbox value of a failed toggle.
type Session struct {
	api    TodoAPI
	state  *State
	notify Notifier
	logger *zap.Logger
}

// NewSession wires a session with an empty state.
func NewSession(api TodoAPI, notify Notifier, logger *zap.Logger) *Session {
	if notify == nil {
		notify = NotifierFunc(func(string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		api:    api,
		state:  NewState(),
		notify: notify,
		logger: logger,
	}
}

// State exposes the mirrored state.
func (s *Session) State() *State { return s.state }

// Snapshot returns the current render input.
func (s *Session) Snapshot() view.Snapshot { return s.state.Snapshot() }

// SetFilter changes the active view filter.
func (s *Session) SetFilter(f view.Filter) { s.state.SetFilter(f) }

// Load replaces the state with the server's list.
func (s *Session) Load(ctx context.Context) error {
	tasks, err := s.api.List(ctx)
	if err != nil {
		return s.fail("fetching todos", "Failed to load todos. Please refresh the page.", err)
	}
	s.state.Replace(tasks)
	return nil
}

// Create adds a task once the server has stored it.
func (s *Session) Create(ctx context.Context, title string) (*domain.Task, error) {
	task, err := s.api.Create(ctx, title, false)
	if err != nil {
		return nil, s.fail("creating todo", "Failed to create todo. Please try again.", err)
	}
	s.state.Insert(*task)
	return task, nil
}

// Update sends patch and mirrors the server's version of the task.
func (s *Session) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.api.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail("updating todo", "Failed to update todo. Please try again.", err)
	}
	s.state.Put(*task)
	return task, nil
}

// Toggle is the one optimistic action: the checkbox value is recorded as
// pending while the request runs and is dropped again when it completes,
// which reverts the checkbox on failure.
func (s *Session) Toggle(ctx context.Context, id int64, completed bool) error {
	if _, ok := s.state.Find(id); !ok {
		return ErrUnknownTask
	}

	s.state.setPending(id, completed)
	task, err := s.api.Update(ctx, id, domain.TaskPatch{Completed: &completed})
	s.state.clearPending(id)
	if err != nil {
		return s.fail("toggling todo", "Failed to update todo. Please try again.", err)
	}
	s.state.Put(*task)
	return nil
}

// Delete removes a task once the server confirms.
func (s *Session) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail("deleting todo", "Failed to delete todo. Please try again.", err)
	}
	s.state.Remove(id)
	return nil
}

// Dispatcher returns a dispatcher routing rendered item commands to this
// session.
func (s *Session) Dispatcher() *Dispatcher {
	d := NewDispatcher()
	d.Register(view.ActionToggle, func(ctx context.Context, cmd view.Command) error {
		if cmd.Patch.Completed == nil {
			return fmt.Errorf("toggle command for %d has no completed value", cmd.TaskID)
		}
		return s.Toggle(ctx, cmd.TaskID, *cmd.Patch.Completed)
	})
	d.Register(view.ActionEdit, func(ctx context.Context, cmd view.Command) error {
		_, err := s.Update(ctx, cmd.TaskID, cmd.Patch)
		return err
	})
	d.Register(view.ActionDelete, func(ctx context.Context, cmd view.Command) error {
		return s.Delete(ctx, cmd.TaskID)
	})
	return d
}

func (s *Session) fail(op, message string, err error) error {
	s.logger.Error("todo sync failed", zap.String("operation", op), zap.Error(err))
	s.notify.Notify(message)
	return err
}
