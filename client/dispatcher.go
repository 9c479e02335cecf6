package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/fastygo/todo/view"
)

// CommandHandler executes one rendered item command.
type CommandHandler func(ctx context.Context, cmd view.Command) error

// Dispatcher routes commands to handlers by action.
type Dispatcher struct {
	handlers map[view.Action]CommandHandler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[view.Action]CommandHandler),
	}
}

func (d *Dispatcher) Register(action view.Action, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = handler
}

func (d *Dispatcher) Dispatch(ctx context.Context, cmd view.Command) error {
	d.mu.RLock()
	handler, ok := d.handlers[cmd.Action]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("command handler %s not registered", cmd.Action)
	}
	return handler(ctx, cmd)
}
