// Package view projects a todo snapshot into display items and markup. Every
// function here is pure: the same snapshot always yields the same output.
package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/todo/domain"
)

// Filter selects which tasks a view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the modes in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter maps user input onto a Filter, falling back to FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive:
		return FilterActive
	case FilterCompleted:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Match reports whether task belongs in the filtered view.
func (f Filter) Match(task domain.Task) bool {
	switch f {
	case FilterActive:
		return !task.Completed
	case FilterCompleted:
		return task.Completed
	default:
		return true
	}
}

// Snapshot is the read-only state a view is rendered from.
type Snapshot struct {
	Tasks  []domain.Task
	Filter Filter
	// Pending holds checkbox values toggled by the user but not yet
	// confirmed by the server, keyed by task id.
	Pending map[int64]bool
}

// Project returns the ordered subsequence of tasks matching filter.
func Project(tasks []domain.Task, filter Filter) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if filter.Match(task) {
			out = append(out, task)
		}
	}
	return out
}

// EmptyMessage is shown when the filtered view has no tasks.
func EmptyMessage(filter Filter) string {
	switch filter {
	case FilterActive:
		return "No active todos. Great job!"
	case FilterCompleted:
		return "No completed todos yet."
	default:
		return "No todos yet. Add one above to get started!"
	}
}

// Action names an operation a rendered item can trigger.
type Action string

const (
	ActionToggle Action = "toggle"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Command binds an action to the task it targets. Toggle commands carry the
// completed value to send; edit commands get their patch from the caller.
type Command struct {
	Action Action
	TaskID int64
	Patch  domain.TaskPatch
}

// ParseAction maps a path segment back onto an Action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionToggle, ActionEdit, ActionDelete:
		return a, true
	default:
		return "", false
	}
}

// Path is the page endpoint a form posts to in order to run c.
func (c Command) Path() string {
	return "/todos/" + strconv.FormatInt(c.TaskID, 10) + "/" + string(c.Action)
}

// WithTitle returns a copy of c carrying a new title.
func (c Command) WithTitle(title string) Command {
	c.Patch.Title = &title
	return c
}

// Item is one rendered list entry. Checked is the checkbox state, which runs
// ahead of Completed while a toggle is in flight (Pending).
type Item struct {
	ID        int64
	Title     string
	Completed bool
	Checked   bool
	Pending   bool
	Created   string
	Toggle    Command
	Edit      Command
	Delete    Command
}

// Items builds the display items for the snapshot's filter.
func Items(s Snapshot) []Item {
	tasks := Project(s.Tasks, s.Filter)
	items := make([]Item, 0, len(tasks))
	for _, task := range tasks {
		checked, pending := task.Completed, false
		if v, ok := s.Pending[task.ID]; ok {
			checked, pending = v, true
		}
		items = append(items, Item{
			ID:        task.ID,
			Title:     task.Title,
			Completed: task.Completed,
			Checked:   checked,
			Pending:   pending,
			Created:   FormatDate(task.CreatedAt),
			Toggle:    Command{Action: ActionToggle, TaskID: task.ID, Patch: domain.TaskPatch{Completed: domain.Bool(!checked)}},
			Edit:      Command{Action: ActionEdit, TaskID: task.ID},
			Delete:    Command{Action: ActionDelete, TaskID: task.ID},
		})
	}
	return items
}

// FormatDate renders a creation date like "Jan 2, 2006".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
