package client

import (
	"sort"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/view"
)

// State is the client-side mirror of the store plus the active filter. It is
// not safe for concurrent use; a Session drives it from one goroutine.
type State struct {
	tasks   []domain.Task
	filter  view.Filter
	pending map[int64]bool
}

// NewState returns an empty state showing every task.
func NewState() *State {
	return &State{
		filter:  view.FilterAll,
		pending: make(map[int64]bool),
	}
}

// Replace swaps the whole list for a freshly fetched one.
func (s *State) Replace(tasks []domain.Task) {
	s.tasks = append([]domain.Task(nil), tasks...)
}

// Insert adds a confirmed task and restores newest-first order.
func (s *State) Insert(task domain.Task) {
	s.tasks = append(s.tasks, task)
	sort.SliceStable(s.tasks, func(i, j int) bool {
		a, b := s.tasks[i], s.tasks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Put replaces the task with the same id. It reports false when the task is
// no longer mirrored, in which case nothing changes.
func (s *State) Put(task domain.Task) bool {
	i := s.index(task.ID)
	if i == -1 {
		return false
	}
	s.tasks[i] = task
	return true
}

// Remove drops the task with id, if present.
func (s *State) Remove(id int64) {
	if i := s.index(id); i != -1 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	delete(s.pending, id)
}

// Find returns the mirrored task with id.
func (s *State) Find(id int64) (domain.Task, bool) {
	if i := s.index(id); i != -1 {
		return s.tasks[i], true
	}
	return domain.Task{}, false
}

// Len returns the number of mirrored tasks.
func (s *State) Len() int { return len(s.tasks) }

func (s *State) SetFilter(f view.Filter) { s.filter = f }

func (s *State) Filter() view.Filter { return s.filter }

func (s *State) setPending(id int64, checked bool) { s.pending[id] = checked }

func (s *State) clearPending(id int64) { delete(s.pending, id) }

// Snapshot copies the state for rendering.
func (s *State) Snapshot() view.Snapshot {
	pending := make(map[int64]bool, len(s.pending))
	for id, v := range s.pending {
		pending[id] = v
	}
	return view.Snapshot{
		Tasks:   append([]domain.Task(nil), s.tasks...),
		Filter:  s.filter,
		Pending: pending,
	}
}

func (s *State) index(id int64) int {
	for i, task := range s.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
