package transport

import "github.com/fastygo/todo/domain"

// CreateTodoRequest is the POST /api/todos body. Title is a pointer so a
// missing field and an empty string are both rejected as blank.
type CreateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// UpdateTodoRequest is the PUT /api/todos/{id} body. Absent fields are left
// unchanged.
type UpdateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Patch converts the request into a domain patch.
func (r UpdateTodoRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{Title: r.Title, Completed: r.Completed}
}
