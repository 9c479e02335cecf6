package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Task is a single to-do item. JSON names follow the wire format served to
// browser clients.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// TaskPatch describes a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch carries no field.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// TitleMaxLength is the longest title, in characters, every store accepts.
const TitleMaxLength = 255

// NormalizeTitle trims the title and rejects blank or over-long values.
func NormalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}

// Normalize validates the present fields of the patch and returns a copy
// with a trimmed title.
func (p TaskPatch) Normalize() (TaskPatch, error) {
	if p.Title == nil {
		return p, nil
	}
	title, err := NormalizeTitle(*p.Title)
	if err != nil {
		return TaskPatch{}, err
	}
	p.Title = &title
	return p, nil
}

// Apply returns a copy of t with the patch fields applied. Timestamps are
// not touched; the store owns them.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// Bool returns a pointer to v, handy for building patches.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, handy for building patches.
func String(v string) *string { return &v }
