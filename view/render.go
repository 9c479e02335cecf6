package view

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/fastygo/todo/domain"
)

// CreatePath receives the create form of the rendered page.
const CreatePath = "/todos"

// Page renders a complete document: notice, create form, filter navigation
// and the list. Forms post back to the server, which redirects to the page.
func Page(title string, s Snapshot, notice string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		hw.text(title)
		hw.raw(`</title></head><body><main class="container"><h1>`)
		hw.text(title)
		hw.raw(`</h1>`)
		if hw.err != nil {
			return hw.err
		}
		for _, c := range []templ.Component{noticeBanner(notice), createForm(s.Filter), filterNav(s.Filter), List(s)} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		hw.raw(`</main></body></html>`)
		return hw.err
	})
}

// List renders the filtered items, or the empty-state message.
func List(s Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		items := Items(s)
		hw.raw(`<div id="todoList" class="todo-list">`)
		if len(items) == 0 {
			hw.raw(`<p class="empty-state">`)
			hw.text(EmptyMessage(s.Filter))
			hw.raw(`</p>`)
		}
		if hw.err != nil {
			return hw.err
		}
		for _, item := range items {
			if err := todoItem(item, s.Filter).Render(ctx, w); err != nil {
				return err
			}
		}
		hw.raw(`</div>`)
		return hw.err
	})
}

func noticeBanner(notice string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if notice == "" {
			return nil
		}
		hw := &htmlWriter{w: w}
		hw.raw(`<p class="notification" role="alert">`)
		hw.text(notice)
		hw.raw(`</p>`)
		return hw.err
	})
}

func createForm(filter Filter) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<form class="todo-form" method="post" action="`)
		hw.url(CreatePath)
		hw.raw(`">`)
		hw.filterField(filter)
		hw.raw(`<input type="text" name="title" placeholder="What needs to be done?" maxlength="`)
		hw.raw(strconv.Itoa(domain.TitleMaxLength))
		hw.raw(`" required><button type="submit" class="btn btn-primary">Add Todo</button></form>`)
		return hw.err
	})
}

func filterNav(current Filter) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<nav class="filters">`)
		for _, f := range Filters {
			hw.raw(`<a class="`)
			hw.text(templ.Classes("filter-btn", templ.KV("active", f == current)).String())
			hw.raw(`" data-filter="`)
			hw.text(string(f))
			hw.raw(`" href="`)
			hw.url(PagePath(f))
			hw.raw(`">`)
			hw.text(filterLabel(f))
			hw.raw(`</a>`)
		}
		hw.raw(`</nav>`)
		return hw.err
	})
}

func todoItem(item Item, filter Filter) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		id := strconv.FormatInt(item.ID, 10)

		hw.raw(`<div class="`)
		hw.text(templ.Classes("todo-item", templ.KV("completed", item.Completed), templ.KV("pending", item.Pending)).String())
		hw.raw(`" data-id="`)
		hw.raw(id)
		hw.raw(`"><div class="todo-header"><h3 class="todo-title">`)
		hw.text(item.Title)
		hw.raw(`</h3></div>`)

		hw.commandForm(item.Edit, filter, "todo-edit", "")
		hw.raw(`<input type="text" name="title" value="`)
		hw.text(item.Title)
		hw.raw(`" maxlength="`)
		hw.raw(strconv.Itoa(domain.TitleMaxLength))
		hw.raw(`" required><button type="submit" class="btn btn-edit" data-action="`)
		hw.text(string(item.Edit.Action))
		hw.raw(`" data-id="`)
		hw.raw(id)
		hw.raw(`">Save</button></form>`)

		hw.raw(`<div class="todo-footer"><div class="todo-actions">`)
		hw.commandForm(item.Delete, filter, "todo-delete", `return confirm('Are you sure you want to delete this todo?')`)
		hw.raw(`<button type="submit" class="btn btn-danger" data-action="`)
		hw.text(string(item.Delete.Action))
		hw.raw(`" data-id="`)
		hw.raw(id)
		hw.raw(`">Delete</button></form></div>`)

		completed := strconv.FormatBool(*item.Toggle.Patch.Completed)
		hw.commandForm(item.Toggle, filter, "todo-toggle", "")
		hw.raw(`<input type="hidden" name="completed" value="`)
		hw.raw(completed)
		hw.raw(`"><label class="checkbox-label"><input type="checkbox" onchange="this.form.submit()" data-action="`)
		hw.text(string(item.Toggle.Action))
		hw.raw(`" data-id="`)
		hw.raw(id)
		hw.raw(`" data-completed="`)
		hw.raw(completed)
		hw.raw(`"`)
		if item.Checked {
			hw.raw(` checked`)
		}
		hw.raw(`><span>Completed</span></label><noscript><button type="submit" class="btn">Apply</button></noscript></form>`)

		hw.raw(`<span class="todo-date">Created: `)
		hw.text(item.Created)
		hw.raw(`</span></div></div>`)
		return hw.err
	})
}

// htmlWriter keeps the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) url(path string) {
	h.text(string(templ.URL(path)))
}

func (h *htmlWriter) filterField(filter Filter) {
	h.raw(`<input type="hidden" name="filter" value="`)
	h.text(string(filter))
	h.raw(`">`)
}

// commandForm opens a form posting cmd; the caller writes the fields and
// closes it.
func (h *htmlWriter) commandForm(cmd Command, filter Filter, class, onsubmit string) {
	h.raw(`<form class="`)
	h.text(class)
	h.raw(`" method="post" action="`)
	h.url(cmd.Path())
	h.raw(`"`)
	if onsubmit != "" {
		h.raw(` onsubmit="`)
		h.text(onsubmit)
		h.raw(`"`)
	}
	h.raw(`>`)
	h.filterField(filter)
}

// PagePath links to the page showing filter.
func PagePath(filter Filter) string {
	return "/?filter=" + string(filter)
}

func filterLabel(f Filter) string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}
