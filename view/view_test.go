package view

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fastygo/todo/domain"
)

func sampleTasks() []domain.Task {
	created := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	return []domain.Task{
		{ID: 4, Title: "Write report", Completed: false, CreatedAt: created.Add(3 * time.Hour)},
		{ID: 3, Title: "Buy milk", Completed: true, CreatedAt: created.Add(2 * time.Hour)},
		{ID: 2, Title: "Walk dog", Completed: false, CreatedAt: created.Add(time.Hour)},
		{ID: 1, Title: "Call mom", Completed: true, CreatedAt: created},
	}
}

func ids(tasks []domain.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestParseFilter(t *testing.T) {
	tests := map[string]Filter{
		"":           FilterAll,
		"all":        FilterAll,
		"active":     FilterActive,
		" Completed ": FilterCompleted,
		"bogus":      FilterAll,
	}
	for in, want := range tests {
		if got := ParseFilter(in); got != want {
			t.Fatalf("ParseFilter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProjectPartitions(t *testing.T) {
	tasks := sampleTasks()

	all := Project(tasks, FilterAll)
	active := Project(tasks, FilterActive)
	completed := Project(tasks, FilterCompleted)

	if len(active)+len(completed) != len(all) || len(all) != len(tasks) {
		t.Fatalf("sizes: active=%d completed=%d all=%d", len(active), len(completed), len(all))
	}
	for _, task := range active {
		if task.Completed {
			t.Fatalf("active view contains completed task %d", task.ID)
		}
	}
	for _, task := range completed {
		if !task.Completed {
			t.Fatalf("completed view contains active task %d", task.ID)
		}
	}

	if got := ids(active); len(got) != 2 || got[0] != 4 || got[1] != 2 {
		t.Fatalf("active order = %v, want [4 2]", got)
	}
	if got := ids(completed); len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Fatalf("completed order = %v, want [3 1]", got)
	}
}

func TestProjectDoesNotAliasInput(t *testing.T) {
	tasks := sampleTasks()
	out := Project(tasks, FilterAll)
	out[0].Title = "changed"
	if tasks[0].Title != "Write report" {
		t.Fatal("projection must not share backing storage with its input")
	}
}

func TestEmptyMessages(t *testing.T) {
	tests := map[Filter]string{
		FilterAll:       "No todos yet. Add one above to get started!",
		FilterActive:    "No active todos. Great job!",
		FilterCompleted: "No completed todos yet.",
	}
	for filter, want := range tests {
		var buf bytes.Buffer
		if err := List(Snapshot{Filter: filter}).Render(context.Background(), &buf); err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("%s: expected %q in %q", filter, want, buf.String())
		}
	}
}

func TestItemsCarryCommands(t *testing.T) {
	items := Items(Snapshot{Tasks: sampleTasks(), Filter: FilterAll})
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}

	done := items[1]
	if done.ID != 3 || !done.Checked {
		t.Fatalf("unexpected item %+v", done)
	}
	if done.Toggle.Action != ActionToggle || done.Toggle.TaskID != 3 || *done.Toggle.Patch.Completed {
		t.Fatalf("toggle must uncheck a completed task, got %+v", done.Toggle)
	}
	if done.Delete.Action != ActionDelete || done.Delete.TaskID != 3 {
		t.Fatalf("unexpected delete command %+v", done.Delete)
	}
	edit := done.Edit.WithTitle("Buy oat milk")
	if *edit.Patch.Title != "Buy oat milk" || done.Edit.Patch.Title != nil {
		t.Fatal("WithTitle must not modify the original command")
	}
	if done.Created != "Mar 15, 2024" {
		t.Fatalf("created = %q", done.Created)
	}
}

func TestPendingToggleOverridesCheckbox(t *testing.T) {
	s := Snapshot{
		Tasks:   sampleTasks(),
		Filter:  FilterAll,
		Pending: map[int64]bool{2: true},
	}
	for _, item := range Items(s) {
		if item.ID != 2 {
			continue
		}
		if !item.Checked || !item.Pending || item.Completed {
			t.Fatalf("unexpected item %+v", item)
		}
		return
	}
	t.Fatal("item 2 not rendered")
}

func TestListEscapesUserText(t *testing.T) {
	s := Snapshot{
		Tasks: []domain.Task{{ID: 1, Title: `<script>alert("x")</script>`, CreatedAt: time.Now()}},
	}

	var buf bytes.Buffer
	if err := List(s).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Fatalf("unescaped markup in %q", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped title in %q", out)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	s := Snapshot{Tasks: sampleTasks(), Filter: FilterActive}

	var first, second bytes.Buffer
	if err := Page("Todos", s, "").Render(context.Background(), &first); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := Page("Todos", s, "").Render(context.Background(), &second); err != nil {
		t.Fatalf("render: %v", err)
	}
	if first.String() != second.String() {
		t.Fatal("rendering the same snapshot twice produced different output")
	}
	if !strings.Contains(first.String(), `class="filter-btn active" data-filter="active"`) {
		t.Fatalf("active filter not highlighted in %q", first.String())
	}
	if strings.Contains(first.String(), "Buy milk") {
		t.Fatal("completed task leaked into active view")
	}
}

func TestItemFormsPostCommands(t *testing.T) {
	s := Snapshot{Tasks: sampleTasks()[:2], Filter: FilterActive}

	var buf bytes.Buffer
	if err := Page("Todos", s, "").Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<form class="todo-form" method="post" action="/todos">`,
		`<form class="todo-edit" method="post" action="/todos/4/edit">`,
		`<form class="todo-delete" method="post" action="/todos/4/delete" onsubmit="`,
		`<form class="todo-toggle" method="post" action="/todos/4/toggle">`,
		`<input type="hidden" name="completed" value="true">`,
		`<input type="hidden" name="filter" value="active">`,
		`href="/?filter=completed"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, `class="notification"`) {
		t.Fatal("empty notice rendered a banner")
	}
}

func TestPageNotice(t *testing.T) {
	var buf bytes.Buffer
	if err := Page("Todos", Snapshot{}, `Title <is> required`).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `<p class="notification" role="alert">Title &lt;is&gt; required</p>`) {
		t.Fatalf("notice missing or unescaped in %q", buf.String())
	}
}

func TestCommandPaths(t *testing.T) {
	for _, action := range []Action{ActionToggle, ActionEdit, ActionDelete} {
		cmd := Command{Action: action, TaskID: 12}
		if got, want := cmd.Path(), "/todos/12/"+string(action); got != want {
			t.Fatalf("path = %q, want %q", got, want)
		}
		parsed, ok := ParseAction(string(action))
		if !ok || parsed != action {
			t.Fatalf("ParseAction(%q) = %q, %v", action, parsed, ok)
		}
	}
	if _, ok := ParseAction("archive"); ok {
		t.Fatal("unknown action accepted")
	}
}

func TestWriteText(t *testing.T) {
	s := Snapshot{Tasks: sampleTasks(), Filter: FilterCompleted, Pending: map[int64]bool{1: false}}

	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "[x]    3  Buy milk  (Mar 15, 2024)\n[~]    1  Call mom  (Mar 15, 2024)\n"
	if buf.String() != want {
		t.Fatalf("text = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteText(&buf, Snapshot{Filter: FilterActive}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "No active todos. Great job!\n" {
		t.Fatalf("text = %q", buf.String())
	}
}
