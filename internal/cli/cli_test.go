package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/fastygo/todo/client"
	"github.com/fastygo/todo/domain"
)

// memoryAPI is an in-process TodoAPI with the server's ordering and
// not-found behavior.
type memoryAPI struct {
	next      int64
	tasks     []domain.Task
	fail      error
	deleteErr error
	now       time.Time
}

func newMemoryAPI() *memoryAPI {
	return &memoryAPI{now: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)}
}

func (m *memoryAPI) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memoryAPI) List(context.Context) ([]domain.Task, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]domain.Task, 0, len(m.tasks))
	for i := len(m.tasks) - 1; i >= 0; i-- {
		out = append(out, m.tasks[i])
	}
	return out, nil
}

func (m *memoryAPI) Get(_ context.Context, id int64) (*domain.Task, error) {
	for _, task := range m.tasks {
		if task.ID == id {
			return &task, nil
		}
	}
	return nil, &client.APIError{Status: 404, Code: "NOT_FOUND", Message: "Todo not found"}
}

func (m *memoryAPI) Create(_ context.Context, title string, completed bool) (*domain.Task, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, &client.APIError{Status: 400, Code: "INVALID", Message: err.Error()}
	}
	m.next++
	task := domain.Task{ID: m.next, Title: title, Completed: completed, CreatedAt: m.tick()}
	m.tasks = append(m.tasks, task)
	return &task, nil
}

func (m *memoryAPI) Update(_ context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			updated := patch.Apply(m.tasks[i])
			at := m.tick()
			updated.UpdatedAt = &at
			m.tasks[i] = updated
			return &updated, nil
		}
	}
	return nil, &client.APIError{Status: 404, Code: "NOT_FOUND", Message: "Todo not found"}
}

func (m *memoryAPI) Delete(_ context.Context, id int64) error {
	if m.fail != nil {
		return m.fail
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Code: "NOT_FOUND", Message: "Todo not found"}
}

func run(t *testing.T, r *Runner, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := r.Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func newRunner(t *testing.T, api client.TodoAPI) (*Runner, *[]string) {
	t.Helper()
	var notes []string
	session := client.NewSession(api, client.NotifierFunc(func(msg string) { notes = append(notes, msg) }), zaptest.NewLogger(t))
	return New(session), &notes
}

func TestCommandsAgainstMemoryAPI(t *testing.T) {
	api := newMemoryAPI()
	r, _ := newRunner(t, api)

	code, out, _ := run(t, r)
	if code != ExitOK || out != "No todos yet. Add one above to get started!\n" {
		t.Fatalf("empty list: code %d out %q", code, out)
	}

	if code, out, _ = run(t, r, "add", "Buy", "milk"); code != ExitOK || out != "created 1: Buy milk\n" {
		t.Fatalf("add: code %d out %q", code, out)
	}
	if code, _, _ = run(t, r, "add", "Walk dog"); code != ExitOK {
		t.Fatalf("add: code %d", code)
	}

	if code, out, _ = run(t, r, "done", "1"); code != ExitOK || out != "1 is completed\n" {
		t.Fatalf("done: code %d out %q", code, out)
	}

	code, out, _ = run(t, r, "list", "completed")
	if code != ExitOK || !strings.Contains(out, "[x]    1  Buy milk") || strings.Contains(out, "Walk dog") {
		t.Fatalf("list completed: code %d out %q", code, out)
	}

	code, out, _ = run(t, r, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if code != ExitOK || len(lines) != 2 || !strings.Contains(lines[0], "Walk dog") {
		t.Fatalf("list: code %d out %q", code, out)
	}

	if code, out, _ = run(t, r, "edit", "2", "Walk", "the", "dog"); code != ExitOK || out != "updated 2: Walk the dog\n" {
		t.Fatalf("edit: code %d out %q", code, out)
	}
	if code, out, _ = run(t, r, "undo", "1"); code != ExitOK || out != "1 is active\n" {
		t.Fatalf("undo: code %d out %q", code, out)
	}
	if code, out, _ = run(t, r, "rm", "1"); code != ExitOK || out != "deleted 1\n" {
		t.Fatalf("rm: code %d out %q", code, out)
	}

	code, out, _ = run(t, r, "list", "active")
	if code != ExitOK || strings.TrimSpace(out) != "[ ]    2  Walk the dog  (Feb 1, 2024)" {
		t.Fatalf("list active: code %d out %q", code, out)
	}
}

func TestUsageErrors(t *testing.T) {
	r, _ := newRunner(t, newMemoryAPI())

	cases := [][]string{
		{"frobnicate"},
		{"add"},
		{"add", "   "},
		{"edit", "1"},
		{"done"},
		{"rm", "abc"},
		{"rm", "0"},
		{"list", "someday"},
		{"list", "active", "extra"},
	}
	for _, args := range cases {
		if code, _, errOut := run(t, r, args...); code != ExitUsage || !strings.HasPrefix(errOut, "error: ") {
			t.Fatalf("%v: code %d stderr %q", args, code, errOut)
		}
	}

	if code, out, _ := run(t, r, "help"); code != ExitOK || !strings.Contains(out, "usage: todo") {
		t.Fatalf("help: code %d out %q", code, out)
	}
}

func TestFailuresNotify(t *testing.T) {
	api := newMemoryAPI()
	r, notes := newRunner(t, api)

	if code, _, errOut := run(t, r, "done", "42"); code != ExitFailure || !strings.Contains(errOut, "todo 42 not found") {
		t.Fatalf("done unknown: code %d stderr %q", code, errOut)
	}
	for _, args := range [][]string{{"rm", "42"}, {"edit", "42", "x"}, {"undo", "42"}} {
		if code, _, errOut := run(t, r, args...); code != ExitFailure || !strings.Contains(errOut, "todo 42 not found") {
			t.Fatalf("%v: code %d stderr %q", args, code, errOut)
		}
	}
	if len(*notes) != 0 {
		t.Fatalf("unknown ids must fail before any request, notes %v", *notes)
	}

	if code, _, _ := run(t, r, "add", "Buy milk"); code != ExitOK {
		t.Fatalf("add: code %d", code)
	}
	api.deleteErr = errors.New("connection reset")
	if code, _, _ := run(t, r, "rm", "1"); code != ExitFailure {
		t.Fatalf("rm: code %d", code)
	}
	if last := (*notes)[len(*notes)-1]; last != "Failed to delete todo. Please try again." {
		t.Fatalf("notification = %q", last)
	}
	if len(api.tasks) != 1 {
		t.Fatalf("failed delete removed the task: %+v", api.tasks)
	}

	api.fail = errors.New("connection refused")
	if code, _, errOut := run(t, r, "list"); code != ExitFailure || !strings.Contains(errOut, "connection refused") {
		t.Fatalf("list: code %d stderr %q", code, errOut)
	}
	if last := (*notes)[len(*notes)-1]; last != "Failed to load todos. Please refresh the page." {
		t.Fatalf("notification = %q", last)
	}
}

// recordingAPI counts the writes the commands send.
type recordingAPI struct {
	*memoryAPI
	patches []domain.TaskPatch
}

func (r *recordingAPI) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	r.patches = append(r.patches, patch)
	return r.memoryAPI.Update(ctx, id, patch)
}

func TestDoneAndUndoNameTargetState(t *testing.T) {
	api := &recordingAPI{memoryAPI: newMemoryAPI()}
	r, _ := newRunner(t, api)

	if code, _, _ := run(t, r, "add", "Buy milk"); code != ExitOK {
		t.Fatalf("add: code %d", code)
	}
	for _, args := range [][]string{{"done", "1"}, {"done", "1"}, {"undo", "1"}} {
		if code, _, errOut := run(t, r, args...); code != ExitOK {
			t.Fatalf("%v: code %d stderr %q", args, code, errOut)
		}
	}

	want := []bool{true, true, false}
	if len(api.patches) != len(want) {
		t.Fatalf("sent %d patches, want %d", len(api.patches), len(want))
	}
	for i, patch := range api.patches {
		if patch.Completed == nil || *patch.Completed != want[i] || patch.Title != nil {
			t.Fatalf("patch %d = %+v, want completed=%v", i, patch, want[i])
		}
	}
	if api.tasks[0].Completed != want[2] {
		t.Fatalf("task = %+v", api.tasks[0])
	}
}
