// Package repotest holds a conformance suite every TaskRepository
// implementation must pass.
package repotest

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) repository.TaskRepository

// Run executes the suite against repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("create assigns identity and defaults", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := mustCreate(t, repo, "Buy milk", false)
		second := mustCreate(t, repo, "Walk dog", false)

		if first.ID == 0 || second.ID == 0 || first.ID == second.ID {
			t.Fatalf("expected distinct ids, got %d and %d", first.ID, second.ID)
		}
		if first.Completed {
			t.Fatal("expected completed=false")
		}
		if first.CreatedAt.IsZero() {
			t.Fatal("expected createdAt to be set")
		}
		if first.UpdatedAt != nil {
			t.Fatalf("expected nil updatedAt, got %v", first.UpdatedAt)
		}

		got, err := repo.GetByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != "Buy milk" {
			t.Fatalf("title = %q, want %q", got.Title, "Buy milk")
		}
	})

	t.Run("create trims and honours completed", func(t *testing.T) {
		repo := newRepo(t)
		task := mustCreate(t, repo, "  Read book  ", true)
		if task.Title != "Read book" {
			t.Fatalf("title = %q, want %q", task.Title, "Read book")
		}
		if !task.Completed {
			t.Fatal("expected completed=true")
		}
	})

	t.Run("create rejects blank titles", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, title := range []string{"", "   ", "\t"} {
			if _, err := repo.Create(ctx, title, false); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("title %q: expected invalid error, got %v", title, err)
			}
		}

		tasks, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(tasks) != 0 {
			t.Fatalf("expected nothing persisted, got %d tasks", len(tasks))
		}
	})

	t.Run("over-long titles are invalid", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		long := strings.Repeat("x", domain.TitleMaxLength+1)

		if _, err := repo.Create(ctx, long, false); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Fatalf("create: expected invalid error, got %v", err)
		}

		created, err := repo.Create(ctx, strings.Repeat("x", domain.TitleMaxLength), false)
		if err != nil {
			t.Fatalf("create at limit: %v", err)
		}
		if _, err := repo.Update(ctx, created.ID, domain.TaskPatch{Title: &long}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Fatalf("update: expected invalid error, got %v", err)
		}

		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != created.Title || got.UpdatedAt != nil {
			t.Fatalf("rejected update changed the task: %+v", got)
		}
	})

	t.Run("update replaces only present fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		task := mustCreate(t, repo, "Buy milk", true)

		updated, err := repo.Update(ctx, task.ID, domain.TaskPatch{Title: domain.String("X")})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Title != "X" {
			t.Fatalf("title = %q, want %q", updated.Title, "X")
		}
		if !updated.Completed {
			t.Fatal("completed must be left untouched")
		}
		if updated.UpdatedAt == nil || !updated.UpdatedAt.After(task.CreatedAt) {
			t.Fatalf("updatedAt %v must be after createdAt %v", updated.UpdatedAt, task.CreatedAt)
		}
		if !updated.CreatedAt.Equal(task.CreatedAt) {
			t.Fatalf("createdAt changed from %v to %v", task.CreatedAt, updated.CreatedAt)
		}

		again, err := repo.Update(ctx, task.ID, domain.TaskPatch{Completed: domain.Bool(false)})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if again.Title != "X" || again.Completed {
			t.Fatalf("unexpected task %+v", again)
		}
		if !again.UpdatedAt.After(*updated.UpdatedAt) {
			t.Fatalf("updatedAt %v must advance past %v", again.UpdatedAt, updated.UpdatedAt)
		}
	})

	t.Run("empty update still refreshes updatedAt", func(t *testing.T) {
		repo := newRepo(t)
		task := mustCreate(t, repo, "Buy milk", false)

		updated, err := repo.Update(context.Background(), task.ID, domain.TaskPatch{})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.UpdatedAt == nil {
			t.Fatal("expected updatedAt to be set")
		}
		if updated.Title != task.Title || updated.Completed != task.Completed {
			t.Fatalf("unexpected task %+v", updated)
		}
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		task := mustCreate(t, repo, "Buy milk", false)
		before := mustList(t, repo)

		missing := task.ID + 1000
		if _, err := repo.GetByID(ctx, missing); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Fatalf("get: expected not found, got %v", err)
		}
		if _, err := repo.Update(ctx, missing, domain.TaskPatch{Title: domain.String("Y")}); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Fatalf("update: expected not found, got %v", err)
		}
		if err := repo.Delete(ctx, missing); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Fatalf("delete: expected not found, got %v", err)
		}

		if after := mustList(t, repo); !reflect.DeepEqual(before, after) {
			t.Fatalf("store mutated: before %+v after %+v", before, after)
		}
	})

	t.Run("delete removes exactly one record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		keep := mustCreate(t, repo, "Keep", false)
		drop := mustCreate(t, repo, "Drop", false)

		if err := repo.Delete(ctx, drop.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		tasks := mustList(t, repo)
		if len(tasks) != 1 || tasks[0].ID != keep.ID {
			t.Fatalf("unexpected tasks %+v", tasks)
		}
		if err := repo.Delete(ctx, drop.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Fatalf("second delete: expected not found, got %v", err)
		}
		if _, err := repo.GetByID(ctx, drop.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Fatalf("get: expected not found, got %v", err)
		}
	})

	t.Run("ids are never reused", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		first := mustCreate(t, repo, "First", false)
		if err := repo.Delete(ctx, first.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		second := mustCreate(t, repo, "Second", false)
		if second.ID == first.ID {
			t.Fatalf("id %d reused", first.ID)
		}
	})

	t.Run("list is newest first and stable", func(t *testing.T) {
		repo := newRepo(t)
		a := mustCreate(t, repo, "A", false)
		b := mustCreate(t, repo, "B", false)
		c := mustCreate(t, repo, "C", false)

		first := mustList(t, repo)
		second := mustList(t, repo)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("list not idempotent: %+v vs %+v", first, second)
		}

		ids := []int64{first[0].ID, first[1].ID, first[2].ID}
		want := []int64{c.ID, b.ID, a.ID}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		repo := newRepo(t)
		tasks := mustList(t, repo)
		if tasks == nil {
			t.Fatal("expected empty slice, got nil")
		}
	})
}

func mustCreate(t *testing.T, repo repository.TaskRepository, title string, completed bool) *domain.Task {
	t.Helper()
	task, err := repo.Create(context.Background(), title, completed)
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}

func mustList(t *testing.T, repo repository.TaskRepository) []domain.Task {
	t.Helper()
	tasks, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return tasks
}
