package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

// KeyValue is the subset of *redislib.Client the cache relies on.
type KeyValue interface {
	Get(ctx context.Context, key string) *redislib.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redislib.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redislib.BoolCmd
	Del(ctx context.Context, keys ...string) *redislib.IntCmd
}

// tombstone marks a deleted task. Ids are never reused, so it can live as
// long as a regular entry.
const tombstone = "deleted"

type cachedTaskRepository struct {
	next   repository.TaskRepository
	client KeyValue
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTaskRepository wraps next with a read-through Redis cache for
// single-task lookups. Writes go to next first and then overwrite the
// entry: the confirmed task after create and update, a tombstone after
// delete. Misses are filled with SETNX, so a lookup that read the store
// before a concurrent write can never replace what that write cached.
// Redis failures are logged and never surface to callers.
func NewCachedTaskRepository(next repository.TaskRepository, client KeyValue, ttl time.Duration, logger *zap.Logger) repository.TaskRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedTaskRepository{
		next:   next,
		client: client,
		prefix: "todo:",
		ttl:    ttl,
		logger: logger,
	}
}

func (r *cachedTaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.next.List(ctx)
}

func (r *cachedTaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	switch {
	case err == nil:
		if string(raw) == tombstone {
			return nil, domain.ErrTodoNotFound
		}
		var task domain.Task
		if err := json.Unmarshal(raw, &task); err == nil {
			return &task, nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.Int64("id", id))
		r.evict(ctx, id)
	case !errors.Is(err, redislib.Nil):
		r.logger.Warn("task cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	task, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, task)
	return task, nil
}

func (r *cachedTaskRepository) Create(ctx context.Context, title string, completed bool) (*domain.Task, error) {
	task, err := r.next.Create(ctx, title, completed)
	if err != nil {
		return nil, err
	}
	r.store(ctx, task)
	return task, nil
}

func (r *cachedTaskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := r.next.Update(ctx, id, patch)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			r.bury(ctx, id)
		}
		return nil, err
	}
	r.store(ctx, task)
	return task, nil
}

func (r *cachedTaskRepository) Delete(ctx context.Context, id int64) error {
	err := r.next.Delete(ctx, id)
	if err == nil || domain.IsDomainError(err, domain.ErrCodeNotFound) {
		r.bury(ctx, id)
	}
	return err
}

// store overwrites the entry with a task confirmed by a write.
func (r *cachedTaskRepository) store(ctx context.Context, task *domain.Task) {
	payload, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key(task.ID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("task cache write failed", zap.Int64("id", task.ID), zap.Error(err))
	}
}

// fill caches a task read on a miss unless a write got there first.
func (r *cachedTaskRepository) fill(ctx context.Context, task *domain.Task) {
	payload, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := r.client.SetNX(ctx, r.key(task.ID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("task cache fill failed", zap.Int64("id", task.ID), zap.Error(err))
	}
}

// bury replaces the entry with a tombstone so a late fill cannot bring a
// deleted task back.
func (r *cachedTaskRepository) bury(ctx context.Context, id int64) {
	if err := r.client.Set(ctx, r.key(id), tombstone, r.ttl).Err(); err != nil {
		r.logger.Warn("task cache tombstone failed", zap.Int64("id", id), zap.Error(err))
	}
}

// evict failures leave a stale entry for at most one TTL.
func (r *cachedTaskRepository) evict(ctx context.Context, id int64) {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		r.logger.Warn("task cache evict failed", zap.Int64("id", id), zap.Error(err))
	}
}

func (r *cachedTaskRepository) key(id int64) string {
	return r.prefix + strconv.FormatInt(id, 10)
}
