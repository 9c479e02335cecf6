// Package client keeps an in-memory mirror of the todo list in sync with the
// HTTP API. State only changes after the server confirms a mutation.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/todo/domain"
)

// BasePath is where the todo API is mounted.
const BasePath = "/api/todos"

// TodoAPI is the remote surface a Session drives.
type TodoAPI interface {
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, title string, completed bool) (*domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("todo api: status %d", e.Status)
	}
	return fmt.Sprintf("todo api: status %d: %s", e.Status, e.Message)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// API is a TodoAPI over HTTP backed by fasthttp.Client.
type API struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

// APIOption customizes an API.
type APIOption func(*API)

// WithHTTPClient replaces the default fasthttp client.
func WithHTTPClient(c *fasthttp.Client) APIOption {
	return func(a *API) {
		if c != nil {
			a.http = c
		}
	}
}

// WithTimeout bounds every request when ctx carries no deadline.
func WithTimeout(d time.Duration) APIOption {
	return func(a *API) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAPI builds a client for the server at baseURL, e.g. http://localhost:3000.
func NewAPI(baseURL string, opts ...APIOption) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{Name: "todo-client"},
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := a.do(ctx, fasthttp.MethodGet, BasePath, nil, http.StatusOK, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (a *API) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	if err := a.do(ctx, fasthttp.MethodGet, taskPath(id), nil, http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *API) Create(ctx context.Context, title string, completed bool) (*domain.Task, error) {
	body := struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}{Title: title, Completed: completed}

	var task domain.Task
	if err := a.do(ctx, fasthttp.MethodPost, BasePath, body, http.StatusCreated, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *API) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	var task domain.Task
	if err := a.do(ctx, fasthttp.MethodPut, taskPath(id), patch, http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *API) Delete(ctx context.Context, id int64) error {
	return a.do(ctx, fasthttp.MethodDelete, taskPath(id), nil, http.StatusNoContent, nil)
}

func (a *API) do(ctx context.Context, method, path string, in any, want int, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(a.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := a.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := a.http.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status != want {
		return decodeError(status, resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var payload struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
	}
	return apiErr
}

func taskPath(id int64) string {
	return BasePath + "/" + strconv.FormatInt(id, 10)
}
