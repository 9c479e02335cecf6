package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/view"
)

type Handlers struct {
	Todo   *apiHandler.TodoHandler
	Health *apiHandler.HealthHandler
	Page   *apiHandler.PageHandler
}

// New registers every route and wraps the router in the given middlewares,
// first listed outermost.
func New(handlers Handlers, mws ...middleware.Middleware) fasthttp.RequestHandler {
	r := router.New()

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}
	if handlers.Page != nil {
		r.GET("/", handlers.Page.Index)
		r.POST(view.CreatePath, handlers.Page.Create)
		r.POST("/todos/{id}/{action}", handlers.Page.Command)
	}

	r.GET("/api/todos", handlers.Todo.ListTodos)
	r.POST("/api/todos", handlers.Todo.CreateTodo)
	r.GET("/api/todos/{id}", handlers.Todo.GetTodo)
	r.PUT("/api/todos/{id}", handlers.Todo.UpdateTodo)
	r.DELETE("/api/todos/{id}", handlers.Todo.DeleteTodo)

	return middleware.Chain(r.Handler, mws...)
}
