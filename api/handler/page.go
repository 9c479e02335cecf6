package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	appLogger "github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/usecase"
	todoUC "github.com/fastygo/todo/usecase/todo"
	"github.com/fastygo/todo/view"
)

const pageTitle = "Todo App"

// Notices travel through the redirect as keys so the page only ever shows
// messages it knows.
const (
	noticeTitleRequired = "title-required"
	noticeTitleTooLong  = "title-too-long"
	noticeNotFound      = "not-found"
	noticeCreateFailed  = "create-failed"
	noticeUpdateFailed  = "update-failed"
	noticeDeleteFailed  = "delete-failed"
)

var noticeMessages = map[string]string{
	noticeTitleRequired: domain.ErrTitleRequired.Message,
	noticeTitleTooLong:  domain.ErrTitleTooLong.Message,
	noticeNotFound:      domain.ErrTodoNotFound.Message,
	noticeCreateFailed:  "Failed to create todo. Please try again.",
	noticeUpdateFailed:  "Failed to update todo. Please try again.",
	noticeDeleteFailed:  "Failed to delete todo. Please try again.",
}

type PageHandler struct {
	baseHandler
	uc       *todoUC.UseCase
	commands map[view.Action]pageCommand
}

// pageCommand applies a form-submitted command through the use case and
// names the notice shown when it fails for a reason other than validation.
type pageCommand struct {
	apply  func(ctx context.Context, uc *todoUC.UseCase, cmd view.Command) error
	failed string
}

func NewPageHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		commands: map[view.Action]pageCommand{
			view.ActionToggle: {apply: updateTodo, failed: noticeUpdateFailed},
			view.ActionEdit:   {apply: updateTodo, failed: noticeUpdateFailed},
			view.ActionDelete: {
				apply: func(ctx context.Context, uc *todoUC.UseCase, cmd view.Command) error {
					return uc.DeleteTodo(ctx, cmd.TaskID)
				},
				failed: noticeDeleteFailed,
			},
		},
	}
}

func updateTodo(ctx context.Context, uc *todoUC.UseCase, cmd view.Command) error {
	_, err := uc.UpdateTodo(ctx, cmd.TaskID, cmd.Patch)
	return err
}

// @Summary Render the todo list page
// @Tags pages
// @Param filter query string false "all, active or completed"
// @Param notice query string false "key of a message to show above the list"
// @Router / [get]
func (h *PageHandler) Index(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTodos(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	snapshot := view.Snapshot{
		Tasks:  tasks,
		Filter: view.ParseFilter(string(ctx.QueryArgs().Peek("filter"))),
	}
	notice := noticeMessages[string(ctx.QueryArgs().Peek("notice"))]

	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(http.StatusOK)
	if err := view.Page(pageTitle, snapshot, notice).Render(stdCtx, ctx); err != nil {
		h.respondError(stdCtx, ctx, err)
	}
}

// @Summary Create a todo from the page form
// @Tags pages
// @Param title formData string true "todo title"
// @Param filter formData string false "filter to return to"
// @Success 303 "redirect to the page"
// @Router /todos [post]
func (h *PageHandler) Create(ctx *fasthttp.RequestCtx) {
	filter := formFilter(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	_, err := h.uc.CreateTodo(stdCtx, usecase.CreateInput{Title: string(ctx.PostArgs().Peek("title"))})
	h.redirectToPage(stdCtx, ctx, filter, err, noticeCreateFailed)
}

// @Summary Run an item command from the page form
// @Tags pages
// @Param id path int true "todo id"
// @Param action path string true "toggle, edit or delete"
// @Param title formData string false "new title, for edit"
// @Param completed formData bool false "target state, for toggle"
// @Param filter formData string false "filter to return to"
// @Success 303 "redirect to the page"
// @Failure 400 {object} transport.ErrorBody "malformed id, unknown action or bad form value"
// @Router /todos/{id}/{action} [post]
func (h *PageHandler) Command(ctx *fasthttp.RequestCtx) {
	cmd, ok := h.formCommand(ctx)
	if !ok {
		return
	}
	filter := formFilter(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pc := h.commands[cmd.Action]
	h.redirectToPage(stdCtx, ctx, filter, pc.apply(stdCtx, h.uc, cmd), pc.failed)
}

// formCommand rebuilds the command a rendered item posted. It answers 400
// itself for requests no rendered form produces.
func (h *PageHandler) formCommand(ctx *fasthttp.RequestCtx) (view.Command, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondInvalid(ctx, domain.ErrInvalidID)
		return view.Command{}, false
	}
	name, _ := ctx.UserValue("action").(string)
	action, ok := view.ParseAction(name)
	if !ok {
		h.respondInvalid(ctx, domain.ErrInvalidPayload)
		return view.Command{}, false
	}

	cmd := view.Command{Action: action, TaskID: id}
	switch action {
	case view.ActionToggle:
		completed, err := strconv.ParseBool(string(ctx.PostArgs().Peek("completed")))
		if err != nil {
			h.respondInvalid(ctx, domain.ErrInvalidPayload)
			return view.Command{}, false
		}
		cmd.Patch.Completed = domain.Bool(completed)
	case view.ActionEdit:
		cmd = cmd.WithTitle(string(ctx.PostArgs().Peek("title")))
	}
	return cmd, true
}

func formFilter(ctx *fasthttp.RequestCtx) view.Filter {
	return view.ParseFilter(string(ctx.PostArgs().Peek("filter")))
}

// redirectToPage answers a form post with 303 See Other back to the page,
// carrying a notice key when err is set.
func (h *PageHandler) redirectToPage(stdCtx context.Context, ctx *fasthttp.RequestCtx, filter view.Filter, err error, failed string) {
	location := view.PagePath(filter)
	if err != nil {
		location += "&notice=" + url.QueryEscape(h.noticeFor(stdCtx, ctx, err, failed))
	}
	ctx.Response.Header.Set("Location", location)
	ctx.SetStatusCode(http.StatusSeeOther)
	ctx.ResetBody()
}

func (h *PageHandler) noticeFor(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error, failed string) string {
	switch {
	case errors.Is(err, domain.ErrTitleRequired):
		return noticeTitleRequired
	case errors.Is(err, domain.ErrTitleTooLong):
		return noticeTitleTooLong
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return noticeNotFound
	}
	appLogger.WithRequestID(stdCtx, h.logger).Error("page command failed",
		zap.String("path", string(ctx.Path())),
		zap.Error(err))
	return failed
}
