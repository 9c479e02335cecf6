// Package cli implements the todo command line client on top of a
// client.Session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fastygo/todo/client"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/view"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var errUsage = errors.New("usage")

// Command is one CLI verb.
type Command struct {
	Name     string
	Args     string
	Synopsis string
	Run      func(ctx context.Context, s *client.Session, args []string, out io.Writer) error
}

// Runner dispatches argv to registered commands.
type Runner struct {
	session  *client.Session
	commands map[string]Command
}

// New returns a runner with the list, add, edit, done, undo and rm commands.
func New(session *client.Session) *Runner {
	r := &Runner{session: session, commands: make(map[string]Command)}
	for _, cmd := range defaultCommands() {
		r.Register(cmd)
	}
	return r
}

func (r *Runner) Register(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// Run executes args and returns the process exit code. No arguments lists
// every task.
func (r *Runner) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{"list"}
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		r.usage(out)
		return ExitOK
	}

	cmd, ok := r.commands[name]
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		r.usage(errOut)
		return ExitUsage
	}

	if err := cmd.Run(ctx, r.session, args[1:], out); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(errOut, "error: %v\nusage: todo %s %s\n", err, cmd.Name, cmd.Args)
			return ExitUsage
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func (r *Runner) usage(w io.Writer) {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: todo <command> [arguments]")
	fmt.Fprintln(w)
	for _, name := range names {
		cmd := r.commands[name]
		fmt.Fprintf(w, "  %-6s %-16s %s\n", cmd.Name, cmd.Args, cmd.Synopsis)
	}
}

func defaultCommands() []Command {
	return []Command{
		{Name: "list", Args: "[all|active|completed]", Synopsis: "Show todos, newest first", Run: runList},
		{Name: "add", Args: "<title>", Synopsis: "Create a todo", Run: runAdd},
		{Name: "edit", Args: "<id> <title>", Synopsis: "Rename a todo", Run: runEdit},
		{Name: "done", Args: "<id>", Synopsis: "Mark a todo completed", Run: toggleRunner(true)},
		{Name: "undo", Args: "<id>", Synopsis: "Mark a todo active", Run: toggleRunner(false)},
		{Name: "rm", Args: "<id>", Synopsis: "Delete a todo", Run: runRemove},
	}
}

func runList(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	filter := view.FilterAll
	switch len(args) {
	case 0:
	case 1:
		filter = view.Filter(args[0])
		if view.ParseFilter(args[0]) != filter {
			return fmt.Errorf("%w: unknown filter %q", errUsage, args[0])
		}
	default:
		return fmt.Errorf("%w: too many arguments", errUsage)
	}

	if err := s.Load(ctx); err != nil {
		return err
	}
	s.SetFilter(filter)
	return view.WriteText(out, s.Snapshot())
}

func runAdd(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title required", errUsage)
	}
	task, err := s.Create(ctx, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %d: %s\n", task.ID, task.Title)
	return nil
}

func runEdit(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: id and title required", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	title := strings.Join(args[1:], " ")

	item, err := loadItem(ctx, s, id)
	if err != nil {
		return err
	}
	if err := s.Dispatcher().Dispatch(ctx, item.Edit.WithTitle(title)); err != nil {
		return err
	}
	task, _ := s.State().Find(id)
	fmt.Fprintf(out, "updated %d: %s\n", task.ID, task.Title)
	return nil
}

func toggleRunner(completed bool) func(context.Context, *client.Session, []string, io.Writer) error {
	return func(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: id required", errUsage)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		item, err := loadItem(ctx, s, id)
		if err != nil {
			return err
		}

		// The rendered toggle flips the checkbox; done and undo name the
		// target state instead, so running either twice is a no-op.
		cmd := item.Toggle
		cmd.Patch.Completed = domain.Bool(completed)
		if err := s.Dispatcher().Dispatch(ctx, cmd); err != nil {
			return err
		}
		task, _ := s.State().Find(id)
		state := "active"
		if task.Completed {
			state = "completed"
		}
		fmt.Fprintf(out, "%d is %s\n", id, state)
		return nil
	}
}

func runRemove(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: id required", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	item, err := loadItem(ctx, s, id)
	if err != nil {
		return err
	}
	if err := s.Dispatcher().Dispatch(ctx, item.Delete); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %d\n", id)
	return nil
}

// loadItem refreshes the session and returns the rendered item for id,
// whatever filter the session was last left on.
func loadItem(ctx context.Context, s *client.Session, id int64) (view.Item, error) {
	if err := s.Load(ctx); err != nil {
		return view.Item{}, err
	}
	snapshot := s.Snapshot()
	snapshot.Filter = view.FilterAll
	for _, item := range view.Items(snapshot) {
		if item.ID == id {
			return item, nil
		}
	}
	return view.Item{}, fmt.Errorf("todo %d not found", id)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}
