package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"stickylist/internal/exitcode"
	"stickylist/internal/output"
	"stickylist/internal/service"
	"stickylist/internal/syncer"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command: an interactive session that keeps
// checklists and tasks in memory between lines.
type ShellCmd struct{}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string  { return "Interactive session" }
func (c *ShellCmd) Usage() string     { return "stickylist shell [common flags]" }
func (c *ShellCmd) NeedsAuth() bool   { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return env.Failf("unexpected argument: %s", args[0])
	}
	store, err := env.Store(ctx)
	if err != nil {
		return env.Fail(err)
	}
	svc, err := env.Service(ctx)
	if err != nil {
		return env.Fail(err)
	}

	sh := &shell{
		env:   env,
		svc:   svc,
		in:    bufio.NewReader(env.In),
		lists: syncer.NewChecklists(svc, store, env.Log),
	}
	sh.start(ctx)
	return sh.loop(ctx)
}

const shellHelp = `Commands:
  lists                 show checklists
  find <query>          show checklists whose title contains query
  new <title...>        create a checklist
  del <checklist>       delete a checklist
  open <checklist>      select a checklist and show its tasks
  tasks                 show the tasks of the selected checklist
  add [-c <color>] <text...>
                        add a task to the selected checklist
  done <n>              toggle completed
  pin <n>               toggle pinned
  rm <n>                delete a task
  reload                fetch the selected view from the server
  help                  show this help
  quit                  leave the shell
`

type shell struct {
	env   *Env
	svc   service.Service
	in    *bufio.Reader
	lists *syncer.Checklists
	tasks *syncer.Tasks
	open  service.Checklist
}

// start restores the mirrored checklists, then refreshes them from the server.
func (s *shell) start(ctx context.Context) {
	if _, err := s.lists.Restore(ctx); err != nil {
		s.env.Log.WithError(err).Warn("failed to read checklists from mirror")
	}
	if err := s.lists.Load(ctx); err != nil {
		s.report(err)
		if len(s.lists.Items()) > 0 {
			fmt.Fprintln(s.env.ErrOut, "showing saved checklists")
		}
	}
	s.showLists("")
}

func (s *shell) loop(ctx context.Context) int {
	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}
		s.prompt()
		line, err := s.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return s.env.Fail(err)
		}
		if quit := s.exec(ctx, strings.TrimSpace(line)); quit {
			return exitcode.Success
		}
		if err == io.EOF {
			return exitcode.Success
		}
	}
}

func (s *shell) prompt() {
	if s.open.ID != "" {
		fmt.Fprintf(s.env.ErrOut, "%s> ", s.open.Title)
		return
	}
	fmt.Fprint(s.env.ErrOut, "> ")
}

// exec runs one line. It reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(s.env.Out, shellHelp)
	case "lists", "ls":
		s.showLists("")
	case "find":
		s.showLists(rest)
	case "new":
		s.newList(ctx, rest)
	case "del":
		s.deleteList(ctx, rest)
	case "open":
		s.openList(ctx, rest)
	case "tasks":
		if s.requireOpen() {
			s.showTasks()
		}
	case "add":
		s.addTask(ctx, rest)
	case "done":
		s.toggle(ctx, rest, (*syncer.Tasks).ToggleCompleted)
	case "pin":
		s.toggle(ctx, rest, (*syncer.Tasks).TogglePinned)
	case "rm":
		s.deleteTask(ctx, rest)
	case "reload":
		s.reload(ctx)
	default:
		fmt.Fprintf(s.env.ErrOut, "error: unknown command: %s (try: help)\n", name)
	}
	return false
}

func (s *shell) report(err error) {
	switch {
	case errors.Is(err, syncer.ErrBlank):
		fmt.Fprintln(s.env.ErrOut, "error: text required")
	case errors.Is(err, syncer.ErrBusy):
		fmt.Fprintln(s.env.ErrOut, "error: busy, try again")
	default:
		fmt.Fprintf(s.env.ErrOut, "error: %s\n", describe(err))
	}
}

func (s *shell) showLists(query string) {
	items := s.lists.Items()
	matched := make(map[string]bool)
	for _, item := range s.lists.Filter(query) {
		matched[item.ID] = true
	}
	shown := 0
	for i, item := range items {
		if matched[item.ID] {
			output.FormatChecklist(s.env.Out, i+1, item)
			shown++
		}
	}
	if shown == 0 {
		fmt.Fprintln(s.env.Out, emptyChecklistsMessage(query))
	}
}

func (s *shell) newList(ctx context.Context, title string) {
	created, err := s.lists.Create(ctx, title)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprintf(s.env.Out, "created %s\n", created.Title)
}

func (s *shell) deleteList(ctx context.Context, ref string) {
	c, err := s.resolve(ref)
	if err != nil {
		s.report(err)
		return
	}
	if err := s.lists.Delete(ctx, c.ID); err != nil {
		s.report(err)
		return
	}
	if s.open.ID == c.ID {
		s.open, s.tasks = service.Checklist{}, nil
	}
	fmt.Fprintln(s.env.Out, "ok")
}

func (s *shell) openList(ctx context.Context, ref string) {
	c, err := s.resolve(ref)
	if err != nil {
		s.report(err)
		return
	}
	store, err := s.env.Store(ctx)
	if err != nil {
		s.report(err)
		return
	}
	tasks := syncer.NewTasks(s.svc, store, c.ID, s.env.Log)
	tasks.OnMirrorFailure(func(err error) {
		fmt.Fprintf(s.env.ErrOut, "warning: %v\n", err)
	})

	restored, err := tasks.Restore(ctx)
	if err != nil {
		s.env.Log.WithError(err).Warn("failed to read tasks from mirror")
	}
	if err := tasks.Load(ctx); err != nil {
		s.report(err)
		if !restored {
			return
		}
		fmt.Fprintln(s.env.ErrOut, "showing saved tasks")
	}
	s.open, s.tasks = c, tasks
	s.showTasks()
}

func (s *shell) resolve(ref string) (service.Checklist, error) {
	if ref == "" {
		return service.Checklist{}, refErr(service.ErrValidationFailed, "checklist required")
	}
	c, err := s.lists.Resolve(ref)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c, refErr(service.ErrNotFound, "checklist not found: %s", ref)
	case errors.Is(err, service.ErrAmbiguous):
		return c, refErr(service.ErrAmbiguous, "ambiguous checklist name: %s", ref)
	}
	return c, err
}

func (s *shell) requireOpen() bool {
	if s.tasks == nil {
		fmt.Fprintln(s.env.ErrOut, "error: no checklist open (try: open <checklist>)")
		return false
	}
	return true
}

func (s *shell) showTasks() {
	display := s.tasks.Display()
	if len(display) == 0 {
		fmt.Fprintln(s.env.Out, "no tasks found")
		return
	}
	output.FormatTasks(s.env.Out, display)
}

func (s *shell) addTask(ctx context.Context, rest string) {
	if !s.requireOpen() {
		return
	}
	var color service.Color
	if flagName, after, ok := strings.Cut(rest, " "); ok && (flagName == "-c" || flagName == "--color") {
		value, text, _ := strings.Cut(strings.TrimSpace(after), " ")
		c, err := service.ParseColor(value)
		if err != nil {
			fmt.Fprintf(s.env.ErrOut, "error: unknown color: %s\n", value)
			return
		}
		color, rest = c, text
	}
	if _, err := s.tasks.Create(ctx, rest, color); err != nil {
		s.report(err)
		return
	}
	s.showTasks()
}

func (s *shell) taskArg(arg string) (service.Task, bool) {
	if !s.requireOpen() {
		return service.Task{}, false
	}
	n, err := ParseTaskNumber(arg)
	if err != nil {
		s.report(err)
		return service.Task{}, false
	}
	task, err := taskAt(s.tasks, n)
	if err != nil {
		s.report(err)
		return service.Task{}, false
	}
	return task, true
}

func (s *shell) toggle(ctx context.Context, arg string, toggle toggleFunc) {
	task, ok := s.taskArg(arg)
	if !ok {
		return
	}
	toggle(s.tasks, ctx, task.ID)
	s.showTasks()
}

func (s *shell) deleteTask(ctx context.Context, arg string) {
	task, ok := s.taskArg(arg)
	if !ok {
		return
	}
	deleted, err := s.tasks.Delete(ctx, task.ID, promptConfirmer(s.in, s.env.ErrOut))
	if err != nil {
		s.report(err)
		return
	}
	if !deleted {
		fmt.Fprintln(s.env.Out, "cancelled")
		return
	}
	s.showTasks()
}

func (s *shell) reload(ctx context.Context) {
	if s.tasks != nil {
		if err := s.tasks.Load(ctx); err != nil {
			s.report(err)
			return
		}
		s.showTasks()
		return
	}
	if err := s.lists.Load(ctx); err != nil {
		s.report(err)
		return
	}
	s.showLists("")
}
