package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"stickylist/internal/exitcode"
	"stickylist/internal/output"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd implements the tasks command.
type TasksCmd struct {
	cached bool
}

// SetCached sets the cached flag (for testing).
func (c *TasksCmd) SetCached(cached bool) {
	c.cached = cached
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"list"} }
func (c *TasksCmd) Synopsis() string  { return "List the tasks of a checklist" }
func (c *TasksCmd) Usage() string     { return "stickylist tasks [--cached] <checklist>" }
func (c *TasksCmd) NeedsAuth() bool   { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.cached, "cached", false, "")
}

func (c *TasksCmd) Run(ctx context.Context, env *Env, args []string) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return env.Failf("checklist required")
	}

	_, list, err := resolveChecklist(ctx, env, ref, c.cached)
	if err != nil {
		return env.Fail(err)
	}
	tasks, err := loadTasks(ctx, env, list.ID, c.cached)
	if err != nil {
		return env.Fail(err)
	}

	display := tasks.Display()
	if len(display) == 0 {
		if !env.Quiet() {
			fmt.Fprintln(env.Out, "no tasks found")
		}
		return exitcode.Success
	}
	output.FormatTasks(env.Out, display)
	return exitcode.Success
}
