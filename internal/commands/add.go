package commands

import (
	"context"
	"flag"
	"strings"

	"stickylist/internal/exitcode"
	"stickylist/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	color string
}

// SetColor sets the color flag (for testing).
func (c *AddCmd) SetColor(color string) {
	c.color = color
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "stickylist add [--color <c>] <checklist> <text...>" }
func (c *AddCmd) NeedsAuth() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.color, "color", "", "")
	fs.StringVar(&c.color, "c", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) == 0 {
		return env.Failf("checklist required")
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return env.Failf("task text required")
	}
	color, err := service.ParseColor(c.color)
	if err != nil {
		return env.Failf("unknown color: %s", c.color)
	}

	_, list, err := resolveChecklist(ctx, env, args[0], false)
	if err != nil {
		return env.Fail(err)
	}
	// Keep local completion and pin state when adding.
	tasks, err := loadTasks(ctx, env, list.ID, true)
	if err != nil {
		return env.Fail(err)
	}
	if _, err := tasks.Create(ctx, text, color); err != nil {
		return env.Fail(err)
	}

	env.OK()
	return exitcode.Success
}
