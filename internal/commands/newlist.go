package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"stickylist/internal/exitcode"
	"stickylist/internal/syncer"
)

func init() {
	Register(&NewListCmd{})
}

// NewListCmd implements the newlist command.
type NewListCmd struct{}

func (c *NewListCmd) Name() string      { return "newlist" }
func (c *NewListCmd) Aliases() []string { return []string{"mklist"} }
func (c *NewListCmd) Synopsis() string  { return "Create a checklist" }
func (c *NewListCmd) Usage() string     { return "stickylist newlist [common flags] <title...>" }
func (c *NewListCmd) NeedsAuth() bool   { return true }

func (c *NewListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *NewListCmd) Run(ctx context.Context, env *Env, args []string) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return env.Failf("checklist title required")
	}

	// Start from the mirror so the prepend keeps the rest of the list.
	lists, err := loadChecklists(ctx, env, true)
	if err != nil {
		return env.Fail(err)
	}

	created, err := lists.Create(ctx, title)
	if errors.Is(err, syncer.ErrBlank) {
		return env.Failf("checklist title required")
	}
	if err != nil {
		return env.Fail(err)
	}

	if !env.Quiet() {
		fmt.Fprintf(env.Out, "created %s\n", created.Title)
	}
	return exitcode.Success
}
