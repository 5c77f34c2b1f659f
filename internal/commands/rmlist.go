package commands

import (
	"context"
	"flag"
	"strings"

	"stickylist/internal/exitcode"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a checklist" }
func (c *RmListCmd) Usage() string     { return "stickylist rmlist [--force] <checklist>" }
func (c *RmListCmd) NeedsAuth() bool   { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, env *Env, args []string) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		return env.Failf("checklist required")
	}

	lists, list, err := resolveChecklist(ctx, env, ref, false)
	if err != nil {
		return env.Fail(err)
	}

	// Refuse to drop tasks unless --force
	if !c.force {
		svc, err := env.Service(ctx)
		if err != nil {
			return env.Fail(err)
		}
		tasks, err := svc.ListTasks(ctx, list.ID)
		if err != nil {
			return env.Fail(err)
		}
		if len(tasks) > 0 {
			return env.Failf("checklist not empty (use --force)")
		}
	}

	if err := lists.Delete(ctx, list.ID); err != nil {
		return env.Fail(err)
	}

	env.OK()
	return exitcode.Success
}
