package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"stickylist/internal/exitcode"
	"stickylist/internal/syncer"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes sets the yes flag (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "stickylist rm [--yes] <checklist> <n>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string) int {
	tasks, task, err := checklistAndTask(ctx, env, args)
	if err != nil {
		return env.Fail(err)
	}

	confirm := syncer.AlwaysConfirm
	if !c.yes {
		confirm = promptConfirmer(bufio.NewReader(env.In), env.ErrOut)
	}
	deleted, err := tasks.Delete(ctx, task.ID, confirm)
	if err != nil {
		return env.Fail(err)
	}
	if !deleted {
		if !env.Quiet() {
			fmt.Fprintln(env.Out, "cancelled")
		}
		return exitcode.Success
	}

	env.OK()
	return exitcode.Success
}

// promptConfirmer asks on w and reads a y/yes answer from r.
// Anything else, including EOF, declines.
func promptConfirmer(r *bufio.Reader, w io.Writer) syncer.Confirmer {
	return syncer.ConfirmFunc(func(ctx context.Context, title, message string) (bool, error) {
		fmt.Fprintf(w, "%s: %s [y/N] ", title, message)
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
