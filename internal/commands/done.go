package commands

import (
	"context"
	"flag"

	"stickylist/internal/exitcode"
	"stickylist/internal/output"
	"stickylist/internal/service"
	"stickylist/internal/syncer"
)

func init() {
	Register(&DoneCmd{})
	Register(&PinCmd{})
}

// DoneCmd implements the done command. Completion is kept locally.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"check"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's completed state" }
func (c *DoneCmd) Usage() string     { return "stickylist done <checklist> <n>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string) int {
	return runToggle(ctx, env, args, (*syncer.Tasks).ToggleCompleted)
}

// PinCmd implements the pin command. Pins are kept locally.
type PinCmd struct{}

func (c *PinCmd) Name() string      { return "pin" }
func (c *PinCmd) Aliases() []string { return nil }
func (c *PinCmd) Synopsis() string  { return "Toggle a task's pinned state" }
func (c *PinCmd) Usage() string     { return "stickylist pin <checklist> <n>" }
func (c *PinCmd) NeedsAuth() bool   { return true }

func (c *PinCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PinCmd) Run(ctx context.Context, env *Env, args []string) int {
	return runToggle(ctx, env, args, (*syncer.Tasks).TogglePinned)
}

type toggleFunc func(t *syncer.Tasks, ctx context.Context, id string) (service.Task, bool)

// runToggle is the shared implementation for done and pin.
func runToggle(ctx context.Context, env *Env, args []string, toggle toggleFunc) int {
	tasks, task, err := checklistAndTask(ctx, env, args)
	if err != nil {
		return env.Fail(err)
	}
	updated, ok := toggle(tasks, ctx, task.ID)
	if !ok {
		return env.Failf("task not found: %s", task.ID)
	}

	if !env.Quiet() {
		display := tasks.Display()
		for i, t := range display {
			if t.ID == updated.ID {
				output.FormatTask(env.Out, i+1, t)
				break
			}
		}
	}
	return exitcode.Success
}
