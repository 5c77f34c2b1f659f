package commands

import (
	"context"
	"flag"
	"fmt"
	"time"

	"stickylist/internal/config"
	"stickylist/internal/exitcode"
	"stickylist/internal/mirror"
	"stickylist/internal/output"
	"stickylist/internal/session"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command.
type StatusCmd struct {
	// Now is used to decide token expiry. Defaults to time.Now.
	Now func() time.Time
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string  { return "Show the stored session" }
func (c *StatusCmd) Usage() string     { return "stickylist status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, env *Env, args []string) int {
	if env.Config.Backend == config.BackendGoogleTasks {
		if env.Config.HasGoogleToken() {
			fmt.Fprintln(env.Out, "logged in (google tasks)")
		} else {
			fmt.Fprintln(env.Out, "not logged in")
		}
		return exitcode.Success
	}

	store, err := env.Store(ctx)
	if err != nil {
		return env.Fail(err)
	}
	st, err := sessionOver(store, env).Status(ctx)
	if err != nil {
		return env.Fail(err)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	output.FormatStatus(env.Out, st, now())
	return exitcode.Success
}

// sessionOver returns a session manager that only touches the store.
func sessionOver(store mirror.Store, env *Env) *session.Manager {
	return session.New(nil, store, env.Log)
}
