package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"stickylist/internal/config"
	"stickylist/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "stickylist logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string) int {
	if env.Config.Backend == config.BackendGoogleTasks {
		return c.removeGoogleToken(env)
	}

	store, err := env.Store(ctx)
	if err != nil {
		return env.Fail(err)
	}
	// No backend is needed to forget the token.
	removed, err := sessionOver(store, env).Logout(ctx)
	if err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	if !removed {
		if !env.Quiet() {
			fmt.Fprintln(env.Out, "not logged in")
		}
		return exitcode.Success
	}

	env.OK()
	return exitcode.Success
}

func (c *LogoutCmd) removeGoogleToken(env *Env) int {
	if !env.Config.HasGoogleToken() {
		if !env.Quiet() {
			fmt.Fprintln(env.Out, "not logged in")
		}
		return exitcode.Success
	}
	if err := os.Remove(env.Config.GoogleTokenPath()); err != nil {
		fmt.Fprintf(env.ErrOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	env.OK()
	return exitcode.Success
}
