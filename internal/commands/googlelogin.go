package commands

import (
	"context"
	"flag"
	"fmt"

	"stickylist/internal/backend/googletasks"
	"stickylist/internal/exitcode"
)

func init() {
	Register(&GoogleLoginCmd{})
}

// GoogleLoginCmd implements the google-login command.
type GoogleLoginCmd struct{}

func (c *GoogleLoginCmd) Name() string      { return "google-login" }
func (c *GoogleLoginCmd) Aliases() []string { return nil }
func (c *GoogleLoginCmd) Synopsis() string  { return "Authenticate with Google Tasks" }
func (c *GoogleLoginCmd) Usage() string     { return "stickylist google-login [common flags]" }
func (c *GoogleLoginCmd) NeedsAuth() bool   { return false }

func (c *GoogleLoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *GoogleLoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	cfg := env.Config
	errOut := env.ErrOut

	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintln(errOut, "To use the Google Tasks backend, you need OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Create a project (or select an existing one)")
		fmt.Fprintln(errOut, "3. Enable the Google Tasks API:")
		fmt.Fprintln(errOut, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
		fmt.Fprintln(errOut, "4. Create OAuth 2.0 credentials:")
		fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
		fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
		fmt.Fprintln(errOut, "   - Download the JSON file")
		fmt.Fprintln(errOut, "5. Save it as:")
		fmt.Fprintf(errOut, "   %s/oauth_client.json\n", cfg.Dir)
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'stickylist google-login' again.")
		return exitcode.AuthError
	}

	if cfg.HasGoogleToken() && googletasks.HasValidToken(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(env.Out, "already logged in")
		}
		return exitcode.Success
	}

	if err := googletasks.Authorize(ctx, cfg, errOut); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	env.OK()
	return exitcode.Success
}
