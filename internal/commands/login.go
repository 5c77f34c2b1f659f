package commands

import (
	"context"
	"flag"
	"fmt"

	"stickylist/internal/config"
	"stickylist/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

// SetCredentials sets the email and password flags (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.email, c.password = email, password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in to Sticky List" }
func (c *LoginCmd) Usage() string     { return "stickylist login [--email <e>] [--password <p>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string) int {
	if env.Config.Backend == config.BackendGoogleTasks {
		return env.Failf("the googletasks backend signs in with: stickylist google-login")
	}

	p := newPrompter(env.In, env.ErrOut)
	email, password := c.email, c.password
	var err error
	if email == "" {
		if email, err = p.line("Email"); err != nil {
			return env.Fail(err)
		}
	}
	if password == "" {
		if password, err = p.secret("Password"); err != nil {
			return env.Fail(err)
		}
	}

	sess, err := env.Session(ctx)
	if err != nil {
		return env.Fail(err)
	}
	if err := sess.Login(ctx, email, password); err != nil {
		return env.Fail(err)
	}

	env.OK()
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
	confirm  string
}

// SetCredentials sets the register flags (for testing).
func (c *RegisterCmd) SetCredentials(email, password, confirm string) {
	c.email, c.password, c.confirm = email, password, confirm
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create a Sticky List account" }
func (c *RegisterCmd) Usage() string {
	return "stickylist register [--email <e>] [--password <p>] [--confirm <p>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string) int {
	if env.Config.Backend == config.BackendGoogleTasks {
		return env.Failf("the googletasks backend has no account registration")
	}

	p := newPrompter(env.In, env.ErrOut)
	email, password, confirm := c.email, c.password, c.confirm
	var err error
	if email == "" {
		if email, err = p.line("Email"); err != nil {
			return env.Fail(err)
		}
	}
	if password == "" {
		if password, err = p.secret("Password"); err != nil {
			return env.Fail(err)
		}
	}
	if confirm == "" {
		if confirm, err = p.secret("Confirm password"); err != nil {
			return env.Fail(err)
		}
	}

	sess, err := env.Session(ctx)
	if err != nil {
		return env.Fail(err)
	}
	if err := sess.Register(ctx, email, password, confirm); err != nil {
		return env.Fail(err)
	}

	if !env.Quiet() {
		fmt.Fprintln(env.Out, "registered (run: stickylist login)")
	}
	return exitcode.Success
}
