// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"stickylist/internal/commands"
	"stickylist/internal/config"
	"stickylist/internal/exitcode"
	"stickylist/internal/logging"
	"stickylist/internal/service"
)

// DefaultCommand runs when no arguments are given.
const DefaultCommand = "checklists"

// Factories inject the store and backend during dispatch.
type Factories struct {
	// Store opens the mirror store. Nil uses the configured driver.
	Store commands.StoreFactory

	// Service creates the backend.
	Service commands.ServiceFactory
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry  *commands.Registry
	factories Factories
	in        io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
func NewDispatcher(registry *commands.Registry, factories Factories) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		factories: factories,
	}
}

// SetInput sets the reader used for prompts and the shell.
func (d *Dispatcher) SetInput(in io.Reader) {
	d.in = in
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to the default command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	// Flags override file and environment
	if quiet {
		cfg.Quiet = true
	}
	if debug {
		cfg.Debug = true
	}

	logger := logging.New(errOut, cfg.Debug)
	entry := logger.WithField("command", cmd.Name())
	env := commands.NewEnv(cfg, entry, d.in, out, errOut, d.factories.Store, d.factories.Service)
	defer func() {
		if err := env.Close(); err != nil {
			entry.WithError(err).Warn("failed to close store")
		}
	}()

	if cmd.NeedsAuth() {
		if err := env.CheckAuth(ctx); err != nil {
			if errors.Is(err, service.ErrNotLoggedIn) {
				fmt.Fprintf(errOut, "error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.BackendError
		}
	}

	entry.WithField("args", positionalArgs).Debug("dispatching")
	return cmd.Run(ctx, env, positionalArgs)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	// Missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + flagName
	}

	// Unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
