package commands

import (
	"context"
	"flag"
	"fmt"

	"stickylist/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "stickylist help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string) int {
	fmt.Fprint(env.Out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  stickylist                                        List checklists
  stickylist checklists [common flags] [--search <q>] [--cached]
  stickylist newlist [common flags] <title...>
  stickylist rmlist [common flags] [--force] <checklist>
  stickylist tasks [common flags] [--cached] <checklist>
  stickylist add [common flags] [--color <c>] <checklist> <text...>
  stickylist done [common flags] <checklist> <n>
  stickylist pin [common flags] <checklist> <n>
  stickylist rm [common flags] [--yes] <checklist> <n>
  stickylist shell [common flags]
  stickylist login [common flags] [--email <e>] [--password <p>]
  stickylist register [common flags] [--email <e>] [--password <p>] [--confirm <p>]
  stickylist logout [common flags]
  stickylist status [common flags]
  stickylist google-login [common flags]
  stickylist help
  stickylist version

<checklist> is a number from 'stickylist checklists' or a title.
<n> is a task number from 'stickylist tasks'.
Colors: orange, blue (default), grey, green, red.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
