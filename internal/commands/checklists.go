package commands

import (
	"context"
	"flag"
	"fmt"

	"stickylist/internal/exitcode"
	"stickylist/internal/output"
)

func init() {
	Register(&ChecklistsCmd{})
}

// ChecklistsCmd implements the checklists command.
type ChecklistsCmd struct {
	search string
	cached bool
}

// SetSearch sets the search query (for testing).
func (c *ChecklistsCmd) SetSearch(q string) {
	c.search = q
}

// SetCached sets the cached flag (for testing).
func (c *ChecklistsCmd) SetCached(cached bool) {
	c.cached = cached
}

func (c *ChecklistsCmd) Name() string      { return "checklists" }
func (c *ChecklistsCmd) Aliases() []string { return []string{"ls"} }
func (c *ChecklistsCmd) Synopsis() string  { return "List checklists" }
func (c *ChecklistsCmd) Usage() string {
	return "stickylist checklists [--search <q>] [--cached]"
}
func (c *ChecklistsCmd) NeedsAuth() bool { return true }

func (c *ChecklistsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.BoolVar(&c.cached, "cached", false, "")
}

func (c *ChecklistsCmd) Run(ctx context.Context, env *Env, args []string) int {
	if len(args) > 0 {
		return env.Failf("unexpected argument: %s", args[0])
	}

	lists, err := loadChecklists(ctx, env, c.cached)
	if err != nil {
		return env.Fail(err)
	}

	// Numbers stay those of the full list so they can be passed to other
	// commands.
	matched := make(map[string]bool)
	for _, item := range lists.Filter(c.search) {
		matched[item.ID] = true
	}

	shown := 0
	for i, item := range lists.Items() {
		if !matched[item.ID] {
			continue
		}
		output.FormatChecklist(env.Out, i+1, item)
		shown++
	}
	if shown == 0 && !env.Quiet() {
		fmt.Fprintln(env.Out, emptyChecklistsMessage(c.search))
	}
	return exitcode.Success
}

func emptyChecklistsMessage(search string) string {
	if search != "" {
		return "no matching checklists"
	}
	return "no checklists found"
}
