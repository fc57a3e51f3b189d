package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given.
type optString struct {
	set   bool
	value string
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.set = true
	o.value = s
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optString
	description optString
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(title string) { _ = c.title.Set(title) }

// SetDescription sets the new description (for testing).
func (c *EditCmd) SetDescription(d string) { _ = c.description.Set(d) }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change the title or description of a task" }
func (c *EditCmd) Usage() string {
	return "todo edit [--title <text>] [--description <text>] <n>"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title = optString{}
	c.description = optString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.title.set && !c.description.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}
	if c.title.set && strings.TrimSpace(c.title.value) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	client, task, code := loadTask(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}

	client.BeginEdit(task)
	draft, _ := client.Editing()
	if c.title.set {
		draft.Title = c.title.value
	}
	if c.description.set {
		draft.Description = c.description.value
	}
	client.SetEditDraft(draft.Title, draft.Description)

	if err := client.SaveEdit(ctx); err != nil {
		return reportFailure(client, errOut)
	}
	return confirm(cfg, out)
}
