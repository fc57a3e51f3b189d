package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
	Register(&ToggleCmd{})
}

// DoneCmd marks a task completed.
type DoneCmd struct{}

func (c *DoneCmd) Name() string                   { return "done" }
func (c *DoneCmd) Aliases() []string              { return nil }
func (c *DoneCmd) Synopsis() string               { return "Mark a task completed" }
func (c *DoneCmd) Usage() string                  { return "todo done <n>" }
func (c *DoneCmd) NeedsStore() bool               { return true }
func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, svc, args, true, out, errOut)
}

// UndoCmd marks a task open again.
type UndoCmd struct{}

func (c *UndoCmd) Name() string                   { return "undo" }
func (c *UndoCmd) Aliases() []string              { return nil }
func (c *UndoCmd) Synopsis() string               { return "Mark a task open" }
func (c *UndoCmd) Usage() string                  { return "todo undo <n>" }
func (c *UndoCmd) NeedsStore() bool               { return true }
func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, svc, args, false, out, errOut)
}

// ToggleCmd flips the completion state of a task.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string                   { return "toggle" }
func (c *ToggleCmd) Aliases() []string              { return nil }
func (c *ToggleCmd) Synopsis() string               { return "Toggle a task between open and completed" }
func (c *ToggleCmd) Usage() string                  { return "todo toggle <n>" }
func (c *ToggleCmd) NeedsStore() bool               { return true }
func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	client, task, code := loadTask(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if err := client.ToggleComplete(ctx, task.ID, task.Completed); err != nil {
		return reportFailure(client, errOut)
	}
	return confirm(cfg, out)
}

// runSetCompleted toggles the task only when its state differs from want.
func runSetCompleted(ctx context.Context, cfg *config.Config, svc service.Service, args []string, want bool, out, errOut io.Writer) int {
	client, task, code := loadTask(ctx, cfg, svc, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if task.Completed == want {
		return confirm(cfg, out)
	}
	if err := client.ToggleComplete(ctx, task.ID, task.Completed); err != nil {
		return reportFailure(client, errOut)
	}
	return confirm(cfg, out)
}
