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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help [command]" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	if len(args) == 1 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s\n\n  %s\n", cmd.Synopsis(), cmd.Usage())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  todo                                          List all tasks
  todo list [common flags]                      List all tasks
  todo add [common flags] [-d <text>] <title...>
  todo create [common flags] [-d <text>] <title...>
  todo edit [common flags] [-t <text>] [-d <text>] <n>
  todo done [common flags] <n>
  todo undo [common flags] <n>
  todo toggle [common flags] <n>
  todo rm [common flags] <n>
  todo shell [common flags]
  todo login [common flags]
  todo logout [common flags]
  todo help [command]
  todo version

Common flags:
  --config <dir>      Override config directory
  --api <url>         Task store base address (default http://localhost:5000)
  --backend <name>    Task store: rest or google
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
