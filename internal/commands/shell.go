package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/tasklist"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd runs an interactive session over one task list. Drafts and edit
// mode live for the whole session.
type ShellCmd struct {
	in io.Reader
}

// SetInput sets the input the shell reads from (for testing).
func (c *ShellCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Interactive session" }
func (c *ShellCmd) Usage() string     { return "todo shell" }
func (c *ShellCmd) NeedsStore() bool  { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}

	s := &session{
		client: tasklist.New(svc, cfg.Logger()),
		out:    out,
		errOut: errOut,
		prompt: !cfg.Quiet,
	}

	// A failed initial load still opens the session with an empty list
	s.report(s.client.Load(ctx))
	s.render()

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}
		if s.prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if quit := s.exec(ctx, scanner.Text()); quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

type session struct {
	client *tasklist.Client
	out    io.Writer
	errOut io.Writer
	prompt bool
}

// exec runs one input line and reports whether the session should end.
func (s *session) exec(ctx context.Context, line string) bool {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(s.out, shellHelpText)
	case "ls":
		s.render()
	case "reload":
		s.report(s.client.Load(ctx))
		s.render()
	case "title":
		s.setField(rest, true)
	case "desc":
		s.setField(rest, false)
	case "add":
		if rest != "" {
			s.client.SetDraft(rest, s.client.Draft().Description)
		}
		if strings.TrimSpace(s.client.Draft().Title) == "" {
			fmt.Fprintln(s.errOut, "error: title required")
			return false
		}
		s.report(s.client.SubmitDraft(ctx))
		s.render()
	case "edit":
		task, num, ok := s.lookup(rest)
		if !ok {
			return false
		}
		s.client.BeginEdit(task)
		fmt.Fprintf(s.out, "editing %d\n", num)
	case "save":
		edit, editing := s.client.Editing()
		if !editing {
			fmt.Fprintln(s.errOut, "error: not editing")
			return false
		}
		if strings.TrimSpace(edit.Title) == "" {
			fmt.Fprintln(s.errOut, "error: title required")
			return false
		}
		s.report(s.client.SaveEdit(ctx))
		s.render()
	case "cancel":
		s.client.CancelEdit()
		s.render()
	case "toggle":
		if task, _, ok := s.lookup(rest); ok {
			s.report(s.client.ToggleComplete(ctx, task.ID, task.Completed))
			s.render()
		}
	case "rm":
		if task, _, ok := s.lookup(rest); ok {
			s.report(s.client.Delete(ctx, task.ID))
			s.render()
		}
	default:
		fmt.Fprintf(s.errOut, "error: unknown command: %s\n", verb)
	}
	return false
}

// setField writes the title or description of the edit draft in edit mode,
// and of the new-task draft otherwise.
func (s *session) setField(value string, title bool) {
	if edit, editing := s.client.Editing(); editing {
		if title {
			edit.Title = value
		} else {
			edit.Description = value
		}
		s.client.SetEditDraft(edit.Title, edit.Description)
		return
	}

	d := s.client.Draft()
	if title {
		d.Title = value
	} else {
		d.Description = value
	}
	s.client.SetDraft(d.Title, d.Description)
}

func (s *session) lookup(ref string) (service.Task, int, bool) {
	num, err := ParseTaskRef(strings.Fields(ref))
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return service.Task{}, 0, false
	}
	task, ok := s.client.Task(num)
	if !ok {
		fmt.Fprintf(s.errOut, "error: task number out of range: %d\n", num)
		return service.Task{}, 0, false
	}
	return task, num, true
}

func (s *session) report(err error) {
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %s\n", s.client.LastError())
	}
}

func (s *session) render() {
	tasks := s.client.Tasks()
	edit, editing := s.client.Editing()

	output.FormatHeader(s.out, len(tasks))
	if len(tasks) == 0 {
		fmt.Fprintln(s.out, output.EmptyList)
	}
	for i, task := range tasks {
		if editing && task.ID == edit.ID {
			output.FormatEditing(s.out, i+1, edit.Title, edit.Description)
			continue
		}
		output.FormatTask(s.out, i+1, task)
	}

	if d := s.client.Draft(); d.Title != "" || d.Description != "" {
		fmt.Fprintf(s.out, "new: %s\n", d.Title)
	}
}

const shellHelpText = `Commands:
  ls               Show the list
  reload           Fetch the list again
  title <text>     Set the title of the task being edited or of the new task
  desc <text>      Set the description of the task being edited or of the new task
  add [title]      Create the new task
  edit <n>         Edit task n
  save             Save the task being edited
  cancel           Stop editing without saving
  toggle <n>       Toggle task n between open and completed
  rm <n>           Delete task n
  quit             Leave the shell
`
