package commands

import (
	"context"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasklist"
)

// loadTask parses the task reference in args, loads the list and returns the
// referenced task. On failure it writes the error and returns a non-zero exit
// code.
func loadTask(ctx context.Context, cfg *config.Config, svc service.Service, args []string, errOut io.Writer) (*tasklist.Client, service.Task, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, service.Task{}, exitcode.UserError
	}

	client := tasklist.New(svc, cfg.Logger())
	if err := client.Load(ctx); err != nil {
		return nil, service.Task{}, reportFailure(client, errOut)
	}

	task, ok := client.Task(num)
	if !ok {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return nil, service.Task{}, exitcode.UserError
	}
	return client, task, exitcode.Success
}

// reportFailure prints the client's last error.
func reportFailure(client *tasklist.Client, errOut io.Writer) int {
	fmt.Fprintf(errOut, "error: %s\n", client.LastError())
	return exitcode.BackendError
}

// confirm prints the confirmation line unless quiet.
func confirm(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
