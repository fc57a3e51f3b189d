// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad input: unknown command or flag, missing title,
	// task number out of range.
	UserError = 1

	// AuthError indicates missing or rejected credentials for the google
	// backend.
	AuthError = 2

	// BackendError indicates the task store could not be reached or rejected
	// the request.
	BackendError = 3
)
