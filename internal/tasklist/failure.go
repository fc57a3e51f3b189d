package tasklist

import "fmt"

// Op identifies the operation that failed.
type Op string

// Operations that can record a failure.
const (
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpToggle Op = "toggle"
)

var messages = map[Op]string{
	OpFetch:  "Failed to fetch tasks. Please check if the backend server is running.",
	OpCreate: "Failed to create task. Please try again.",
	OpUpdate: "Failed to update task. Please try again.",
	OpDelete: "Failed to delete task. Please try again.",
	OpToggle: "Failed to update task status. Please try again.",
}

// Message returns the user-facing text shown when op fails.
func (op Op) Message() string {
	return messages[op]
}

// Failure is the single error kind produced by Client. Connectivity problems,
// server errors and rejected requests all surface as a Failure.
type Failure struct {
	Op  Op
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Message returns the user-facing text for the failed operation.
func (f *Failure) Message() string {
	return f.Op.Message()
}
