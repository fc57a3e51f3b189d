// Package service defines the backend-agnostic interface for task operations.
package service

import "time"

// Task represents a single task item as returned by the store.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
}

// NewTask holds the fields sent when creating a task.
type NewTask struct {
	Title       string
	Description string
}

// TaskPatch holds the fields to change on an existing task.
// Nil fields are left untouched by the store.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// EditPatch returns a patch that replaces title and description.
func EditPatch(title, description string) TaskPatch {
	return TaskPatch{Title: &title, Description: &description}
}

// CompletedPatch returns a patch that sets only the completion flag.
func CompletedPatch(completed bool) TaskPatch {
	return TaskPatch{Completed: &completed}
}

// IsEdit reports whether the patch changes the title.
func (p TaskPatch) IsEdit() bool {
	return p.Title != nil
}
