package service

import (
	"context"
	"errors"
)

// Service defines the interface for task store operations.
// The store is authoritative: every mutation returns the record as the
// store now holds it.
type Service interface {
	// ListTasks returns the full task collection in store order. Callers
	// must not modify the returned slice.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it with its assigned ID and
	// creation time.
	CreateTask(ctx context.Context, task NewTask) (Task, error)

	// UpdateTask applies patch to the task and returns the full record.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id string) error
}

// ErrUnauthenticated is returned when a backend cannot be created because
// credentials are missing or invalid.
var ErrUnauthenticated = errors.New("not authenticated")
