// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"todo/internal/service"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("not found")

// CreatedAt is the creation time assigned by FakeService.
var CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Call records one request received by FakeService.
type Call struct {
	Method string
	ID     string
	New    service.NewTask
	Patch  service.TaskPatch
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	calls  []Call

	// ListTasksHook, when set, runs at the start of every ListTasks call
	// with the context the store received. Tests use it to hold a fetch open.
	ListTasksHook func(ctx context.Context)

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1}
}

// AddTask seeds a task with an explicit ID.
func (f *FakeService) AddTask(id, title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: id, Title: title, Completed: completed, CreatedAt: CreatedAt}
	f.tasks = append(f.tasks, t)
	return t
}

// Stored returns a copy of the tasks held by the fake store.
func (f *FakeService) Stored() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns the requests received so far.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeService) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record(Call{Method: "list"})
	if f.ListTasksHook != nil {
		f.ListTasksHook(ctx)
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Stored(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	f.record(Call{Method: "create", New: task})
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Skip IDs already taken by seeded tasks
	id := strconv.Itoa(f.nextID)
	for f.indexOf(id) >= 0 {
		f.nextID++
		id = strconv.Itoa(f.nextID)
	}
	f.nextID++

	t := service.Task{
		ID:          id,
		Title:       task.Title,
		Description: task.Description,
		CreatedAt:   CreatedAt,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	f.record(Call{Method: "update", ID: id, Patch: patch})
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return service.Task{}, ErrNotFound
	}
	if patch.Title != nil {
		f.tasks[i].Title = *patch.Title
	}
	if patch.Description != nil {
		f.tasks[i].Description = *patch.Description
	}
	if patch.Completed != nil {
		f.tasks[i].Completed = *patch.Completed
	}
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.record(Call{Method: "delete", ID: id})
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func (f *FakeService) indexOf(id string) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
