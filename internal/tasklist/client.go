// Package tasklist keeps a local mirror of the task store together with the
// drafts a user edits before anything is sent to the store.
//
// The store is authoritative. Every successful mutation replaces the cached
// record with the one the store returned; the client never computes the new
// state of a task itself, so there is nothing to roll back when a request
// fails.
package tasklist

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"todo/internal/logging"
	"todo/internal/service"
)

// Draft is the new-task form.
type Draft struct {
	Title       string
	Description string
}

// EditDraft is the form of the task currently in edit mode.
type EditDraft struct {
	ID          string
	Title       string
	Description string
}

// Client mirrors the task store and owns the new-task and edit drafts.
//
// The mutex guards the cache and drafts but is never held across a store
// call. When two mutations overlap, the last response to arrive wins.
type Client struct {
	store service.Service
	log   *zap.Logger
	loads singleflight.Group

	mu      sync.Mutex
	tasks   []service.Task
	draft   Draft
	edit    EditDraft
	editing bool
	lastErr string
}

// New creates a Client backed by store. A nil logger disables logging.
func New(store service.Service, log *zap.Logger) *Client {
	return &Client{
		store: store,
		log:   logging.OrNop(log).Named("tasklist"),
	}
}

// Load fetches the full collection and replaces the cache. On failure the
// stale cache is kept.
//
// Loads that overlap share a single fetch. The fetch is detached from the
// cancellation of whichever caller started it, so each caller only stops
// waiting when its own ctx is done.
func (c *Client) Load(ctx context.Context) error {
	ch := c.loads.DoChan("list", func() (any, error) {
		return c.store.ListTasks(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return c.fail(OpFetch, "", ctx.Err())
	}
	if res.Err != nil {
		return c.fail(OpFetch, "", res.Err)
	}

	// The result may be shared with other callers and stays owned by the store
	tasks := slices.Clone(res.Val.([]service.Task))

	c.mu.Lock()
	c.tasks = tasks
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Debug("tasks loaded", zap.Int("count", len(tasks)), zap.Bool("shared", res.Shared))
	return nil
}

// Create sends a new task to the store and appends the result to the cache.
// A title that is blank after trimming is ignored without a request.
// On failure the new-task draft is kept so the user can retry.
func (c *Client) Create(ctx context.Context, title, description string) error {
	if strings.TrimSpace(title) == "" {
		return nil
	}

	task, err := c.store.CreateTask(ctx, service.NewTask{Title: title, Description: description})
	if err != nil {
		return c.fail(OpCreate, "", err)
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.draft = Draft{}
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Debug("task created", zap.String("id", task.ID))
	return nil
}

// Update applies patch to the task with the given id. An edit patch with a
// blank title is ignored without a request. A successful edit also leaves
// edit mode.
func (c *Client) Update(ctx context.Context, id string, patch service.TaskPatch) error {
	return c.update(ctx, OpUpdate, id, patch)
}

// ToggleComplete flips the completion flag of a task whose current state is
// current.
func (c *Client) ToggleComplete(ctx context.Context, id string, current bool) error {
	return c.update(ctx, OpToggle, id, service.CompletedPatch(!current))
}

func (c *Client) update(ctx context.Context, op Op, id string, patch service.TaskPatch) error {
	if patch.IsEdit() && strings.TrimSpace(*patch.Title) == "" {
		return nil
	}

	task, err := c.store.UpdateTask(ctx, id, patch)
	if err != nil {
		return c.fail(op, id, err)
	}

	c.mu.Lock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = task
		}
	}
	if patch.IsEdit() {
		c.editing = false
		c.edit = EditDraft{}
	}
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Debug("task updated", zap.String("id", id), zap.String("op", string(op)))
	return nil
}

// Delete removes a task from the store and, on success, from the cache.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteTask(ctx, id); err != nil {
		return c.fail(OpDelete, id, err)
	}

	c.mu.Lock()
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Debug("task deleted", zap.String("id", id))
	return nil
}

// BeginEdit puts task into edit mode, discarding any unsaved edit draft.
func (c *Client) BeginEdit(task service.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = true
	c.edit = EditDraft{ID: task.ID, Title: task.Title, Description: task.Description}
}

// CancelEdit leaves edit mode without contacting the store.
func (c *Client) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = false
	c.edit = EditDraft{}
}

// SetEditDraft replaces the title and description of the edit draft.
// It does nothing outside edit mode.
func (c *Client) SetEditDraft(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editing {
		return
	}
	c.edit.Title = title
	c.edit.Description = description
}

// Editing returns the edit draft and whether a task is in edit mode.
func (c *Client) Editing() (EditDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edit, c.editing
}

// SaveEdit sends the edit draft to the store. It does nothing outside edit
// mode.
func (c *Client) SaveEdit(ctx context.Context) error {
	edit, ok := c.Editing()
	if !ok {
		return nil
	}
	return c.Update(ctx, edit.ID, service.EditPatch(edit.Title, edit.Description))
}

// SetDraft replaces the new-task draft.
func (c *Client) SetDraft(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{Title: title, Description: description}
}

// Draft returns the new-task draft.
func (c *Client) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SubmitDraft creates a task from the new-task draft.
func (c *Client) SubmitDraft(ctx context.Context) error {
	d := c.Draft()
	return c.Create(ctx, d.Title, d.Description)
}

// Tasks returns a copy of the cached tasks in store order.
func (c *Client) Tasks() []service.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]service.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Task returns the cached task at 1-based position n.
func (c *Client) Task(n int) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.tasks) {
		return service.Task{}, false
	}
	return c.tasks[n-1], true
}

// LastError returns the message of the most recent failure, or "" if the
// last store operation succeeded.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) fail(op Op, id string, err error) error {
	f := &Failure{Op: op, Err: err}

	fields := []zap.Field{zap.String("op", string(op)), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	c.log.Warn(f.Message(), fields...)

	c.mu.Lock()
	c.lastErr = f.Message()
	c.mu.Unlock()
	return f
}
