package tasklist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"todo/internal/service"
	"todo/internal/tasklist"
	"todo/internal/testutil"
)

var errNetwork = errors.New("connection refused")

func newLoaded(t *testing.T, svc *testutil.FakeService) *tasklist.Client {
	t.Helper()
	c := tasklist.New(svc, zaptest.NewLogger(t))
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestLoad_ReplacesCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	svc.AddTask("2", "B", true)

	c := newLoaded(t, svc)

	tasks := c.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "A", tasks[0].Title)
	assert.True(t, tasks[1].Completed)
	assert.Empty(t, c.LastError())
}

func TestLoad_FailureKeepsStaleCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)

	svc.ListTasksErr = errNetwork
	err := c.Load(context.Background())

	var f *tasklist.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, tasklist.OpFetch, f.Op)
	assert.ErrorIs(t, err, errNetwork)
	assert.Len(t, c.Tasks(), 1)
	assert.Equal(t, tasklist.OpFetch.Message(), c.LastError())
}

func TestCreate_BlankTitleIsIgnored(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		svc := testutil.NewFakeService()
		c := tasklist.New(svc, nil)
		c.SetDraft(title, "desc")

		err := c.Create(context.Background(), title, "anything")

		assert.NoError(t, err)
		assert.Empty(t, svc.Calls(), "title %q should not reach the store", title)
		assert.Empty(t, c.Tasks())
		assert.Equal(t, tasklist.Draft{Title: title, Description: "desc"}, c.Draft())
	}
}

func TestCreate_AppendsReturnedTaskAndClearsDraft(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)
	c.SetDraft("Buy milk", "")

	require.NoError(t, c.SubmitDraft(context.Background()))

	tasks := c.Tasks()
	require.Len(t, tasks, 2)
	last := tasks[1]
	assert.Equal(t, "2", last.ID)
	assert.Equal(t, "Buy milk", last.Title)
	assert.Equal(t, "", last.Description)
	assert.False(t, last.Completed)
	assert.Equal(t, testutil.CreatedAt, last.CreatedAt)
	assert.Equal(t, tasklist.Draft{}, c.Draft())
}

func TestCreate_FailurePreservesDraft(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errNetwork
	c := tasklist.New(svc, nil)
	c.SetDraft("Buy milk", "2 litres")

	err := c.SubmitDraft(context.Background())

	require.Error(t, err)
	assert.Equal(t, tasklist.Draft{Title: "Buy milk", Description: "2 litres"}, c.Draft())
	assert.Empty(t, c.Tasks())
	assert.Equal(t, "Failed to create task. Please try again.", c.LastError())
}

func TestUpdate_ReplacesOnlyMatchingEntry(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	svc.AddTask("2", "B", false)
	c := newLoaded(t, svc)
	before := c.Tasks()

	require.NoError(t, c.Update(context.Background(), "2", service.EditPatch("B2", "more")))

	after := c.Tasks()
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, svc.Stored()[1], after[1])
	assert.Equal(t, "B2", after[1].Title)
	assert.Equal(t, "more", after[1].Description)
}

func TestUpdate_BlankEditTitleIsIgnored(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)
	c.BeginEdit(c.Tasks()[0])

	require.NoError(t, c.Update(context.Background(), "1", service.EditPatch("  ", "x")))

	assert.Len(t, svc.Calls(), 1) // only the load
	_, editing := c.Editing()
	assert.True(t, editing)
}

func TestUpdate_SuccessfulEditLeavesEditMode(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)

	c.BeginEdit(c.Tasks()[0])
	c.SetEditDraft("A edited", "notes")
	require.NoError(t, c.SaveEdit(context.Background()))

	edit, editing := c.Editing()
	assert.False(t, editing)
	assert.Equal(t, tasklist.EditDraft{}, edit)
	assert.Equal(t, "A edited", c.Tasks()[0].Title)
	assert.Equal(t, "notes", c.Tasks()[0].Description)
}

func TestUpdate_FailureKeepsEditMode(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)
	c.BeginEdit(c.Tasks()[0])
	c.SetEditDraft("A edited", "")

	svc.UpdateTaskErr = errNetwork
	require.Error(t, c.SaveEdit(context.Background()))

	edit, editing := c.Editing()
	assert.True(t, editing)
	assert.Equal(t, tasklist.EditDraft{ID: "1", Title: "A edited"}, edit)
	assert.Equal(t, "A", c.Tasks()[0].Title)
	assert.Equal(t, tasklist.OpUpdate.Message(), c.LastError())
}

func TestToggleComplete_SendsNegatedFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	svc.AddTask("2", "B", true)
	c := newLoaded(t, svc)

	require.NoError(t, c.ToggleComplete(context.Background(), "1", false))
	require.NoError(t, c.ToggleComplete(context.Background(), "2", true))

	calls := svc.Calls()
	require.Len(t, calls, 3)
	for i, want := range []bool{true, false} {
		patch := calls[i+1].Patch
		require.NotNil(t, patch.Completed)
		assert.Equal(t, want, *patch.Completed)
		assert.Nil(t, patch.Title)
		assert.Nil(t, patch.Description)
	}
}

func TestToggleComplete_Scenario(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)

	require.NoError(t, c.ToggleComplete(context.Background(), "1", false))

	want := []service.Task{{ID: "1", Title: "A", Completed: true, CreatedAt: testutil.CreatedAt}}
	assert.Equal(t, want, c.Tasks())
}

func TestToggleComplete_DoesNotTouchEditMode(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)
	c.BeginEdit(c.Tasks()[0])

	require.NoError(t, c.ToggleComplete(context.Background(), "1", false))

	_, editing := c.Editing()
	assert.True(t, editing)
}

func TestToggleComplete_FailureMessage(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)

	svc.UpdateTaskErr = errNetwork
	require.Error(t, c.ToggleComplete(context.Background(), "1", false))

	assert.False(t, c.Tasks()[0].Completed)
	assert.Equal(t, "Failed to update task status. Please try again.", c.LastError())
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	svc.AddTask("2", "B", false)
	svc.AddTask("3", "C", false)
	c := newLoaded(t, svc)

	require.NoError(t, c.Delete(context.Background(), "2"))

	tasks := c.Tasks()
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.NotEqual(t, "2", task.ID)
	}
}

func TestDelete_FailureLeavesCache(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)
	before := c.Tasks()

	svc.DeleteTaskErr = errNetwork
	err := c.Delete(context.Background(), "1")

	require.Error(t, err)
	assert.Equal(t, before, c.Tasks())
	assert.Equal(t, "Failed to delete task. Please try again.", c.LastError())
}

func TestBeginEditCancelEdit_LeavesCacheUnchanged(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)
	before := c.Tasks()

	c.BeginEdit(before[0])
	c.CancelEdit()

	assert.Equal(t, before, c.Tasks())
	_, editing := c.Editing()
	assert.False(t, editing)
	assert.Len(t, svc.Calls(), 1)
}

func TestBeginEdit_DiscardsPreviousDraft(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	svc.AddTask("2", "B", false)
	c := newLoaded(t, svc)

	c.BeginEdit(c.Tasks()[0])
	c.SetEditDraft("unsaved", "unsaved")
	c.BeginEdit(c.Tasks()[1])

	edit, editing := c.Editing()
	assert.True(t, editing)
	assert.Equal(t, tasklist.EditDraft{ID: "2", Title: "B"}, edit)
}

func TestSaveEdit_NotEditingIsNoop(t *testing.T) {
	svc := testutil.NewFakeService()
	c := tasklist.New(svc, nil)

	require.NoError(t, c.SaveEdit(context.Background()))
	assert.Empty(t, svc.Calls())
}

func TestSuccessClearsLastError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	c := newLoaded(t, svc)

	svc.DeleteTaskErr = errNetwork
	require.Error(t, c.Delete(context.Background(), "1"))
	require.NotEmpty(t, c.LastError())

	require.NoError(t, c.ToggleComplete(context.Background(), "1", false))
	assert.Empty(t, c.LastError())
}

func TestFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	svc.DeleteTaskErr = errNetwork
	c := tasklist.New(svc, zap.New(core))

	require.Error(t, c.Delete(context.Background(), "1"))

	entries := logs.FilterMessage(tasklist.OpDelete.Message()).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "delete", fields["op"])
	assert.Equal(t, "1", fields["id"])
	assert.Equal(t, errNetwork.Error(), fields["error"])
}

func TestTask_Lookup(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "A", false)
	c := newLoaded(t, svc)

	task, ok := c.Task(1)
	assert.True(t, ok)
	assert.Equal(t, "a", task.ID)

	_, ok = c.Task(0)
	assert.False(t, ok)
	_, ok = c.Task(2)
	assert.False(t, ok)
}

// joinDelay gives a second Load time to join a fetch that is in flight.
const joinDelay = 50 * time.Millisecond

func TestLoad_OverlappingCallsShareOneFetch(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	svc.ListTasksHook = func(context.Context) {
		entered <- struct{}{}
		<-release
	}
	c := tasklist.New(svc, zaptest.NewLogger(t))

	errs := make(chan error, 2)
	go func() { errs <- c.Load(context.Background()) }()
	<-entered
	go func() { errs <- c.Load(context.Background()) }()
	time.Sleep(joinDelay)
	close(release)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Len(t, svc.Calls(), 1)
	require.Len(t, c.Tasks(), 1)
	assert.Equal(t, "A", c.Tasks()[0].Title)
}

func TestLoad_CancelledCallerDoesNotFailOthers(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("1", "A", false)
	storeCtx := make(chan context.Context, 2)
	release := make(chan struct{})
	svc.ListTasksHook = func(ctx context.Context) {
		storeCtx <- ctx
		<-release
	}
	c := tasklist.New(svc, zaptest.NewLogger(t))

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() { firstErr <- c.Load(firstCtx) }()
	fetchCtx := <-storeCtx

	secondErr := make(chan error, 1)
	go func() { secondErr <- c.Load(context.Background()) }()
	time.Sleep(joinDelay)
	cancel()

	err := <-firstErr
	var failure *tasklist.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, tasklist.OpFetch, failure.Op)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, fetchCtx.Err(), "the shared fetch must outlive the cancelled caller")

	close(release)
	require.NoError(t, <-secondErr)
	assert.Empty(t, c.LastError())
	assert.Len(t, c.Tasks(), 1)
}

// fixedStore hands out the same backing slice on every ListTasks call.
type fixedStore struct {
	*testutil.FakeService
	tasks []service.Task
}

func (s *fixedStore) ListTasks(context.Context) ([]service.Task, error) {
	return s.tasks, nil
}

func TestDelete_DoesNotWriteThroughToStoreSlice(t *testing.T) {
	svc := testutil.NewFakeService()
	a := svc.AddTask("1", "A", false)
	b := svc.AddTask("2", "B", false)
	store := &fixedStore{FakeService: svc, tasks: []service.Task{a, b}}
	c := tasklist.New(store, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Delete(ctx, "1"))

	assert.Equal(t, []service.Task{a, b}, store.tasks)
	require.Len(t, c.Tasks(), 1)
	assert.Equal(t, "2", c.Tasks()[0].ID)
}
