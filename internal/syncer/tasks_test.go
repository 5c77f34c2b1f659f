package syncer_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickylist/internal/mirror"
	"stickylist/internal/service"
	"stickylist/internal/syncer"
	"stickylist/internal/testutil"
)

const listID = "L1"

func newTasks(t *testing.T, seed ...service.Task) (*syncer.Tasks, *testutil.FakeService, *mirror.MemoryStore) {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddChecklist(listID, "Groceries")
	for _, task := range seed {
		svc.AddTask(listID, task)
	}
	store := mirror.NewMemoryStore()
	tasks := syncer.NewTasks(svc, store, listID, nil)
	require.NoError(t, tasks.Load(context.Background()))
	return tasks, svc, store
}

func ids(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func mirrored(t *testing.T, store mirror.Store) []service.Task {
	t.Helper()
	var items []service.Task
	ok, err := mirror.GetJSON(context.Background(), store, mirror.TasksKey(listID), &items)
	require.NoError(t, err)
	require.True(t, ok)
	return items
}

func TestTasks_LoadMirrorsEmptyList(t *testing.T) {
	tasks, _, store := newTasks(t)
	assert.Empty(t, tasks.Items())
	assert.Equal(t, []string{"[]"}, store.WritesTo("tasks_L1"))
}

func TestTasks_Create(t *testing.T) {
	tasks, svc, store := newTasks(t, service.Task{ID: "a", Text: "Eggs"})
	ctx := context.Background()

	created, err := tasks.Create(ctx, "  Milk ", "")
	require.NoError(t, err)
	assert.Equal(t, "Milk", created.Text)
	assert.Equal(t, service.DefaultColor, created.Color)
	assert.Equal(t, []string{created.ID, "a"}, ids(tasks.Items()))
	assert.Equal(t, tasks.Items(), mirrored(t, store))

	red, err := tasks.Create(ctx, "Bread", service.Red)
	require.NoError(t, err)
	assert.Equal(t, service.Red, red.Color)
	assert.Equal(t, service.Red, svc.ServerTasks(listID)[0].Color)
}

func TestTasks_CreateValidation(t *testing.T) {
	tasks, svc, _ := newTasks(t)
	calls := len(svc.Calls())
	ctx := context.Background()

	_, err := tasks.Create(ctx, " ", service.Red)
	assert.ErrorIs(t, err, syncer.ErrBlank)

	_, err = tasks.Create(ctx, "Milk", service.Color("#000000"))
	assert.ErrorIs(t, err, service.ErrValidationFailed)

	assert.Len(t, svc.Calls(), calls)
	assert.Empty(t, tasks.Items())
}

func TestTasks_FailedCreateLeavesStateUnchanged(t *testing.T) {
	tasks, svc, store := newTasks(t, service.Task{ID: "a", Text: "Eggs"}, service.Task{ID: "b", Text: "Milk"})
	before := tasks.Items()
	writes := len(store.Writes())

	svc.CreateTaskErr = &service.RemoteError{StatusCode: 400, Message: "Title is required"}
	_, err := tasks.Create(context.Background(), "Bread", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrCreateFailed)
	assert.Equal(t, "Title is required", service.UserMessage(err, ""))
	assert.Equal(t, before, tasks.Items())
	assert.Len(t, store.Writes(), writes)
}

func TestTasks_ToggleTwiceRestores(t *testing.T) {
	seed := []service.Task{
		{ID: "a", Text: "Eggs"},
		{ID: "b", Text: "Milk", Completed: true},
		{ID: "c", Text: "Bread", Pinned: true},
	}
	tasks, svc, store := newTasks(t, seed...)
	ctx := context.Background()
	original := tasks.Items()
	calls := len(svc.Calls())

	for _, id := range []string{"a", "b", "c"} {
		updated, ok := tasks.ToggleCompleted(ctx, id)
		require.True(t, ok)
		for _, other := range tasks.Items() {
			if other.ID != id {
				assert.Contains(t, original, other, "toggle must not touch other tasks")
			}
		}
		assert.NotEqual(t, original[slices.IndexFunc(original, func(t service.Task) bool { return t.ID == id })].Completed, updated.Completed)

		_, ok = tasks.ToggleCompleted(ctx, id)
		require.True(t, ok)
		assert.Equal(t, original, tasks.Items())

		_, ok = tasks.TogglePinned(ctx, id)
		require.True(t, ok)
		_, ok = tasks.TogglePinned(ctx, id)
		require.True(t, ok)
		assert.Equal(t, original, tasks.Items())
	}

	assert.Len(t, svc.Calls(), calls, "toggles are local only")
	assert.Equal(t, original, mirrored(t, store))
}

func TestTasks_TogglePersistsToMirror(t *testing.T) {
	tasks, _, store := newTasks(t, service.Task{ID: "a", Text: "Eggs"})

	updated, ok := tasks.TogglePinned(context.Background(), "a")
	require.True(t, ok)
	assert.True(t, updated.Pinned)
	assert.True(t, mirrored(t, store)[0].Pinned)
}

func TestTasks_ToggleUnknown(t *testing.T) {
	tasks, _, store := newTasks(t, service.Task{ID: "a", Text: "Eggs"})
	writes := len(store.Writes())

	_, ok := tasks.ToggleCompleted(context.Background(), "zzz")
	assert.False(t, ok)
	assert.Len(t, store.Writes(), writes)
}

func TestTasks_DeleteRemovesExactlyOne(t *testing.T) {
	tasks, svc, store := newTasks(t,
		service.Task{ID: "a"}, service.Task{ID: "b"}, service.Task{ID: "c"}, service.Task{ID: "d"})
	writes := len(store.WritesTo("tasks_L1"))

	deleted, err := tasks.Delete(context.Background(), "c", syncer.AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"a", "b", "d"}, ids(tasks.Items()))
	assert.Equal(t, []string{"a", "b", "d"}, ids(svc.ServerTasks(listID)))
	assert.Len(t, store.WritesTo("tasks_L1"), writes+1, "one mirror write per delete")
}

func TestTasks_DeleteAsksForConfirmation(t *testing.T) {
	tasks, svc, _ := newTasks(t, service.Task{ID: "a"})
	calls := len(svc.Calls())

	var asked []string
	decline := syncer.ConfirmFunc(func(ctx context.Context, title, message string) (bool, error) {
		asked = append(asked, title, message)
		return false, nil
	})
	deleted, err := tasks.Delete(context.Background(), "a", decline)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, []string{"Delete Task", "Are you sure?"}, asked)
	assert.Len(t, svc.Calls(), calls, "a declined delete sends nothing")
	assert.Len(t, tasks.Items(), 1)
}

func TestTasks_FailedDelete(t *testing.T) {
	tasks, svc, _ := newTasks(t, service.Task{ID: "a"}, service.Task{ID: "b"})
	svc.DeleteTaskErr = errors.New("boom")

	deleted, err := tasks.Delete(context.Background(), "a", syncer.AlwaysConfirm)
	assert.ErrorIs(t, err, service.ErrDeleteFailed)
	assert.False(t, deleted)
	assert.Equal(t, []string{"a", "b"}, ids(tasks.Items()))
}

func TestTasks_MirrorFailureNotice(t *testing.T) {
	tasks, _, store := newTasks(t, service.Task{ID: "a"})
	var notices []error
	tasks.OnMirrorFailure(func(err error) { notices = append(notices, err) })
	store.SetErr = errors.New("disk full")

	updated, ok := tasks.ToggleCompleted(context.Background(), "a")
	require.True(t, ok)
	assert.True(t, updated.Completed)
	assert.True(t, tasks.Items()[0].Completed, "state is updated even when the mirror fails")

	require.Len(t, notices, 1)
	assert.ErrorIs(t, notices[0], service.ErrMirrorWriteFailed)
}

func TestTasks_Partition(t *testing.T) {
	a := service.Task{ID: "A", Pinned: true}
	b := service.Task{ID: "B"}
	c := service.Task{ID: "C", Pinned: true}

	assert.Equal(t, []string{"A", "C", "B"}, ids(syncer.Partition([]service.Task{a, b, c})))
	assert.Empty(t, syncer.Partition(nil))

	tasks, _, _ := newTasks(t, a, b, c)
	assert.Equal(t, []string{"A", "C", "B"}, ids(tasks.Display()))
	assert.Equal(t, []string{"A", "B", "C"}, ids(tasks.Items()))
}

func TestTasks_Restore(t *testing.T) {
	svc := testutil.NewFakeService()
	store := mirror.NewMemoryStore()
	ctx := context.Background()
	tasks := syncer.NewTasks(svc, store, listID, nil)

	ok, err := tasks.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mirror.PutJSON(ctx, store, "tasks_L1", []service.Task{{ID: "a", Pinned: true}}))
	ok, err = tasks.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, tasks.Items()[0].Pinned)
	assert.Empty(t, svc.Calls())
}

func TestTasks_BusyWhileRequestInFlight(t *testing.T) {
	tasks, svc, _ := newTasks(t, service.Task{ID: "a"})
	svc.Block = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := tasks.Create(ctx, "Milk", "")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return slices.Contains(svc.Calls(), "CreateTask")
	}, time.Second, 5*time.Millisecond)

	_, err := tasks.Delete(ctx, "a", syncer.AlwaysConfirm)
	assert.ErrorIs(t, err, syncer.ErrBusy)
	assert.ErrorIs(t, tasks.Load(ctx), syncer.ErrBusy)

	// Toggles are local and never blocked.
	_, ok := tasks.TogglePinned(ctx, "a")
	assert.True(t, ok)

	close(svc.Block)
	require.NoError(t, <-done)
	assert.Len(t, tasks.Items(), 2)
}
