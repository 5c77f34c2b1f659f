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

func newChecklists(t *testing.T) (*syncer.Checklists, *testutil.FakeService, *mirror.MemoryStore) {
	t.Helper()
	svc := testutil.NewFakeService()
	store := mirror.NewMemoryStore()
	return syncer.NewChecklists(svc, store, nil), svc, store
}

func titles(items []service.Checklist) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.Title
	}
	return out
}

func TestChecklists_CreateGroceriesExample(t *testing.T) {
	lists, _, store := newChecklists(t)

	created, err := lists.Create(context.Background(), "Groceries")
	require.NoError(t, err)

	want := service.Checklist{ID: "c1", Title: "Groceries", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, want, created)
	assert.Equal(t, []service.Checklist{want}, lists.Items())
	assert.Equal(t,
		[]string{`[{"id":"c1","title":"Groceries","createdAt":"2024-01-01T00:00:00Z"}]`},
		store.WritesTo(mirror.KeyChecklists))
}

func TestChecklists_CreatePrependsServerCopy(t *testing.T) {
	lists, svc, _ := newChecklists(t)
	svc.AddChecklist("w", "Work")
	ctx := context.Background()
	require.NoError(t, lists.Load(ctx))

	created, err := lists.Create(ctx, "  Home  ")
	require.NoError(t, err)
	assert.Equal(t, "Home", created.Title)
	assert.Equal(t, []string{"Home", "Work"}, titles(lists.Items()))
}

func TestChecklists_CreateBlank(t *testing.T) {
	lists, svc, store := newChecklists(t)

	_, err := lists.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, syncer.ErrBlank)
	assert.ErrorIs(t, err, service.ErrValidationFailed)
	assert.Empty(t, svc.Calls())
	assert.Empty(t, store.Writes())
}

func TestChecklists_FailedCreateLeavesStateUnchanged(t *testing.T) {
	lists, svc, store := newChecklists(t)
	svc.AddChecklist("a", "A")
	svc.AddChecklist("b", "B")
	ctx := context.Background()
	require.NoError(t, lists.Load(ctx))
	before := lists.Items()
	writes := len(store.Writes())

	svc.CreateChecklistErr = &service.RemoteError{StatusCode: 500}
	_, err := lists.Create(ctx, "C")
	assert.ErrorIs(t, err, service.ErrCreateFailed)
	assert.Equal(t, before, lists.Items())
	assert.Len(t, store.Writes(), writes)
}

func TestChecklists_DeleteRemovesExactlyOne(t *testing.T) {
	lists, svc, store := newChecklists(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		svc.AddChecklist(id, "List "+id)
	}
	ctx := context.Background()
	require.NoError(t, lists.Load(ctx))

	require.NoError(t, lists.Delete(ctx, "b"))
	assert.Equal(t, []string{"List a", "List c", "List d"}, titles(lists.Items()))

	var mirrored []service.Checklist
	ok, err := mirror.GetJSON(ctx, store, mirror.KeyChecklists, &mirrored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lists.Items(), mirrored)
}

func TestChecklists_FailedDelete(t *testing.T) {
	lists, svc, _ := newChecklists(t)
	svc.AddChecklist("a", "A")
	ctx := context.Background()
	require.NoError(t, lists.Load(ctx))

	svc.DeleteChecklistErr = errors.New("boom")
	err := lists.Delete(ctx, "a")
	assert.ErrorIs(t, err, service.ErrDeleteFailed)
	assert.Len(t, lists.Items(), 1)
}

func TestChecklists_LoadFailureKeepsPrevious(t *testing.T) {
	lists, svc, _ := newChecklists(t)
	svc.AddChecklist("a", "A")
	ctx := context.Background()
	require.NoError(t, lists.Load(ctx))

	svc.ListChecklistsErr = service.ErrTimeout
	err := lists.Load(ctx)
	assert.ErrorIs(t, err, service.ErrLoadFailed)
	assert.ErrorIs(t, err, service.ErrTimeout)
	assert.Equal(t, []string{"A"}, titles(lists.Items()))
}

func TestChecklists_EmptyListIsNotMirrored(t *testing.T) {
	lists, svc, store := newChecklists(t)
	svc.AddChecklist("a", "A")
	ctx := context.Background()
	require.NoError(t, lists.Load(ctx))
	require.Len(t, store.WritesTo(mirror.KeyChecklists), 1)

	require.NoError(t, lists.Delete(ctx, "a"))
	assert.Empty(t, lists.Items())
	assert.Len(t, store.WritesTo(mirror.KeyChecklists), 1, "an empty list is not written")
}

func TestChecklists_MirrorFailureIsSwallowed(t *testing.T) {
	lists, _, store := newChecklists(t)
	store.SetErr = errors.New("disk full")

	_, err := lists.Create(context.Background(), "Groceries")
	require.NoError(t, err)
	assert.Len(t, lists.Items(), 1)
}

func TestChecklists_Restore(t *testing.T) {
	lists, _, store := newChecklists(t)
	ctx := context.Background()

	ok, err := lists.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, mirror.KeyChecklists, `[{"id":"c9","title":"Saved","createdAt":"2024-01-01T00:00:00Z"}]`))
	ok, err = lists.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Saved"}, titles(lists.Items()))
}

func TestChecklists_Filter(t *testing.T) {
	lists, svc, _ := newChecklists(t)
	for i, title := range []string{"Groceries", "Work", "grocery run", "Café"} {
		svc.AddChecklist(string(rune('a'+i)), title)
	}
	require.NoError(t, lists.Load(context.Background()))

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Groceries", "Work", "grocery run", "Café"}},
		{"GROC", []string{"Groceries", "grocery run"}},
		{"ork", []string{"Work"}},
		{"CAFÉ", []string{"Café"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(lists.Filter(tt.query)))
		})
	}
}

func TestChecklists_FilterIsSubset(t *testing.T) {
	items := []service.Checklist{{ID: "1", Title: "Alpha"}, {ID: "2", Title: "beta"}, {ID: "3", Title: "ALPHABET"}}
	for _, q := range []string{"", "a", "alpha", "BET", "x"} {
		got := syncer.FilterChecklists(items, q)
		for _, c := range got {
			assert.True(t, slices.Contains(items, c))
		}
		if q == "" {
			assert.Equal(t, items, got)
		}
	}
}

func TestChecklists_Resolve(t *testing.T) {
	lists, svc, _ := newChecklists(t)
	svc.AddChecklist("a", "Groceries")
	svc.AddChecklist("b", "Work")
	svc.AddChecklist("c", "work")
	require.NoError(t, lists.Load(context.Background()))

	c, err := lists.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, "a", c.ID)

	c, err = lists.Resolve(" groceries ")
	require.NoError(t, err)
	assert.Equal(t, "a", c.ID)

	_, err = lists.Resolve("4")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = lists.Resolve("Travel")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = lists.Resolve("WORK")
	assert.ErrorIs(t, err, service.ErrAmbiguous)
}

func TestChecklists_BusyWhileRequestInFlight(t *testing.T) {
	lists, svc, _ := newChecklists(t)
	svc.Block = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- lists.Load(ctx) }()
	require.Eventually(t, func() bool {
		return slices.Contains(svc.Calls(), "ListChecklists")
	}, time.Second, 5*time.Millisecond)

	_, err := lists.Create(ctx, "Groceries")
	assert.ErrorIs(t, err, syncer.ErrBusy)
	assert.NotContains(t, svc.Calls(), "CreateChecklist")

	close(svc.Block)
	require.NoError(t, <-done)

	_, err = lists.Create(ctx, "Groceries")
	assert.NoError(t, err)
}
