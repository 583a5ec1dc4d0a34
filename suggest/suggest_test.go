package suggest

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/testutil"
)

type fakeLister struct {
	calls atomic.Int32
	err   error
	items []any
}

func (f *fakeLister) List(_ context.Context, req backend.ListRequest) (backend.Envelope, error) {
	f.calls.Add(1)
	if f.err != nil {
		return backend.Envelope{}, f.err
	}
	return backend.Envelope{Items: f.items}, nil
}

func newLookup(t *testing.T, lister *fakeLister) *Lookup {
	t.Helper()
	lookup, err := NewLookup(lister, 4, nil)
	require.NoError(t, err)
	return lookup
}

func TestLookupCachesAndSkipsBlank(t *testing.T) {
	lister := &fakeLister{items: []any{map[string]any{"id": 1, "name": "Ana"}}}
	lookup := newLookup(t, lister)
	ctx := context.Background()

	got, err := lookup.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, lister.calls.Load())

	got, err = lookup.Search(ctx, "An")
	require.NoError(t, err)
	assert.Equal(t, []backend.Suggestion{{ID: 1, Name: "Ana"}}, got)

	_, err = lookup.Search(ctx, "an ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), lister.calls.Load(), "case and spacing share a cache entry")

	lookup.Purge()
	assert.Zero(t, lookup.Len())
}

func TestLookupDoesNotCacheFailures(t *testing.T) {
	lister := &fakeLister{err: &backend.FetchError{Kind: backend.KindTransport, Op: "developer suggestions", Err: errors.New("down")}}
	lookup := newLookup(t, lister)

	_, err := lookup.Search(context.Background(), "an")
	assert.True(t, backend.IsKind(err, backend.KindTransport))
	_, _ = lookup.Search(context.Background(), "an")
	assert.Equal(t, int32(2), lister.calls.Load())
}

func TestLookupAgainstBackend(t *testing.T) {
	upstream := testutil.NewBackend(t)
	upstream.JSON(http.MethodGet, "/api/get-developers", http.StatusOK, []map[string]any{{"id": 4, "name": "Ana"}})
	client, err := backend.New(backend.Options{BaseURL: upstream.URL()})
	require.NoError(t, err)
	lookup, err := NewLookup(client, 0, nil)
	require.NoError(t, err)

	got, err := lookup.Search(context.Background(), "an")
	require.NoError(t, err)
	assert.Equal(t, []backend.Suggestion{{ID: 4, Name: "Ana"}}, got)

	call := upstream.Calls()[0]
	assert.Equal(t, "query=an", call.Query)
	assert.Empty(t, call.Authorization, "suggestion lookup is public")
}

func TestDelayedActionRunsOnce(t *testing.T) {
	var runs atomic.Int32
	action := NewDelayedAction(10*time.Millisecond, func() { runs.Add(1) })

	action.Schedule()
	action.Schedule()
	assert.True(t, action.Pending())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, action.Pending())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDelayedActionCancel(t *testing.T) {
	var runs atomic.Int32
	action := NewDelayedAction(20*time.Millisecond, func() { runs.Add(1) })

	assert.False(t, action.Cancel())
	action.Schedule()
	assert.True(t, action.Cancel())
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.False(t, action.Pending())
}

func TestDropdownBlurAndRefocus(t *testing.T) {
	lister := &fakeLister{items: []any{map[string]any{"id": 1, "name": "Ana"}, map[string]any{"id": 2, "name": "Andre"}}}
	dropdown := NewDropdown(newLookup(t, lister), 30*time.Millisecond)

	require.NoError(t, dropdown.Input(context.Background(), "an"))
	assert.True(t, dropdown.State().Visible)

	dropdown.Blur()
	assert.True(t, dropdown.ClosePending())
	dropdown.Focus()
	assert.False(t, dropdown.ClosePending())
	time.Sleep(60 * time.Millisecond)
	assert.True(t, dropdown.State().Visible, "refocus within the grace keeps the list open")

	dropdown.Blur()
	assert.Eventually(t, func() bool { return !dropdown.State().Visible }, time.Second, 5*time.Millisecond)
}

func TestDropdownSelect(t *testing.T) {
	lister := &fakeLister{items: []any{map[string]any{"id": 1, "name": "Ana"}, map[string]any{"id": 2, "name": "Andre"}}}
	dropdown := NewDropdown(newLookup(t, lister), 0)

	var last DropdownState
	dropdown.OnChange(func(state DropdownState) { last = state })

	require.NoError(t, dropdown.Input(context.Background(), "an"))
	dropdown.Blur()
	picked, ok := dropdown.Select(2)
	require.True(t, ok)
	assert.Equal(t, "Andre", picked.Name)
	assert.False(t, dropdown.ClosePending(), "selecting cancels the pending close")

	state := dropdown.State()
	assert.False(t, state.Visible)
	assert.Equal(t, "Andre", state.Query)
	require.NotNil(t, state.Selected)
	assert.Equal(t, int64(2), state.Selected.ID)
	assert.Equal(t, state, last)

	_, ok = dropdown.Select(99)
	assert.False(t, ok)

	require.NoError(t, dropdown.Input(context.Background(), ""))
	assert.False(t, dropdown.State().Visible)
	assert.Nil(t, dropdown.State().Selected)
}
