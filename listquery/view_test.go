package listquery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmarvs/pmboard/backend"
)

func pageOf(tasks []backend.ManagerTask, page, total int) Page[backend.ManagerTask] {
	return Page[backend.ManagerTask]{Items: tasks, Page: page, TotalPages: total, PageSize: len(tasks)}
}

func TestViewLifecycle(t *testing.T) {
	var states []State
	fetches := 0
	view := NewFilteredView(func(_ context.Context, page int) (Page[backend.ManagerTask], error) {
		fetches++
		return pageOf(sampleTasks(), page, 3), nil
	})
	view.OnChange(func(s Snapshot[backend.ManagerTask]) { states = append(states, s.State) })

	assert.Equal(t, StateIdle, view.Snapshot().State)
	require.NoError(t, view.Load(context.Background(), 2))

	snap := view.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, 3, snap.TotalPages)
	assert.True(t, snap.HasPrev)
	assert.True(t, snap.HasNext)
	assert.Equal(t, []State{StateLoading, StateLoaded}, states)

	snap = view.SetFilter(FilterState{Status: StatusDone, Project: "Website Revamp"})
	assert.Equal(t, StateLoaded, snap.State, "filter changes never reload")
	assert.Equal(t, 3, snap.FilteredCount)
	assert.Equal(t, 10, snap.FetchedCount)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, 1, fetches)

	require.NoError(t, view.Next(context.Background()))
	assert.Equal(t, 3, view.Snapshot().Page)
	require.NoError(t, view.Next(context.Background()))
	assert.Equal(t, 2, fetches, "next on the last page is a no-op")

	require.NoError(t, view.Prev(context.Background()))
	assert.Equal(t, 2, view.Snapshot().Page)
	assert.Equal(t, 3, view.Snapshot().FilteredCount, "filter survives page changes")
}

func TestViewFailureAndRetry(t *testing.T) {
	fail := true
	view := NewView(func(_ context.Context, page int) (Page[backend.Developer], error) {
		if fail {
			return Page[backend.Developer]{}, &backend.FetchError{Kind: backend.KindTransport, Op: "developers", Err: backend.ErrMissingToken}
		}
		return Page[backend.Developer]{Items: []backend.Developer{{ID: 1}}, Page: page, TotalPages: 1, PageSize: 20}, nil
	})

	err := view.Load(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, backend.IsKind(err, backend.KindTransport))
	snap := view.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.NotEmpty(t, snap.Error)
	assert.Equal(t, err, view.Err())

	fail = false
	require.NoError(t, view.Retry(context.Background()))
	snap = view.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Items, 1)
}

func TestViewDiscardsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	view := NewView(func(ctx context.Context, page int) (Page[backend.Developer], error) {
		if page == 1 {
			once.Do(func() { close(started) })
			select {
			case <-release:
			case <-ctx.Done():
			}
			return Page[backend.Developer]{Items: []backend.Developer{{ID: 100}}, Page: 1, TotalPages: 2}, nil
		}
		return Page[backend.Developer]{Items: []backend.Developer{{ID: 200}}, Page: 2, TotalPages: 2}, nil
	})

	slow := make(chan error, 1)
	go func() { slow <- view.Load(context.Background(), 1) }()
	<-started

	require.NoError(t, view.Load(context.Background(), 2))
	close(release)

	select {
	case err := <-slow:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded load did not return")
	}
	snap := view.Snapshot()
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, int64(200), snap.Items[0].ID)
}

func TestViewCloseDiscardsLateResult(t *testing.T) {
	started := make(chan struct{})
	view := NewView(func(ctx context.Context, _ int) (Page[backend.Developer], error) {
		close(started)
		<-ctx.Done()
		return Page[backend.Developer]{Items: []backend.Developer{{ID: 1}}, Page: 1, TotalPages: 1}, ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- view.Load(context.Background(), 1) }()
	<-started
	view.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("close did not cancel the in-flight load")
	}
	assert.Empty(t, view.Snapshot().Items)
	assert.ErrorIs(t, view.Load(context.Background(), 1), ErrClosed)
}

func TestViewProjectNames(t *testing.T) {
	view := NewFilteredView(func(_ context.Context, page int) (Page[backend.ManagerTask], error) {
		return pageOf(sampleTasks(), page, 1), nil
	})
	require.NoError(t, view.Load(context.Background(), 1))
	assert.Equal(t, []string{"Website Revamp", "Mobile App", "Billing"}, view.ProjectNames())
}

func TestViewUnfilterableIgnoresFilter(t *testing.T) {
	view := NewView(func(_ context.Context, _ int) (Page[backend.Developer], error) {
		return Page[backend.Developer]{Items: []backend.Developer{{ID: 1}, {ID: 2}}, Page: 1, TotalPages: 1}, nil
	})
	require.NoError(t, view.Load(context.Background(), 1))
	snap := view.SetFilter(FilterState{Status: StatusDone})
	assert.Equal(t, 2, snap.FilteredCount)
	assert.False(t, errors.Is(view.Err(), ErrClosed))
}

// tenTasks has three done Website Revamp tasks, at positions 2, 7 and 9.
func tenTasks() []any {
	items := make([]any, 0, 10)
	for i := 1; i <= 10; i++ {
		task := map[string]any{"task_id": i, "task_name": "task", "project_name": "Mobile App", "task_status": StatusTodo}
		switch i {
		case 2, 7, 9:
			task["project_name"] = "Website Revamp"
			task["task_status"] = StatusDone
		case 10:
			task["project_name"] = "Billing"
		}
		items = append(items, task)
	}
	return items
}

func TestViewFiltersWholeLocalSet(t *testing.T) {
	lister := listerFunc(func(context.Context, backend.ListRequest) (backend.Envelope, error) {
		return backend.Envelope{Items: tenTasks()}, nil
	})
	view := NewFilteredView(Fetcher[backend.ManagerTask](lister, Request{Resource: ManagerTasks, PageSize: 5, Token: "tok"}))
	require.NoError(t, view.Load(context.Background(), 1))

	snap := view.Snapshot()
	assert.Len(t, snap.Items, 5)
	assert.Equal(t, 10, snap.FetchedCount)
	assert.Equal(t, 10, snap.FilteredCount)
	assert.Equal(t, []string{"Mobile App", "Website Revamp", "Billing"}, view.ProjectNames(), "projects come from every fetched task")

	snap = view.SetFilter(FilterState{Status: StatusDone, Project: "Website Revamp"})
	assert.Equal(t, 3, snap.FilteredCount)
	require.Len(t, snap.Items, 3)
	assert.Equal(t, []int64{2, 7, 9}, []int64{snap.Items[0].ID, snap.Items[1].ID, snap.Items[2].ID})
	assert.Equal(t, 2, snap.TotalPages, "total pages count the unfiltered set")

	require.NoError(t, view.Next(context.Background()))
	snap = view.Snapshot()
	assert.Equal(t, 2, snap.Page)
	assert.Empty(t, snap.Items, "every match fits on the first page")
	assert.Equal(t, 3, snap.FilteredCount)
}
