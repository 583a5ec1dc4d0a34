package listquery

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle of a list view.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

var (
	// ErrSuperseded is returned by a Load whose result was discarded
	// because a newer Load started before it finished.
	ErrSuperseded = errors.New("list load superseded")
	// ErrClosed is returned once the view has been closed.
	ErrClosed = errors.New("list view closed")
)

// FetchFunc loads one page for a view.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Snapshot is the renderable state of a view. The filter runs over every
// fetched record: the whole set for locally paged resources, the current
// page otherwise. Items is the current page of the matches; TotalPages
// still counts the unfiltered set.
type Snapshot[T any] struct {
	State         State       `json:"state"`
	Items         []T         `json:"items"`
	Page          int         `json:"page"`
	TotalPages    int         `json:"total_pages"`
	PageSize      int         `json:"page_size"`
	HasPrev       bool        `json:"has_prev"`
	HasNext       bool        `json:"has_next"`
	Filter        FilterState `json:"filter"`
	FetchedCount  int         `json:"fetched_count"`
	FilteredCount int         `json:"filtered_count"`
	Error         string      `json:"error,omitempty"`
}

// View drives one list screen: Idle, then Loading, then Loaded or Failed,
// and back to Loading on every page change. Filter changes never reload.
//
// Each Load bumps a generation counter and cancels the previous in-flight
// fetch; a result whose generation is stale, or that arrives after Close,
// is discarded.
type View[T any] struct {
	mu         sync.Mutex
	fetch      FetchFunc[T]
	match      func(T, FilterState) bool
	state      State
	current    Page[T]
	requested  int
	filter     FilterState
	err        error
	generation uint64
	cancel     context.CancelFunc
	closed     bool
	observers  []func(Snapshot[T])
}

// NewView creates a view over records that are not filterable.
func NewView[T any](fetch FetchFunc[T]) *View[T] {
	return &View[T]{
		fetch:     fetch,
		state:     StateIdle,
		requested: 1,
		filter:    DefaultFilter(),
		current:   Page[T]{Page: 1, TotalPages: 1},
	}
}

// NewFilteredView creates a view whose records honour FilterState.
func NewFilteredView[T Filterable](fetch FetchFunc[T]) *View[T] {
	view := NewView(fetch)
	view.match = func(item T, filter FilterState) bool {
		return filter.Matches(item)
	}
	return view
}

// OnChange registers fn to receive a snapshot after every transition.
// Observers run outside the view lock.
func (v *View[T]) OnChange(fn func(Snapshot[T])) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.observers = append(v.observers, fn)
}

// Load fetches page and applies the result if no newer Load has started.
func (v *View[T]) Load(ctx context.Context, page int) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if page < 1 {
		page = 1
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.generation++
	gen := v.generation
	v.cancel = cancel
	v.requested = page
	v.state = StateLoading
	v.err = nil
	fetch := v.fetch
	v.mu.Unlock()
	v.notify()

	result, err := fetch(ctx, page)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		cancel()
		return ErrClosed
	}
	if gen != v.generation {
		v.mu.Unlock()
		return ErrSuperseded
	}
	cancel()
	v.cancel = nil
	if err != nil {
		v.state = StateFailed
		v.err = err
	} else {
		v.state = StateLoaded
		v.current = result
		v.requested = result.Page
	}
	v.mu.Unlock()
	v.notify()
	return err
}

// Next loads the following page. It does nothing on the last page.
func (v *View[T]) Next(ctx context.Context) error {
	v.mu.Lock()
	if !v.current.HasNext() {
		v.mu.Unlock()
		return nil
	}
	page := v.current.Page + 1
	v.mu.Unlock()
	return v.Load(ctx, page)
}

// Prev loads the previous page. It does nothing on the first page.
func (v *View[T]) Prev(ctx context.Context) error {
	v.mu.Lock()
	if !v.current.HasPrev() {
		v.mu.Unlock()
		return nil
	}
	page := v.current.Page - 1
	v.mu.Unlock()
	return v.Load(ctx, page)
}

// Retry reloads the last requested page.
func (v *View[T]) Retry(ctx context.Context) error {
	v.mu.Lock()
	page := v.requested
	v.mu.Unlock()
	return v.Load(ctx, page)
}

// SetFilter changes the filter and re-derives the visible items without
// fetching.
func (v *View[T]) SetFilter(filter FilterState) Snapshot[T] {
	v.mu.Lock()
	if filter.Status == "" {
		filter.Status = StatusAll
	}
	if filter.Project == "" {
		filter.Project = ProjectAll
	}
	v.filter = filter
	snapshot := v.snapshotLocked()
	v.mu.Unlock()
	v.notify()
	return snapshot
}

// Close discards any in-flight result and rejects further loads.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Err returns the error of the last failed load.
func (v *View[T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Snapshot returns the current renderable state.
func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// ProjectNames lists the distinct projects of every fetched record, in
// first-seen order.
func (v *View[T]) ProjectNames() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	seen := map[string]struct{}{}
	names := []string{}
	for _, item := range v.fetchedLocked() {
		filterable, ok := any(item).(Filterable)
		if !ok {
			return names
		}
		name := filterable.FilterProject()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// fetchedLocked returns the full fetched set when the resource is paged
// locally, otherwise the current page.
func (v *View[T]) fetchedLocked() []T {
	if v.current.All != nil {
		return v.current.All
	}
	return v.current.Items
}

func (v *View[T]) snapshotLocked() Snapshot[T] {
	fetched := v.fetchedLocked()
	matches := fetched
	if v.match != nil && !v.filter.IsDefault() {
		matches = make([]T, 0, len(fetched))
		for _, item := range fetched {
			if v.match(item, v.filter) {
				matches = append(matches, item)
			}
		}
	}

	var items []T
	if v.current.All != nil {
		items = window(matches, v.current.Page, v.current.PageSize)
	} else {
		items = append(make([]T, 0, len(matches)), matches...)
	}

	snapshot := Snapshot[T]{
		State:         v.state,
		Items:         items,
		Page:          v.current.Page,
		TotalPages:    v.current.TotalPages,
		PageSize:      v.current.PageSize,
		HasPrev:       v.current.HasPrev(),
		HasNext:       v.current.HasNext(),
		Filter:        v.filter,
		FetchedCount:  len(fetched),
		FilteredCount: len(matches),
	}
	if v.err != nil {
		snapshot.Error = v.err.Error()
	}
	return snapshot
}

func (v *View[T]) notify() {
	v.mu.Lock()
	if len(v.observers) == 0 {
		v.mu.Unlock()
		return
	}
	observers := append([]func(Snapshot[T]){}, v.observers...)
	snapshot := v.snapshotLocked()
	v.mu.Unlock()
	for _, fn := range observers {
		fn(snapshot)
	}
}
