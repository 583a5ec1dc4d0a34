package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/devmarvs/pmboard/backend"
)

// BlurGrace is how long the dropdown stays open after losing focus, long
// enough for a click on a suggestion to land.
const BlurGrace = 150 * time.Millisecond

// DropdownState is the renderable state of a Dropdown.
type DropdownState struct {
	Query    string               `json:"query"`
	Items    []backend.Suggestion `json:"items"`
	Visible  bool                 `json:"visible"`
	Selected *backend.Suggestion  `json:"selected,omitempty"`
}

// Dropdown is the assignee picker: typing searches, blur closes after
// BlurGrace, refocusing within the grace keeps it open.
type Dropdown struct {
	mu       sync.Mutex
	lookup   *Lookup
	query    string
	items    []backend.Suggestion
	visible  bool
	selected *backend.Suggestion
	gen      uint64
	closer   *DelayedAction
	onChange func(DropdownState)
}

// NewDropdown creates a hidden dropdown. A non-positive grace uses BlurGrace.
func NewDropdown(lookup *Lookup, grace time.Duration) *Dropdown {
	if grace <= 0 {
		grace = BlurGrace
	}
	d := &Dropdown{lookup: lookup}
	d.closer = NewDelayedAction(grace, d.hide)
	return d
}

// OnChange registers fn to receive the state after every change.
func (d *Dropdown) OnChange(fn func(DropdownState)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Input records the typed text and refreshes suggestions. Only the newest
// input's answer is shown. A blank input clears and hides the list.
func (d *Dropdown) Input(ctx context.Context, query string) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.query = query
	d.selected = nil
	d.mu.Unlock()

	items, err := d.lookup.Search(ctx, query)

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return nil
	}
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.items = items
	d.visible = len(items) > 0
	d.mu.Unlock()
	d.notify()
	return nil
}

// Focus cancels a pending close and reopens a non-empty list.
func (d *Dropdown) Focus() {
	d.closer.Cancel()
	d.mu.Lock()
	d.visible = len(d.items) > 0 && d.selected == nil
	d.mu.Unlock()
	d.notify()
}

// Blur schedules the list to close after the grace period.
func (d *Dropdown) Blur() {
	d.closer.Schedule()
}

// ClosePending reports whether a blur is waiting to close the list.
func (d *Dropdown) ClosePending() bool {
	return d.closer.Pending()
}

// Select picks a suggestion by id and closes the list at once.
func (d *Dropdown) Select(id int64) (backend.Suggestion, bool) {
	d.closer.Cancel()
	d.mu.Lock()
	var picked *backend.Suggestion
	for i := range d.items {
		if d.items[i].ID == id {
			choice := d.items[i]
			picked = &choice
			break
		}
	}
	if picked == nil {
		d.mu.Unlock()
		return backend.Suggestion{}, false
	}
	d.selected = picked
	d.query = picked.Name
	d.visible = false
	d.mu.Unlock()
	d.notify()
	return *picked, true
}

// State returns the current state.
func (d *Dropdown) State() DropdownState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

func (d *Dropdown) hide() {
	d.mu.Lock()
	d.visible = false
	d.mu.Unlock()
	d.notify()
}

func (d *Dropdown) stateLocked() DropdownState {
	state := DropdownState{
		Query:   d.query,
		Items:   append([]backend.Suggestion(nil), d.items...),
		Visible: d.visible,
	}
	if d.selected != nil {
		selected := *d.selected
		state.Selected = &selected
	}
	return state
}

func (d *Dropdown) notify() {
	d.mu.Lock()
	fn := d.onChange
	state := d.stateLocked()
	d.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}
