package suggest

import (
	"sync"
	"time"
)

// DelayedAction runs fn once after a delay unless cancelled first.
// Scheduling again restarts the delay.
type DelayedAction struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	seq     uint64
	pending bool
}

// NewDelayedAction creates an idle action.
func NewDelayedAction(delay time.Duration, fn func()) *DelayedAction {
	return &DelayedAction{delay: delay, fn: fn}
}

// Schedule (re)starts the delay.
func (d *DelayedAction) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Cancel stops a pending run and reports whether one was pending.
func (d *DelayedAction) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending {
		return false
	}
	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return true
}

// Pending reports whether a run is scheduled.
func (d *DelayedAction) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// fire runs fn unless the schedule it belongs to was cancelled or replaced
// while the timer was firing.
func (d *DelayedAction) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()
	fn()
}
