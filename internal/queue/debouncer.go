package queue

import (
	"sort"
	"sync"
	"time"
)

// Debouncer runs fire(key) once per key after delay has elapsed since the
// most recent Touch for that key. It is safe for concurrent use.
type Debouncer struct {
	delay time.Duration
	fire  func(key string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	running sync.WaitGroup
}

// NewDebouncer creates a Debouncer.
//
// Precondition: delay > 0; fire must not be nil.
func NewDebouncer(delay time.Duration, fire func(key string)) *Debouncer {
	return &Debouncer{
		delay:  delay,
		fire:   fire,
		timers: make(map[string]*time.Timer),
	}
}

// Touch (re)starts the timer for key.
//
// Postcondition: fire(key) runs delay after the last Touch unless Stop or
// Flush intervenes. Touch after Stop is a no-op.
func (d *Debouncer) Touch(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped || d.timers[key] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		d.fire(key)
	})
	d.timers[key] = t
}

// Pending returns the number of keys waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Flush fires every pending key immediately on the caller's goroutine, in
// key order.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.timers))
	for k, t := range d.timers {
		t.Stop()
		keys = append(keys, k)
	}
	clear(d.timers)
	d.mu.Unlock()

	sort.Strings(keys)
	for _, k := range keys {
		d.fire(k)
	}
}

// Stop cancels every pending timer and waits for in-flight fires. Safe to
// call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for _, t := range d.timers {
		t.Stop()
	}
	clear(d.timers)
	d.mu.Unlock()
	d.running.Wait()
}
