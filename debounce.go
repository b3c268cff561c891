package main

import (
	"sync"
	"time"
)

// Debouncer forwards the latest value passed to Set once no new value has
// arrived for delay. A delay of zero or less emits synchronously.
type Debouncer struct {
	delay time.Duration
	emit  func(string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
	value   string
}

func NewDebouncer(delay time.Duration, emit func(string)) *Debouncer {
	return &Debouncer{delay: delay, emit: emit}
}

func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.delay <= 0 {
		d.pending = false
		d.mu.Unlock()
		d.emit(value)
		return
	}
	seq := d.seq
	d.pending = true
	d.value = value
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// superseded between firing and taking the lock
		if seq != d.seq || !d.pending {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		d.emit(value)
	})
	d.mu.Unlock()
}

// Flush emits a pending value right away. It reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	value := d.value
	d.mu.Unlock()
	d.emit(value)
	return true
}

// Stop drops any pending value without emitting it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
