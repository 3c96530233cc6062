package scenario

import (
	"sync"
	"time"
)

// debouncer collapses bursts of changes to the same path into one delivery,
// fired once the path has been quiet for the delay.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: map[string]*time.Timer{}}
}

func (d *debouncer) add(path string, fire func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[path]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[path] == t {
			delete(d.timers, path)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fire(path)
		}
	})
	d.timers[path] = t
}

// stopAndWait cancels pending deliveries and waits up to timeout for the
// ones already firing.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
