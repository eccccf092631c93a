// Package countdown implements the per-question ticking clock. It ticks
// once per second against an injected clockwork.Clock so tests can drive
// it deterministically with a fake clock.
package countdown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TickFunc receives the generation of the run that produced the tick and
// the seconds remaining after it.
type TickFunc func(gen uint64, remaining int)

// ExpireFunc fires once when a run reaches zero without being cancelled.
type ExpireFunc func(gen uint64)

// Timer is a restartable one-question countdown. At most one run is live
// at any instant: Start cancels the previous run before launching the
// next, and every run carries a generation so a stale run's callbacks can
// be recognized and dropped by the owner.
//
// Callbacks are invoked from the timer goroutine, never from Start or
// Cancel, so owners may call Start/Cancel while holding their own lock.
type Timer struct {
	clock    clockwork.Clock
	onTick   TickFunc
	onExpire ExpireFunc

	mu   sync.Mutex
	gen  uint64
	stop chan struct{}
}

func New(clock clockwork.Clock, onTick TickFunc, onExpire ExpireFunc) *Timer {
	return &Timer{clock: clock, onTick: onTick, onExpire: onExpire}
}

// Start cancels any running countdown and begins a new one from seconds.
// It returns the generation of the new run.
func (t *Timer) Start(seconds int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()
	t.gen++
	t.stop = make(chan struct{})
	go t.run(t.gen, seconds, t.stop)
	return t.gen
}

// Cancel stops the running countdown, if any. Safe to call repeatedly and
// while no countdown is running.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Gen returns the generation of the most recent run.
func (t *Timer) Gen() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

func (t *Timer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) run(gen uint64, remaining int, stop chan struct{}) {
	if remaining <= 0 {
		select {
		case <-stop:
		default:
			t.onExpire(gen)
		}
		return
	}

	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			// A cancel racing the tick must win: never surface a tick
			// from a run that was already told to stop.
			select {
			case <-stop:
				return
			default:
			}
			remaining--
			t.onTick(gen, remaining)
			if remaining <= 0 {
				t.onExpire(gen)
				return
			}
		case <-stop:
			return
		}
	}
}
