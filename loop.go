package lightpillar

import (
	"sort"
	"time"
)

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Duration
}

// SystemClock measures time since its creation using the runtime's
// monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock starts a clock at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the time elapsed since NewSystemClock.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Used by headless hosts and tests.
type ManualClock struct {
	now time.Duration
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Duration { return c.now }

// Advance moves the clock forward by d. Negative values are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

// Loop is a cooperative, single-threaded task queue. The host calls Pump
// once per frame; tasks never run concurrently with each other or with the
// host's own event dispatch. No locking: everything happens on the pumping
// goroutine.
type Loop struct {
	clock Clock
	tasks []*task
	seq   uint64
}

type task struct {
	due      time.Duration
	seq      uint64
	fn       func()
	canceled bool
}

// Handle cancels a scheduled task.
type Handle struct {
	t *task
}

// Cancel prevents the task from running. Safe on a zero Handle and after the
// task has run.
func (h Handle) Cancel() {
	if h.t != nil {
		h.t.canceled = true
		h.t.fn = nil
	}
}

// Pending reports whether the task is still waiting to run.
func (h Handle) Pending() bool {
	return h.t != nil && !h.t.canceled && h.t.fn != nil
}

// NewLoop creates a loop on the given clock. A nil clock uses a SystemClock.
func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Loop{clock: clock}
}

// Clock returns the loop's time source.
func (l *Loop) Clock() Clock { return l.clock }

// Post schedules fn for the next Pump.
func (l *Loop) Post(fn func()) Handle {
	return l.schedule(l.clock.Now(), fn)
}

// After schedules fn for the first Pump at or after now+d.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	return l.schedule(l.clock.Now()+d, fn)
}

func (l *Loop) schedule(due time.Duration, fn func()) Handle {
	l.seq++
	t := &task{due: due, seq: l.seq, fn: fn}
	l.tasks = append(l.tasks, t)
	return Handle{t: t}
}

// Pump runs every task that is due, in deadline then submission order, and
// returns how many ran. Tasks scheduled while pumping wait for the next Pump.
func (l *Loop) Pump() int {
	if len(l.tasks) == 0 {
		return 0
	}
	now := l.clock.Now()
	sort.SliceStable(l.tasks, func(i, j int) bool {
		a, b := l.tasks[i], l.tasks[j]
		if a.due != b.due {
			return a.due < b.due
		}
		return a.seq < b.seq
	})

	var due []*task
	rest := l.tasks[:0]
	for _, t := range l.tasks {
		switch {
		case t.canceled || t.fn == nil:
		case t.due <= now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	// Zero the tail so dropped tasks can be collected.
	for i := len(rest); i < len(l.tasks); i++ {
		l.tasks[i] = nil
	}
	l.tasks = rest

	ran := 0
	for _, t := range due {
		// A task earlier in this batch may have canceled this one.
		fn := t.fn
		if t.canceled || fn == nil {
			continue
		}
		t.fn = nil
		fn()
		ran++
	}
	return ran
}

// Len returns the number of tasks still queued, canceled ones included
// until the next Pump drops them.
func (l *Loop) Len() int {
	return len(l.tasks)
}
