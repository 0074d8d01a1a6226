package countdown

import (
	"sort"
	"sync"
	"time"
)

// State enumerates the countdown lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Callbacks are the notification hooks a Countdown fires. All fields are
// optional. Callbacks are invoked outside the countdown's internal lock, so
// they may safely call back into the Countdown.
type Callbacks struct {
	// OnTick fires once per tick with whole seconds remaining.
	OnTick func(remainingSeconds int)
	// OnWarning fires at most once per threshold per run, when remaining
	// time first drops to or below the threshold.
	OnWarning func(thresholdSeconds int)
	// OnComplete fires exactly once, on natural expiry. Stop does not fire it.
	OnComplete func()
}

// Countdown is a single countdown clock: Idle → Running ⇄ Paused →
// Completed (natural expiry) or Stopped (cancellation).
//
// Elapsed time is computed from wall-clock deltas, not by counting ticks, so
// scheduling jitter never accumulates into drift. Pausing freezes the elapsed
// accounting: the paused interval is excluded entirely.
type Countdown struct {
	mu sync.Mutex

	clock    Clock
	interval time.Duration

	duration time.Duration
	original time.Duration

	// thresholds is sorted descending so crossings fire in order.
	thresholds []int
	fired      map[int]bool

	state       State
	runStart    time.Time     // wall-clock reference for the current run segment
	accumulated time.Duration // elapsed across previous run segments

	cb   Callbacks
	stop chan struct{}
}

// New creates an Idle countdown with the given duration and warning
// thresholds (seconds remaining). Ticks fire at 1-second granularity.
func New(clock Clock, duration time.Duration, warningThresholds []int, cb Callbacks) *Countdown {
	t := append([]int(nil), warningThresholds...)
	sort.Sort(sort.Reverse(sort.IntSlice(t)))
	return &Countdown{
		clock:      clock,
		interval:   time.Second,
		duration:   duration,
		original:   duration,
		thresholds: t,
		fired:      make(map[int]bool),
		state:      StateIdle,
		cb:         cb,
	}
}

// Start transitions Idle or Paused to Running. It is a no-op in any other
// state. Resuming after a pause continues from the frozen elapsed time.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.state != StateIdle && c.state != StatePaused {
		c.mu.Unlock()
		return
	}
	c.state = StateRunning
	c.runStart = c.clock.Now()
	stop := make(chan struct{})
	c.stop = stop
	interval := c.interval
	c.mu.Unlock()

	go c.loop(stop, interval)
}

// Pause freezes the elapsed-time accounting. No-op unless Running.
func (c *Countdown) Pause() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.accumulated += c.clock.Now().Sub(c.runStart)
	c.state = StatePaused
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// Stop cancels the countdown without firing completion. Terminal.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.state == StateCompleted || c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	if c.state == StateRunning {
		c.accumulated += c.clock.Now().Sub(c.runStart)
	}
	c.state = StateStopped
	stop := c.stop
	c.stop = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// Reset returns the countdown to Idle with the given duration (or the
// original duration if newDuration <= 0) and clears the fired-warnings set.
func (c *Countdown) Reset(newDuration time.Duration) {
	c.mu.Lock()
	stop := c.stop
	c.stop = nil
	if newDuration > 0 {
		c.duration = newDuration
	} else {
		c.duration = c.original
	}
	c.state = StateIdle
	c.accumulated = 0
	c.fired = make(map[int]bool)
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// State returns the current lifecycle state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed returns accumulated running time, excluding paused intervals.
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

// Remaining returns the time left, floored at zero.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.duration - c.elapsedLocked()
	if r < 0 {
		r = 0
	}
	return r
}

func (c *Countdown) elapsedLocked() time.Duration {
	e := c.accumulated
	if c.state == StateRunning {
		e += c.clock.Now().Sub(c.runStart)
	}
	return e
}

func (c *Countdown) loop(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if done := c.tick(); done {
				return
			}
		}
	}
}

// tick performs one evaluation pass: completion first, then warnings, then
// the plain tick notification. Returns true once the countdown is no longer
// Running. Events are collected under the lock and fired after release so
// callbacks may re-enter the Countdown.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return true
	}

	remaining := c.duration - c.elapsedLocked()
	if remaining <= 0 {
		c.accumulated = c.duration
		c.state = StateCompleted
		c.stop = nil
		onComplete := c.cb.OnComplete
		c.mu.Unlock()
		if onComplete != nil {
			onComplete()
		}
		return true
	}

	remainingSec := int(remaining / time.Second)
	var warnings []int
	for _, th := range c.thresholds {
		if remainingSec <= th && !c.fired[th] {
			c.fired[th] = true
			warnings = append(warnings, th)
		}
	}
	onWarning := c.cb.OnWarning
	onTick := c.cb.OnTick
	c.mu.Unlock()

	for _, th := range warnings {
		if onWarning != nil {
			onWarning(th)
		}
	}
	if onTick != nil {
		onTick(remainingSec)
	}
	return false
}
