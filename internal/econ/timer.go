package econ

import "time"

// Condition names one persisted precondition
type Condition string

const (
	ConditionFanOff      Condition = "fan_off"
	ConditionTempSpread  Condition = "temperature_spread"
	ConditionSensorRange Condition = "sensor_range"
)

// PersistenceTimer tracks how long a condition has continuously held. It is
// either idle or armed since the cycle the condition was first observed.
type PersistenceTimer struct {
	armed bool
	since time.Time
}

// Observe arms the timer on the first true observation, keeps it armed while
// the condition holds and returns it to idle as soon as it does not.
func (t *PersistenceTimer) Observe(active bool, now time.Time) {
	if !active {
		t.Reset()
		return
	}
	if !t.armed {
		t.armed = true
		t.since = now
	}
}

// Armed reports whether the condition currently holds
func (t *PersistenceTimer) Armed() bool {
	return t.armed
}

// Since returns the time the current streak started
func (t *PersistenceTimer) Since() (time.Time, bool) {
	return t.since, t.armed
}

// Elapsed returns how long the timer has been armed at now; zero when idle
func (t *PersistenceTimer) Elapsed(now time.Time) time.Duration {
	if !t.armed {
		return 0
	}

	return now.Sub(t.since)
}

// Expired reports whether the timer has been armed for at least window
func (t *PersistenceTimer) Expired(now time.Time, window time.Duration) bool {
	return t.armed && t.Elapsed(now) >= window
}

func (t *PersistenceTimer) Reset() {
	t.armed = false
	t.since = time.Time{}
}

var timerConditions = []Condition{ConditionFanOff, ConditionTempSpread, ConditionSensorRange}

// Timers is the arena of persistence timers keyed by condition
type Timers struct {
	timers map[Condition]*PersistenceTimer
}

func NewTimers() *Timers {
	ts := &Timers{timers: make(map[Condition]*PersistenceTimer, len(timerConditions))}
	for _, c := range timerConditions {
		ts.timers[c] = &PersistenceTimer{}
	}

	return ts
}

// Get returns the timer for c. Unknown conditions get a fresh timer.
func (ts *Timers) Get(c Condition) *PersistenceTimer {
	t, ok := ts.timers[c]
	if !ok {
		t = &PersistenceTimer{}
		ts.timers[c] = t
	}

	return t
}

func (ts *Timers) ResetAll() {
	for _, t := range ts.timers {
		t.Reset()
	}
}

// AnyArmed reports whether any tracked condition currently holds
func (ts *Timers) AnyArmed() bool {
	for _, t := range ts.timers {
		if t.Armed() {
			return true
		}
	}

	return false
}
