package econ

import (
	"math"
	"time"
)

// Gate is the outcome of one precondition check for a cycle
type Gate struct {
	Condition Condition
	// Blocked stops the cycle regardless of the timer
	Blocked bool
	// Expired means the condition has persisted for the whole data window
	Expired bool
	Reason  string
}

// FanState is the supply fan evaluation for a cycle
type FanState struct {
	Status   int
	Speed    float64
	HasSpeed bool
}

// On reports whether the supply fan is running
func (f FanState) On() bool {
	return f.Status != 0
}

// Tracker owns the persistence timers and evaluates the three gates
type Tracker struct {
	settings *Settings
	timers   *Timers
}

func NewTracker(settings *Settings) *Tracker {
	return &Tracker{
		settings: settings,
		timers:   NewTimers(),
	}
}

// Timers exposes the timer arena
func (t *Tracker) Timers() *Timers {
	return t.timers
}

// ResetAll returns every timer to idle
func (t *Tracker) ResetAll() {
	t.timers.ResetAll()
}

func (t *Tracker) gate(c Condition, active bool, reason string, now time.Time) Gate {
	timer := t.timers.Get(c)
	timer.Observe(active, now)

	return Gate{
		Condition: c,
		Blocked:   active,
		Expired:   timer.Expired(now, t.settings.DataWindow),
		Reason:    reason,
	}
}

// CheckFan derives the supply fan state and advances the fan-off timer.
// Discrete status samples win over speed; without them the fan counts as on
// when the mean speed exceeds the low supply fan threshold.
func (t *Tracker) CheckFan(samples CycleSamples, now time.Time) (FanState, Gate) {
	var fan FanState
	if samples.Has(FanSpeed) {
		fan.Speed = samples.Mean(FanSpeed)
		fan.HasSpeed = true
	}

	switch {
	case samples.Has(FanStatus):
		fan.Status = int(samples.Max(FanStatus))
	case fan.HasSpeed && fan.Speed > t.settings.LowSupplyFanThreshold:
		fan.Status = 1
	default:
		fan.Status = 0
	}

	return fan, t.gate(ConditionFanOff, !fan.On(), ReasonFanOff, now)
}

// CheckTemperatureSpread blocks when outdoor and return air are too close
// for outdoor-air fraction math to be meaningful
func (t *Tracker) CheckTemperatureSpread(r Reading, now time.Time) Gate {
	tooClose := math.Abs(r.OAT-r.RAT) < t.settings.OAFTemperatureThreshold

	return t.gate(ConditionTempSpread, tooClose, ReasonTempSpread, now)
}

// CheckSensorRange tests outdoor, mixed and return air against their limits
// in that order. Only the first violation is reported.
func (t *Tracker) CheckSensorRange(r Reading, now time.Time) Gate {
	var reason string
	switch {
	case !t.settings.OATLimits.Contains(r.OAT):
		reason = ReasonOATLimit
	case !t.settings.MATLimits.Contains(r.MAT):
		reason = ReasonMATLimit
	case !t.settings.RATLimits.Contains(r.RAT):
		reason = ReasonRATLimit
	}

	return t.gate(ConditionSensorRange, reason != "", reason, now)
}
