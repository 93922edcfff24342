package econ

import (
	"fmt"
	"time"

	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
)

// Stage records where a cycle stopped
type Stage string

const (
	StageMissingData   Stage = "missing_data"
	StageFanOff        Stage = "fan_off"
	StageTempSpread    Stage = "temperature_spread"
	StageSensorRange   Stage = "sensor_range"
	StageSensorPending Stage = "sensor_pending"
	StageSensorFault   Stage = "sensor_fault"
	StageDiagnosed     Stage = "diagnosed"
)

// Outcome is everything a single cycle produced
type Outcome struct {
	Timestamp time.Time
	Stage     Stage
	Missing   []string
	Reading   *Reading
	Verdict   Verdict
	Records   []Record
}

// TimerState is a read-only view of one persistence timer
type TimerState struct {
	Armed bool
	Since time.Time
}

// State is a read-only snapshot of the monitor's mutable state
type State struct {
	Timers        map[Condition]TimerState
	SensorVerdict Verdict
}

// Option customizes a Monitor
type Option func(*Monitor)

// WithLogger sets the logger used for per-cycle messages
func WithLogger(log logger.Logger) Option {
	return func(m *Monitor) {
		m.log = log
	}
}

// WithIDFunc replaces the record identifier generator
func WithIDFunc(fn IDFunc) Option {
	return func(m *Monitor) {
		m.reporter.newID = fn
	}
}

// Monitor runs the precondition state machine and diagnostic dispatch for one
// device. It is not safe for concurrent use; batches must be processed one at
// a time in arrival order.
type Monitor struct {
	settings   *Settings
	tracker    *Tracker
	dispatcher *Dispatcher
	reporter   *reporter
	log        logger.Logger
	verdict    Verdict
}

func NewMonitor(settings Settings, sensor SensorDiagnostic, downstream []Diagnostic, opts ...Option) (*Monitor, error) {
	errFactory := errors.New()

	if sensor == nil {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "temperature sensor diagnostic is required")
	}
	for i, dx := range downstream {
		if dx == nil {
			return nil, errFactory.WithData(errors.ErrInvalidArgument, fmt.Sprintf("diagnostic %d is nil", i))
		}
	}
	if len(settings.Sensitivities) == 0 {
		return nil, errFactory.New(errors.ErrInvalidSensitivity)
	}

	s := settings
	m := &Monitor{
		settings:   &s,
		tracker:    NewTracker(&s),
		dispatcher: NewDispatcher(&s, sensor, downstream...),
		reporter: &reporter{
			analysis:      s.AnalysisName,
			sensitivities: s.Sensitivities,
			newID:         defaultID,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Handle processes a batch and converts a panic inside the cycle into an
// error so the caller can move on to the next batch
func (m *Monitor) Handle(batch Batch) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New().WithData(errors.ErrCycleFailed, r)
		}
	}()

	return m.Process(batch), nil
}

// Process runs one cycle: aggregate, gate, derive, then dispatch
func (m *Monitor) Process(batch Batch) Outcome {
	now := batch.Timestamp
	out := Outcome{Timestamp: now}
	m.log.Info().Time("timestamp", now).Str("topic", batch.Topic).Msg("Processing results")

	samples, missing := Aggregate(batch, m.settings.Points)
	if len(missing) > 0 {
		for _, s := range missing {
			out.Missing = append(out.Missing, m.settings.Points.PointName(s))
		}
		out.Stage = StageMissingData
		m.log.Info().Strs("missing", out.Missing).Msg("Missing data from publish")
		return out
	}

	fan, gate := m.tracker.CheckFan(samples, now)
	m.expire(&out, gate, now)
	if !fan.On() {
		out.Stage = StageFanOff
		m.log.Info().Time("timestamp", now).Msg("Supply fan is off")
		return out
	}
	m.log.Info().Time("timestamp", now).Msg("Supply fan is on")

	reading := m.dispatcher.Derive(samples, fan, now)
	out.Reading = &reading

	gate = m.tracker.CheckTemperatureSpread(reading, now)
	m.expire(&out, gate, now)
	if gate.Blocked {
		out.Stage = StageTempSpread
		m.log.Info().Float64("oat", reading.OAT).Float64("rat", reading.RAT).Msg("OAT and RAT readings are too close")
		return out
	}

	gate = m.tracker.CheckSensorRange(reading, now)
	m.expire(&out, gate, now)
	if gate.Blocked {
		out.Stage = StageSensorRange
		since, _ := m.tracker.Timers().Get(ConditionSensorRange).Since()
		m.log.Info().Str("reason", gate.Reason).Time("since", since).Msg("Temperature sensor is outside of bounds")
		return out
	}

	m.dispatch(&out, reading)

	return out
}

func (m *Monitor) dispatch(out *Outcome, reading Reading) {
	m.log.Debug().
		Bool("cool_call", reading.CoolCall).
		Bool("econ_condition", reading.EconCondition).
		Msg("Cooling and economizer condition")

	verdict, res := m.dispatcher.CheckSensors(reading)
	m.verdict = verdict
	out.Verdict = verdict
	out.Records = append(out.Records, m.reporter.results(res)...)

	switch verdict {
	case VerdictHealthy:
		for _, r := range m.dispatcher.RunDownstream(reading) {
			out.Records = append(out.Records, m.reporter.results(r)...)
		}
		out.Stage = StageDiagnosed
	case VerdictFaulted:
		out.Records = append(out.Records, m.reporter.preconditions(ReasonSensorProblem, reading.Timestamp)...)
		m.dispatcher.ClearDownstream()
		out.Stage = StageSensorFault
	default:
		out.Stage = StageSensorPending
	}
}

// expire reports and resets everything once a gate's condition outlasted the window
func (m *Monitor) expire(out *Outcome, gate Gate, now time.Time) {
	if !gate.Expired {
		return
	}

	m.log.Info().
		Str("condition", string(gate.Condition)).
		Str("reason", gate.Reason).
		Dur("window", m.settings.DataWindow).
		Msg("Preconditions not met for data window")
	out.Records = append(out.Records, m.reporter.preconditions(gate.Reason, now)...)
	m.Reset()
}

// Reset clears every diagnostic, every timer and the latched sensor verdict
func (m *Monitor) Reset() {
	m.dispatcher.ClearAll()
	m.tracker.ResetAll()
	m.verdict = VerdictUnknown
}

// State returns a snapshot of the timers and the latched sensor verdict
func (m *Monitor) State() State {
	st := State{
		Timers:        make(map[Condition]TimerState, len(timerConditions)),
		SensorVerdict: m.verdict,
	}
	for _, c := range timerConditions {
		since, armed := m.tracker.Timers().Get(c).Since()
		st.Timers[c] = TimerState{Armed: armed, Since: since}
	}

	return st
}
