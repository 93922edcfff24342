package econ

import "time"

// fullSpeed is assumed for constant volume units without a speed point
const fullSpeed = 100.0

// Dispatcher derives the cycle reading and drives the diagnostics
type Dispatcher struct {
	settings   *Settings
	sensor     SensorDiagnostic
	downstream []Diagnostic
}

func NewDispatcher(settings *Settings, sensor SensorDiagnostic, downstream ...Diagnostic) *Dispatcher {
	return &Dispatcher{
		settings:   settings,
		sensor:     sensor,
		downstream: downstream,
	}
}

// Derive reduces the cycle samples to the scalar reading diagnostics consume
func (d *Dispatcher) Derive(samples CycleSamples, fan FanState, now time.Time) Reading {
	r := Reading{
		Timestamp:   now,
		OAT:         samples.Mean(OutdoorAirTemp),
		RAT:         samples.Mean(ReturnAirTemp),
		MAT:         samples.Mean(MixedAirTemp),
		OAD:         samples.Mean(DamperSignal),
		FanStatus:   fan.Status,
		FanSpeed:    fan.Speed,
		HasFanSpeed: fan.HasSpeed,
	}
	if !r.HasFanSpeed && d.settings.ConstantVolume {
		r.FanSpeed = fullSpeed
		r.HasFanSpeed = true
	}
	r.CoolCall = d.coolCall(samples)
	r.EconCondition = d.econCondition(r)

	return r
}

func (d *Dispatcher) coolCall(samples CycleSamples) bool {
	if d.settings.DeviceType == DeviceAHU {
		return samples.Mean(CoolCall) > d.settings.CoolingEnabledThreshold
	}

	return int(samples.Max(CoolCall)) != 0
}

// econCondition reports whether outdoor conditions favor economizing
func (d *Dispatcher) econCondition(r Reading) bool {
	if d.settings.EconomizerType == EconomizerHL {
		return (d.settings.EconHighLimitTemp - r.OAT) > d.settings.TempBand
	}

	return (r.RAT - r.OAT) > d.settings.TempBand
}

// CheckSensors runs the temperature sensor diagnostic
func (d *Dispatcher) CheckSensors(r Reading) (Verdict, Result) {
	return d.sensor.Check(r)
}

// RunDownstream feeds r to every diagnostic that depends on healthy sensors
func (d *Dispatcher) RunDownstream(r Reading) []Result {
	results := make([]Result, 0, len(d.downstream))
	for _, dx := range d.downstream {
		results = append(results, dx.Run(r))
	}

	return results
}

// ClearDownstream discards the accumulated state of the dependent diagnostics
func (d *Dispatcher) ClearDownstream() {
	for _, dx := range d.downstream {
		dx.ClearData()
	}
}

// ClearAll discards the state of every diagnostic
func (d *Dispatcher) ClearAll() {
	d.sensor.ClearData()
	d.ClearDownstream()
}
