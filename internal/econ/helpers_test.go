package econ_test

import (
	"strconv"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
)

var t0 = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func testSettings() econ.Settings {
	return econ.Settings{
		AnalysisName:   "Economizer_RCx",
		DeviceType:     econ.DeviceRTU,
		EconomizerType: econ.EconomizerDDB,
		Sensitivities:  []string{"low", "normal", "high"},
		Points: econ.PointMapping{
			econ.FanStatus:      "SupplyFanStatus",
			econ.FanSpeed:       "SupplyFanSpeed",
			econ.OutdoorAirTemp: "OutdoorAirTemperature",
			econ.ReturnAirTemp:  "ReturnAirTemperature",
			econ.MixedAirTemp:   "MixedAirTemperature",
			econ.DamperSignal:   "OutdoorDamperSignal",
			econ.CoolCall:       "CoolCall1",
		},
		DataWindow:              30 * time.Minute,
		LowSupplyFanThreshold:   15,
		OAFTemperatureThreshold: 5,
		CoolingEnabledThreshold: 5,
		TempBand:                1,
		EconHighLimitTemp:       65,
		OATLimits:               econ.Bounds{Low: 30, High: 110},
		MATLimits:               econ.Bounds{Low: 50, High: 90},
		RATLimits:               econ.Bounds{Low: 50, High: 90},
	}
}

func ptr(v float64) *float64 {
	return &v
}

func batchAt(ts time.Time, values map[string]float64) econ.Batch {
	b := econ.Batch{Topic: "devices/campus/building/rtu1/all", Timestamp: ts, Values: map[string]*float64{}}
	for k, v := range values {
		b.Values[k] = ptr(v)
	}

	return b
}

// healthyValues passes every precondition gate
func healthyValues() map[string]float64 {
	return map[string]float64{
		"SupplyFanStatus":       1,
		"OutdoorAirTemperature": 60,
		"ReturnAirTemperature":  75,
		"MixedAirTemperature":   70,
		"OutdoorDamperSignal":   30,
		"CoolCall1":             1,
	}
}

func with(values map[string]float64, key string, v float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, val := range values {
		out[k] = val
	}
	out[key] = v

	return out
}

func without(values map[string]float64, key string) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, val := range values {
		if k != key {
			out[k] = val
		}
	}

	return out
}

type fakeSensor struct {
	verdicts []econ.Verdict
	calls    []econ.Reading
	clears   int
	panicOn  bool
}

func (f *fakeSensor) Name() string { return econ.TemperatureSensorDx }

func (f *fakeSensor) Check(r econ.Reading) (econ.Verdict, econ.Result) {
	if f.panicOn {
		panic("sensor exploded")
	}
	f.calls = append(f.calls, r)
	v := econ.VerdictUnknown
	if len(f.verdicts) > 0 {
		v = f.verdicts[0]
		f.verdicts = f.verdicts[1:]
	}

	return v, econ.Result{Diagnostic: econ.TemperatureSensorDx, Timestamp: r.Timestamp}
}

func (f *fakeSensor) ClearData() { f.clears++ }

type fakeDiagnostic struct {
	name   string
	calls  []econ.Reading
	clears int
	result *econ.Finding
}

func (f *fakeDiagnostic) Name() string { return f.name }

func (f *fakeDiagnostic) Run(r econ.Reading) econ.Result {
	f.calls = append(f.calls, r)
	res := econ.Result{Diagnostic: f.name, Timestamp: r.Timestamp}
	if f.result != nil {
		res.Findings = []econ.Finding{*f.result}
	}

	return res
}

func (f *fakeDiagnostic) ClearData() { f.clears++ }

type harness struct {
	monitor    *econ.Monitor
	sensor     *fakeSensor
	downstream []*fakeDiagnostic
}

func newHarness(settings econ.Settings, verdicts ...econ.Verdict) (*harness, error) {
	h := &harness{sensor: &fakeSensor{verdicts: verdicts}}
	var dxs []econ.Diagnostic
	for _, name := range econ.DiagnosticNames[1:] {
		f := &fakeDiagnostic{name: name}
		h.downstream = append(h.downstream, f)
		dxs = append(dxs, f)
	}

	id := 0
	m, err := econ.NewMonitor(settings, h.sensor, dxs, econ.WithIDFunc(func() string {
		id++
		return strconv.Itoa(id)
	}))
	h.monitor = m

	return h, err
}

func (h *harness) downstreamCalls() int {
	n := 0
	for _, d := range h.downstream {
		n += len(d.calls)
	}

	return n
}
