package diagnostics

import (
	"math"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
)

const (
	sensorOK          = 0.0
	sensorMATBelow    = 1.1
	sensorMATAbove    = 2.1
	sensorOpenDamper  = 3.1
	sensorThreshStep  = 2.0
	sensorThreshFloor = 1.0
)

// TemperatureSensor checks that the mixed-air reading falls between outdoor
// and return air and tracks outdoor air when the damper is fully open
type TemperatureSensor struct {
	cfg      Config
	profiles []profile
	buf      buffer

	openSince time.Time
	openDiffs []float64

	verdict econ.Verdict
}

func NewTemperatureSensor(cfg Config) *TemperatureSensor {
	return &TemperatureSensor{
		cfg:      cfg,
		profiles: profiles(cfg.Sensitivities, cfg.TempDifferenceThreshold, sensorThreshStep, sensorThreshFloor),
	}
}

func (*TemperatureSensor) Name() string {
	return econ.TemperatureSensorDx
}

// Check accumulates r and returns a verdict. A healthy verdict holds until
// the next conclusion; a fault is returned once and must be proven again.
func (d *TemperatureSensor) Check(r econ.Reading) (econ.Verdict, econ.Result) {
	res := econ.Result{Diagnostic: d.Name(), Timestamp: r.Timestamp}

	if findings, ok := d.checkOpenDamper(r); ok {
		res.Findings = findings
		return d.conclude(findings), res
	}

	d.buf.add(r)
	if !d.buf.ready(d.cfg.DataWindow, d.cfg.MinSamples) {
		return d.verdict, res
	}

	below := d.buf.mean(func(r econ.Reading) float64 { return math.Min(r.OAT, r.RAT) - r.MAT })
	above := d.buf.mean(func(r econ.Reading) float64 { return r.MAT - math.Max(r.OAT, r.RAT) })
	d.buf.reset()

	for _, p := range d.profiles {
		switch {
		case below > p.threshold:
			res.Findings = append(res.Findings, finding(p.name, sensorMATBelow,
				"Mixed-air temperature is less than outdoor and return-air temperatures"))
		case above > p.threshold:
			res.Findings = append(res.Findings, finding(p.name, sensorMATAbove,
				"Mixed-air temperature is greater than outdoor and return-air temperatures"))
		default:
			res.Findings = append(res.Findings, finding(p.name, sensorOK,
				"No temperature sensor problems detected"))
		}
	}

	return d.conclude(res.Findings), res
}

// checkOpenDamper concludes once the damper has been held fully open for
// OpenDamperTime. Mixed air should then track outdoor air.
func (d *TemperatureSensor) checkOpenDamper(r econ.Reading) ([]econ.Finding, bool) {
	if r.OAD <= d.cfg.TempDamperThreshold {
		d.openSince = time.Time{}
		d.openDiffs = d.openDiffs[:0]
		return nil, false
	}

	if d.openSince.IsZero() {
		d.openSince = r.Timestamp
	}
	d.openDiffs = append(d.openDiffs, math.Abs(r.OAT-r.MAT))
	if r.Timestamp.Sub(d.openSince) < d.cfg.OpenDamperTime {
		return nil, false
	}

	var sum float64
	for _, v := range d.openDiffs {
		sum += v
	}
	avg := sum / float64(len(d.openDiffs))
	d.openSince = time.Time{}
	d.openDiffs = d.openDiffs[:0]

	faulted := false
	findings := make([]econ.Finding, 0, len(d.profiles))
	for _, p := range d.profiles {
		if avg > p.threshold {
			faulted = true
			findings = append(findings, finding(p.name, sensorOpenDamper,
				"Outdoor-air and mixed-air temperatures disagree while the damper is fully open"))
		} else {
			findings = append(findings, finding(p.name, sensorOK, "No temperature sensor problems detected"))
		}
	}

	// A consistent open-damper period is not a full window; only faults conclude early.
	return findings, faulted
}

func (d *TemperatureSensor) conclude(findings []econ.Finding) econ.Verdict {
	if decisive(findings).Code != sensorOK {
		d.verdict = econ.VerdictUnknown
		return econ.VerdictFaulted
	}
	d.verdict = econ.VerdictHealthy

	return d.verdict
}

// decisive picks the normal-sensitivity finding, or the first one
func decisive(findings []econ.Finding) econ.Finding {
	if len(findings) == 0 {
		return econ.Finding{}
	}
	for _, f := range findings {
		if f.Sensitivity == Normal {
			return f
		}
	}

	return findings[0]
}

func (d *TemperatureSensor) ClearData() {
	d.buf.reset()
	d.openSince = time.Time{}
	d.openDiffs = d.openDiffs[:0]
	d.verdict = econ.VerdictUnknown
}
