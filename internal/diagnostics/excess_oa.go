package diagnostics

import "codeberg.org/mutker/econrcx/internal/econ"

const (
	excessOK         = 30.0
	excessDamper     = 32.1
	excessOAF        = 33.1
	excessBoth       = 34.1
	excessStep       = 5.0
	excessPadFloor   = 0.0
	excessOAFStepPct = 5.0
)

// ExcessOutsideAir flags more outdoor air than ventilation requires while the
// unit is not economizing
type ExcessOutsideAir struct {
	cfg     Config
	dampers []profile
	oafs    []profile
	buf     buffer
}

func NewExcessOutsideAir(cfg Config) *ExcessOutsideAir {
	return &ExcessOutsideAir{
		cfg:     cfg,
		dampers: profiles(cfg.Sensitivities, cfg.ExcessDamperThreshold, excessStep, excessPadFloor),
		oafs:    profiles(cfg.Sensitivities, cfg.ExcessOAFThreshold, excessOAFStepPct, excessPadFloor),
	}
}

func (*ExcessOutsideAir) Name() string {
	return econ.ExcessOutsideAirDx
}

func (d *ExcessOutsideAir) Run(r econ.Reading) econ.Result {
	res := econ.Result{Diagnostic: d.Name(), Timestamp: r.Timestamp}
	if r.EconCondition {
		return res
	}

	d.buf.add(r)
	if !d.buf.ready(d.cfg.DataWindow, d.cfg.MinSamples) {
		return res
	}

	oad := d.buf.mean(func(r econ.Reading) float64 { return r.OAD })
	oaf := d.buf.mean(outdoorAirFraction) * fullOAFPercent
	fan := d.buf.mean(fanFraction)
	deltaT := d.buf.mean(func(r econ.Reading) float64 { return r.OAT - r.RAT })
	d.buf.reset()

	energy := energyImpact(d.cfg, fan, deltaT, (oaf-d.cfg.DesiredOAF)/fullOAFPercent)
	for i, p := range d.dampers {
		damperHigh := oad-d.cfg.MinimumDamperSetpoint > p.threshold
		oafHigh := oaf-d.cfg.DesiredOAF > d.oafs[i].threshold

		var f econ.Finding
		switch {
		case damperHigh && oafHigh:
			f = finding(p.name, excessBoth, "The damper is above its minimum position and excess outdoor air is being provided")
			f.EnergyImpact = energy
		case damperHigh:
			f = finding(p.name, excessDamper, "The outdoor-air damper is significantly above its minimum position")
		case oafHigh:
			f = finding(p.name, excessOAF, "Excess outdoor air is being provided")
			f.EnergyImpact = energy
		default:
			f = finding(p.name, excessOK, "The outdoor-air intake is within the expected range")
		}
		res.Findings = append(res.Findings, f)
	}

	return res
}

func (d *ExcessOutsideAir) ClearData() {
	d.buf.reset()
}
