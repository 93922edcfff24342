package diagnostics

import "codeberg.org/mutker/econrcx/internal/econ"

const (
	econOffOK        = 20.0
	econOffOpen      = 21.1
	econOffPadStep   = 5.0
	econOffPadFloor  = 0.0
	econOffPadNormal = 10.0
)

// EconCorrectlyOff verifies the damper sits at its minimum position when
// outdoor conditions do not favor economizing
type EconCorrectlyOff struct {
	cfg  Config
	pads []profile
	buf  buffer
}

func NewEconCorrectlyOff(cfg Config) *EconCorrectlyOff {
	return &EconCorrectlyOff{
		cfg:  cfg,
		pads: profiles(cfg.Sensitivities, econOffPadNormal, econOffPadStep, econOffPadFloor),
	}
}

func (*EconCorrectlyOff) Name() string {
	return econ.EconCorrectlyOffDx
}

func (d *EconCorrectlyOff) Run(r econ.Reading) econ.Result {
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

	for _, p := range d.pads {
		if oad-d.cfg.MinimumDamperSetpoint > p.threshold {
			f := finding(p.name, econOffOpen, "The outdoor-air damper should be at the minimum position but is significantly open")
			f.EnergyImpact = energyImpact(d.cfg, fan, deltaT, (oaf-d.cfg.DesiredOAF)/fullOAFPercent)
			res.Findings = append(res.Findings, f)
			continue
		}
		res.Findings = append(res.Findings, finding(p.name, econOffOK, "The outdoor-air damper is at the minimum position"))
	}

	return res
}

func (d *EconCorrectlyOff) ClearData() {
	d.buf.reset()
}
