package diagnostics

import "codeberg.org/mutker/econrcx/internal/econ"

const (
	econOnOK          = 10.0
	econOnDamperShut  = 11.1
	econOnLowOAF      = 12.1
	econOnDamperStep  = 10.0
	econOnOAFStep     = 10.0
	econOnDamperFloor = 50.0
	fullOAFPercent    = 100.0
)

// EconCorrectlyOn verifies the unit economizes when cooling is called for and
// outdoor conditions favor it
type EconCorrectlyOn struct {
	cfg     Config
	dampers []profile
	buf     buffer
}

func NewEconCorrectlyOn(cfg Config) *EconCorrectlyOn {
	return &EconCorrectlyOn{
		cfg:     cfg,
		dampers: profiles(cfg.Sensitivities, cfg.OpenDamperThreshold, -econOnDamperStep, econOnDamperFloor),
	}
}

func (*EconCorrectlyOn) Name() string {
	return econ.EconCorrectlyOnDx
}

func (d *EconCorrectlyOn) Run(r econ.Reading) econ.Result {
	res := econ.Result{Diagnostic: d.Name(), Timestamp: r.Timestamp}
	if !r.CoolCall || !r.EconCondition {
		return res
	}

	d.buf.add(r)
	if !d.buf.ready(d.cfg.DataWindow, d.cfg.MinSamples) {
		return res
	}

	oad := d.buf.mean(func(r econ.Reading) float64 { return r.OAD })
	oaf := d.buf.mean(outdoorAirFraction) * fullOAFPercent
	fan := d.buf.mean(fanFraction)
	deltaT := d.buf.mean(func(r econ.Reading) float64 { return r.RAT - r.OAT })
	d.buf.reset()

	energy := energyImpact(d.cfg, fan, deltaT, (fullOAFPercent-oaf)/fullOAFPercent)
	for _, p := range d.dampers {
		oafLimit := p.threshold - econOnOAFStep
		var f econ.Finding
		switch {
		case oad < p.threshold:
			f = finding(p.name, econOnDamperShut, "The outdoor-air damper should be fully open while economizing")
			f.EnergyImpact = energy
		case oaf < oafLimit:
			f = finding(p.name, econOnLowOAF, "Insufficient outdoor air is being provided while economizing")
			f.EnergyImpact = energy
		default:
			f = finding(p.name, econOnOK, "Economizer is functioning as expected")
		}
		res.Findings = append(res.Findings, f)
	}

	return res
}

func (d *EconCorrectlyOn) ClearData() {
	d.buf.reset()
}
