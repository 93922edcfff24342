package diagnostics

import "codeberg.org/mutker/econrcx/internal/econ"

const (
	insufficientOK    = 40.0
	insufficientOAF   = 41.1
	insufficientStep  = 2.0
	insufficientFloor = 0.0
)

// InsufficientOutsideAir flags less outdoor air than the ventilation target
type InsufficientOutsideAir struct {
	cfg  Config
	pads []profile
	buf  buffer
}

func NewInsufficientOutsideAir(cfg Config) *InsufficientOutsideAir {
	return &InsufficientOutsideAir{
		cfg:  cfg,
		pads: profiles(cfg.Sensitivities, cfg.VentilationOAFThreshold, insufficientStep, insufficientFloor),
	}
}

func (*InsufficientOutsideAir) Name() string {
	return econ.InsufficientOutsideAirDx
}

func (d *InsufficientOutsideAir) Run(r econ.Reading) econ.Result {
	res := econ.Result{Diagnostic: d.Name(), Timestamp: r.Timestamp}

	d.buf.add(r)
	if !d.buf.ready(d.cfg.DataWindow, d.cfg.MinSamples) {
		return res
	}

	oaf := d.buf.mean(outdoorAirFraction) * fullOAFPercent
	d.buf.reset()

	for _, p := range d.pads {
		if d.cfg.DesiredOAF-oaf > p.threshold {
			res.Findings = append(res.Findings, finding(p.name, insufficientOAF, "Insufficient outdoor air is being provided for ventilation"))
			continue
		}
		res.Findings = append(res.Findings, finding(p.name, insufficientOK, "The outdoor-air intake meets the ventilation target"))
	}

	return res
}

func (d *InsufficientOutsideAir) ClearData() {
	d.buf.reset()
}
