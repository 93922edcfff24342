package econ

import "time"

// Reading is the per-cycle derived view handed to every diagnostic
type Reading struct {
	Timestamp     time.Time
	OAT           float64
	RAT           float64
	MAT           float64
	OAD           float64
	FanStatus     int
	FanSpeed      float64
	HasFanSpeed   bool
	CoolCall      bool
	EconCondition bool
}

// Finding is one conclusion of a diagnostic for a single sensitivity profile
type Finding struct {
	Sensitivity  string
	Code         float64
	Message      string
	EnergyImpact float64
}

// Result is what a diagnostic returns for one cycle. Results without
// findings mean the diagnostic is still accumulating samples.
type Result struct {
	Diagnostic string
	Timestamp  time.Time
	Findings   []Finding
}

// Conclusive reports whether the diagnostic reached a conclusion
func (r Result) Conclusive() bool {
	return len(r.Findings) > 0
}

// Verdict is the temperature-sensor diagnostic's tri-state outcome
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictHealthy
	VerdictFaulted
)

func (v Verdict) String() string {
	switch v {
	case VerdictHealthy:
		return "healthy"
	case VerdictFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Diagnostic is the contract shared by the rule engines fed after the
// temperature-sensor check passes
type Diagnostic interface {
	Name() string
	Run(r Reading) Result
	ClearData()
}

// SensorDiagnostic checks temperature sensor consistency and decides whether
// the remaining diagnostics may run
type SensorDiagnostic interface {
	Name() string
	Check(r Reading) (Verdict, Result)
	ClearData()
}
