package diagnostics

import "time"

// Config carries the thresholds handed to the diagnostics at startup
type Config struct {
	AnalysisName  string
	Sensitivities []string
	DataWindow    time.Duration
	MinSamples    int

	TempDifferenceThreshold float64
	OpenDamperTime          time.Duration
	TempDamperThreshold     float64

	OpenDamperThreshold         float64
	MinimumDamperSetpoint       float64
	DesiredOAF                  float64
	ExcessDamperThreshold       float64
	ExcessOAFThreshold          float64
	InsufficientDamperThreshold float64
	VentilationOAFThreshold     float64

	RatedCFM float64
	EER      float64
}

// DefaultConfig mirrors the stock agent arguments
func DefaultConfig() Config {
	return Config{
		AnalysisName:                "analysis_name",
		Sensitivities:               []string{Low, Normal, High},
		DataWindow:                  30 * time.Minute,
		MinSamples:                  15,
		TempDifferenceThreshold:     4,
		OpenDamperTime:              5 * time.Minute,
		TempDamperThreshold:         90,
		OpenDamperThreshold:         80,
		MinimumDamperSetpoint:       20,
		DesiredOAF:                  10,
		ExcessDamperThreshold:       20,
		ExcessOAFThreshold:          20,
		InsufficientDamperThreshold: 15,
		VentilationOAFThreshold:     5,
		RatedCFM:                    6000,
		EER:                         10,
	}
}

// Sensitivity profile names with built-in threshold scaling
const (
	Low    = "low"
	Normal = "normal"
	High   = "high"
)

type profile struct {
	name      string
	threshold float64
}

// profiles derives one threshold per sensitivity. Low sensitivity tolerates
// step more, high sensitivity step less (never under floor). Any other
// profile name uses base unchanged.
func profiles(sensitivities []string, base, step, floor float64) []profile {
	out := make([]profile, 0, len(sensitivities))
	for _, name := range sensitivities {
		threshold := base
		switch name {
		case Low:
			threshold = base + step
		case High:
			threshold = max(base-step, floor)
		}
		out = append(out, profile{name: name, threshold: threshold})
	}

	return out
}
