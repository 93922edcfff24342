package diagnostics

import (
	"math"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
)

// btuFactor converts cfm and °F into BTU/h for standard air
const btuFactor = 1.08

// buffer accumulates readings until a full data window is available
type buffer struct {
	readings []econ.Reading
}

func (b *buffer) add(r econ.Reading) {
	b.readings = append(b.readings, r)
}

// ready reports whether the buffer spans window with at least minSamples
func (b *buffer) ready(window time.Duration, minSamples int) bool {
	n := len(b.readings)
	if n == 0 || n < minSamples {
		return false
	}

	return b.readings[n-1].Timestamp.Sub(b.readings[0].Timestamp) >= window
}

func (b *buffer) reset() {
	b.readings = b.readings[:0]
}

func (b *buffer) mean(field func(econ.Reading) float64) float64 {
	if len(b.readings) == 0 {
		return 0
	}

	var sum float64
	for _, r := range b.readings {
		sum += field(r)
	}

	return sum / float64(len(b.readings))
}

// outdoorAirFraction estimates the share of outdoor air in the mixed air
// stream, clamped to [0, 1]
func outdoorAirFraction(r econ.Reading) float64 {
	spread := r.OAT - r.RAT
	if math.Abs(spread) < 1e-6 {
		return 0
	}

	return math.Max(0, math.Min(1, (r.MAT-r.RAT)/spread))
}

func fanFraction(r econ.Reading) float64 {
	if !r.HasFanSpeed {
		return 1
	}

	return r.FanSpeed / 100
}

// energyImpact estimates the cooling penalty in kW of moving oafDelta of the
// rated airflow across deltaT
func energyImpact(cfg Config, fan, deltaT, oafDelta float64) float64 {
	if cfg.EER <= 0 {
		return 0
	}

	impact := btuFactor * cfg.RatedCFM * fan * math.Abs(deltaT) * math.Abs(oafDelta) / (1000 * cfg.EER)

	return math.Round(impact*100) / 100
}

func finding(sensitivity string, code float64, msg string) econ.Finding {
	return econ.Finding{Sensitivity: sensitivity, Code: code, Message: msg}
}
