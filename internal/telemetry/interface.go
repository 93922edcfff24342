package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
)

// Collector stores per-cycle snapshots
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is what one cycle saw and where it stopped. Reading values are
// nil when the cycle stopped before the reading was derived.
type Snapshot struct {
	Timestamp time.Time
	Topic     string
	Stage     econ.Stage
	Verdict   econ.Verdict
	Records   int
	OAT       *float64
	RAT       *float64
	MAT       *float64
	OAD       *float64
	FanSpeed  *float64
}

// FromOutcome builds the snapshot for a processed batch
func FromOutcome(topic string, out econ.Outcome) *Snapshot {
	s := &Snapshot{
		Timestamp: out.Timestamp,
		Topic:     topic,
		Stage:     out.Stage,
		Verdict:   out.Verdict,
		Records:   len(out.Records),
	}
	if r := out.Reading; r != nil {
		oat, rat, mat, oad, fan := r.OAT, r.RAT, r.MAT, r.OAD, r.FanSpeed
		s.OAT, s.RAT, s.MAT, s.OAD = &oat, &rat, &mat, &oad
		if r.HasFanSpeed {
			s.FanSpeed = &fan
		}
	}

	return s
}
