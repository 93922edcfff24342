package econ

import (
	"time"

	"github.com/google/uuid"
)

type RecordKind string

const (
	RecordResult       RecordKind = "result"
	RecordPrecondition RecordKind = "precondition"
)

// Record is one outbound diagnostic message for a sensitivity profile
type Record struct {
	ID           string     `json:"id"`
	Kind         RecordKind `json:"kind"`
	AnalysisName string     `json:"analysis_name"`
	Timestamp    time.Time  `json:"timestamp"`
	Diagnostic   string     `json:"diagnostic"`
	Sensitivity  string     `json:"sensitivity"`
	Code         *float64   `json:"code,omitempty"`
	EnergyImpact *float64   `json:"energy_impact,omitempty"`
	Message      string     `json:"message"`
}

// IDFunc generates record identifiers
type IDFunc func() string

func defaultID() string {
	return uuid.NewString()
}

// reporter turns precondition failures and diagnostic results into records
type reporter struct {
	analysis      string
	sensitivities []string
	newID         IDFunc
}

// preconditions builds one record per sensitivity per diagnostic identifier
// carrying the same reason.
func (r *reporter) preconditions(reason string, ts time.Time) []Record {
	records := make([]Record, 0, len(r.sensitivities)*len(DiagnosticNames))
	for _, diagnostic := range DiagnosticNames {
		for _, sensitivity := range r.sensitivities {
			records = append(records, Record{
				ID:           r.newID(),
				Kind:         RecordPrecondition,
				AnalysisName: r.analysis,
				Timestamp:    ts,
				Diagnostic:   diagnostic,
				Sensitivity:  sensitivity,
				Message:      reason,
			})
		}
	}

	return records
}

func (r *reporter) results(res Result) []Record {
	if !res.Conclusive() {
		return nil
	}

	records := make([]Record, 0, len(res.Findings))
	for _, f := range res.Findings {
		code, energy := f.Code, f.EnergyImpact
		records = append(records, Record{
			ID:           r.newID(),
			Kind:         RecordResult,
			AnalysisName: r.analysis,
			Timestamp:    res.Timestamp,
			Diagnostic:   res.Diagnostic,
			Sensitivity:  f.Sensitivity,
			Code:         &code,
			EnergyImpact: &energy,
			Message:      f.Message,
		})
	}

	return records
}
