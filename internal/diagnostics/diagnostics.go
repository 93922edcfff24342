// Package diagnostics holds the rule engines fed by the economizer monitor.
// Each one buffers readings for a data window, concludes once per window with
// a finding per sensitivity profile, and starts over.
package diagnostics

import "codeberg.org/mutker/econrcx/internal/econ"

// Downstream builds the four diagnostics that depend on healthy sensors, in
// record order
func Downstream(cfg Config) []econ.Diagnostic {
	return []econ.Diagnostic{
		NewEconCorrectlyOn(cfg),
		NewEconCorrectlyOff(cfg),
		NewExcessOutsideAir(cfg),
		NewInsufficientOutsideAir(cfg),
	}
}
