package econ

import (
	"strings"
	"time"
)

// Signal identifies one logical sensor signal collected per cycle
type Signal int

const (
	FanStatus Signal = iota
	DamperSignal
	OutdoorAirTemp
	MixedAirTemp
	ReturnAirTemp
	CoolCall
	FanSpeed
)

// classifyOrder is the precedence used when two signals share a point name
var classifyOrder = []Signal{FanStatus, DamperSignal, OutdoorAirTemp, MixedAirTemp, ReturnAirTemp, CoolCall, FanSpeed}

var signalNames = map[Signal]string{
	FanStatus:      "supply_fan_status",
	DamperSignal:   "outdoor_damper_signal",
	OutdoorAirTemp: "outdoor_air_temperature",
	MixedAirTemp:   "mixed_air_temperature",
	ReturnAirTemp:  "return_air_temperature",
	CoolCall:       "cool_call",
	FanSpeed:       "supply_fan_speed",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}

	return "unknown_signal"
}

// ParseSignal resolves a point_mapping key onto its Signal
func ParseSignal(name string) (Signal, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range signalNames {
		if n == name {
			return s, true
		}
	}

	return 0, false
}

// PointMapping maps each logical signal onto the point name published by the device
type PointMapping map[Signal]string

// PointName returns the configured point name for s, or the signal name when unmapped
func (m PointMapping) PointName(s Signal) string {
	if name := m[s]; name != "" {
		return name
	}

	return s.String()
}

// Batch is one inbound set of simultaneous point values. A nil value means the
// device published the point without a reading.
type Batch struct {
	Topic     string
	Timestamp time.Time
	Values    map[string]*float64
}
