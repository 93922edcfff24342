package econ

import "time"

type DeviceType string

const (
	DeviceAHU DeviceType = "ahu"
	DeviceRTU DeviceType = "rtu"
)

type EconomizerType string

const (
	EconomizerDDB EconomizerType = "ddb"
	EconomizerHL  EconomizerType = "hl"
)

// Diagnostic identifiers, in the order records are emitted
const (
	TemperatureSensorDx      = "Temperature Sensor Dx"
	EconCorrectlyOnDx        = "Economizing When Unit Should Dx"
	EconCorrectlyOffDx       = "Economizing When Unit Should Not Dx"
	ExcessOutsideAirDx       = "Excess Outdoor-air Intake Dx"
	InsufficientOutsideAirDx = "Insufficient Outdoor-air Intake Dx"
)

// DiagnosticNames lists every diagnostic that receives a record when
// preconditions are not met
var DiagnosticNames = []string{
	TemperatureSensorDx,
	EconCorrectlyOnDx,
	EconCorrectlyOffDx,
	ExcessOutsideAirDx,
	InsufficientOutsideAirDx,
}

// Precondition reasons
const (
	ReasonFanOff        = "Supply fan is off"
	ReasonTempSpread    = "Outdoor and return air temperatures are too close"
	ReasonOATLimit      = "Outdoor-air temperature is outside high/low operating limits"
	ReasonMATLimit      = "Mixed-air temperature is outside high/low operating limits"
	ReasonRATLimit      = "Return-air temperature is outside high/low operating limits"
	ReasonSensorProblem = "Temperature sensor problem detected"
)

// Bounds is an inclusive operating range
type Bounds struct {
	Low  float64
	High float64
}

// Contains reports whether v lies within the range
func (b Bounds) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Settings is the validated, read-only threshold bundle shared by every cycle
type Settings struct {
	AnalysisName   string
	DeviceType     DeviceType
	EconomizerType EconomizerType
	Sensitivities  []string
	Points         PointMapping

	DataWindow     time.Duration
	ConstantVolume bool

	LowSupplyFanThreshold   float64
	OAFTemperatureThreshold float64
	CoolingEnabledThreshold float64
	TempBand                float64
	EconHighLimitTemp       float64

	OATLimits Bounds
	MATLimits Bounds
	RATLimits Bounds
}
