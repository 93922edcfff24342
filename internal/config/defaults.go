package config

import "github.com/spf13/viper"

const (
	DefaultAnalysisName  = "analysis_name"
	DefaultLogLevel      = "info"
	DefaultBrokerURL     = "tcp://localhost:1883"
	DefaultClientID      = "econrcx"
	DefaultTelemetryPath = "/var/lib/econrcx/telemetry.db"
	configName           = "econrcx"
	defaultEnvPrefix     = "ECONRCX"
)

var defaults = map[string]any{
	"analysis_name": DefaultAnalysisName,
	"log_level":     DefaultLogLevel,

	"arguments.econ_hl_temp":                  65.0,
	"arguments.constant_volume":               false,
	"arguments.temp_band":                     1.0,
	"arguments.oaf_temperature_threshold":     5.0,
	"arguments.oaf_economizing_threshold":     25.0,
	"arguments.cooling_enabled_threshold":     5.0,
	"arguments.temp_difference_threshold":     4.0,
	"arguments.mat_low_threshold":             50.0,
	"arguments.mat_high_threshold":            90.0,
	"arguments.rat_low_threshold":             50.0,
	"arguments.rat_high_threshold":            90.0,
	"arguments.oat_low_threshold":             30.0,
	"arguments.oat_high_threshold":            110.0,
	"arguments.oat_mat_check":                 5.0,
	"arguments.open_damper_threshold":         80.0,
	"arguments.minimum_damper_setpoint":       20.0,
	"arguments.desired_oaf":                   10.0,
	"arguments.low_supply_fan_threshold":      15.0,
	"arguments.excess_damper_threshold":       20.0,
	"arguments.excess_oaf_threshold":          20.0,
	"arguments.ventilation_oaf_threshold":     5.0,
	"arguments.insufficient_damper_threshold": 15.0,
	"arguments.temp_damper_threshold":         90.0,
	"arguments.rated_cfm":                     6000.0,
	"arguments.eer":                           10.0,
	"arguments.temp_deadband":                 1.0,
	"arguments.data_window":                   30,
	"arguments.no_required_data":              15,
	"arguments.open_damper_time":              5,
	"arguments.device_type":                   "rtu",
	"arguments.economizer_type":               "DDB",
	"arguments.sensitivity":                   []string{"low", "normal", "high"},
	"arguments.custom_thresholds":             false,
	"arguments.point_mapping": map[string]any{
		"supply_fan_status":       "supply_fan_status",
		"outdoor_damper_signal":   "outdoor_damper_signal",
		"outdoor_air_temperature": "outdoor_air_temperature",
		"mixed_air_temperature":   "mixed_air_temperature",
		"return_air_temperature":  "return_air_temperature",
		"cool_call":               "cool_call",
		"supply_fan_speed":        "supply_fan_speed",
	},

	"broker.url":       DefaultBrokerURL,
	"broker.client_id": DefaultClientID,
	"broker.qos":       1,

	"output.sinks":       []string{SinkLog},
	"output.mqtt_topic":  "record/{analysis}",
	"output.kafka_topic": "econrcx.records",

	"telemetry.enabled":        false,
	"telemetry.db_path":        DefaultTelemetryPath,
	"telemetry.batch_size":     20,
	"telemetry.flush_interval": 30,
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// limit is an inclusive clamp range applied to tunable thresholds
type limit struct {
	min, max, fallback float64
}

func (l limit) apply(value float64, custom bool) float64 {
	if !custom {
		return l.fallback
	}

	return max(l.min, min(value, l.max))
}

// Tunable thresholds: custom values are clamped, otherwise the stock value
// is forced.
var (
	oafTemperatureLimit = limit{5, 15, 5}
	coolingEnabledLimit = limit{5, 50, 5}
	tempDifferenceLimit = limit{2, 6, 4}
	matLowLimit         = limit{40, 60, 50}
	matHighLimit        = limit{80, 90, 90}
	ratLowLimit         = limit{40, 60, 50}
	ratHighLimit        = limit{80, 90, 90}
	oatLowLimit         = limit{20, 40, 30}
	oatHighLimit        = limit{90, 125, 110}
	openDamperLimit     = limit{60, 90, 80}
	minimumDamperLimit  = limit{0, 50, 20}
	desiredOAFLimit     = limit{5, 30, 10}
	econHighLimitTemp   = limit{50, 75, 65}
	tempBandLimit       = limit{0.5, 10, 1}
)
