package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/econrcx/internal/diagnostics"
	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	AnalysisName string          `mapstructure:"analysis_name"`
	LogLevel     string          `mapstructure:"log_level"`
	Debug        bool            `mapstructure:"debug"`
	Verbose      bool            `mapstructure:"verbose"`
	Device       DeviceConfig    `mapstructure:"device"`
	Arguments    Arguments       `mapstructure:"arguments"`
	Broker       BrokerConfig    `mapstructure:"broker"`
	Output       OutputConfig    `mapstructure:"output"`
	Telemetry    TelemetryConfig `mapstructure:"telemetry"`
}

type DeviceConfig struct {
	Campus   string       `mapstructure:"campus"`
	Building string       `mapstructure:"building"`
	Units    []UnitConfig `mapstructure:"units"`
}

// UnitConfig is one [[device.units]] entry. The name is a value rather than
// a table key so it keeps its case in topics.
type UnitConfig struct {
	Name       string   `mapstructure:"name"`
	Subdevices []string `mapstructure:"subdevices"`
}

// Arguments holds the diagnostic thresholds. Durations are in minutes.
type Arguments struct {
	EconHLTemp                  float64           `mapstructure:"econ_hl_temp"`
	ConstantVolume              bool              `mapstructure:"constant_volume"`
	TempBand                    float64           `mapstructure:"temp_band"`
	OAFTemperatureThreshold     float64           `mapstructure:"oaf_temperature_threshold"`
	OAFEconomizingThreshold     float64           `mapstructure:"oaf_economizing_threshold"`
	CoolingEnabledThreshold     float64           `mapstructure:"cooling_enabled_threshold"`
	TempDifferenceThreshold     float64           `mapstructure:"temp_difference_threshold"`
	MATLowThreshold             float64           `mapstructure:"mat_low_threshold"`
	MATHighThreshold            float64           `mapstructure:"mat_high_threshold"`
	RATLowThreshold             float64           `mapstructure:"rat_low_threshold"`
	RATHighThreshold            float64           `mapstructure:"rat_high_threshold"`
	OATLowThreshold             float64           `mapstructure:"oat_low_threshold"`
	OATHighThreshold            float64           `mapstructure:"oat_high_threshold"`
	OATMATCheck                 float64           `mapstructure:"oat_mat_check"`
	OpenDamperThreshold         float64           `mapstructure:"open_damper_threshold"`
	MinimumDamperSetpoint       float64           `mapstructure:"minimum_damper_setpoint"`
	DesiredOAF                  float64           `mapstructure:"desired_oaf"`
	LowSupplyFanThreshold       float64           `mapstructure:"low_supply_fan_threshold"`
	ExcessDamperThreshold       float64           `mapstructure:"excess_damper_threshold"`
	ExcessOAFThreshold          float64           `mapstructure:"excess_oaf_threshold"`
	VentilationOAFThreshold     float64           `mapstructure:"ventilation_oaf_threshold"`
	InsufficientDamperThreshold float64           `mapstructure:"insufficient_damper_threshold"`
	TempDamperThreshold         float64           `mapstructure:"temp_damper_threshold"`
	RatedCFM                    float64           `mapstructure:"rated_cfm"`
	EER                         float64           `mapstructure:"eer"`
	TempDeadband                float64           `mapstructure:"temp_deadband"`
	DataWindow                  int               `mapstructure:"data_window"`
	NoRequiredData              int               `mapstructure:"no_required_data"`
	OpenDamperTime              int               `mapstructure:"open_damper_time"`
	DeviceType                  string            `mapstructure:"device_type"`
	EconomizerType              string            `mapstructure:"economizer_type"`
	Sensitivity                 []string          `mapstructure:"sensitivity"`
	CustomThresholds            bool              `mapstructure:"custom_thresholds"`
	PointMapping                map[string]string `mapstructure:"point_mapping"`
}

type BrokerConfig struct {
	URL      string `mapstructure:"url"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	QoS      int    `mapstructure:"qos"`
}

type OutputConfig struct {
	Sinks        []string `mapstructure:"sinks"`
	MQTTTopic    string   `mapstructure:"mqtt_topic"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

type TelemetryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	DBPath        string `mapstructure:"db_path"`
	BatchSize     int    `mapstructure:"batch_size"`
	FlushInterval int    `mapstructure:"flush_interval"`
}

// Load reads the configuration from defaults, the config file, the
// environment and command line flags, in increasing precedence, then
// validates it
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: defaultEnvPrefix, args: os.Args[1:]}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	// Define flags
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	configFlag := fs.String("config", "", "Path to the configuration file")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("broker", DefaultBrokerURL, "MQTT broker URL")
	if err := fs.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"debug":      "debug",
		"verbose":    "verbose",
		"log_level":  "log-level",
		"broker.url": "broker",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load configuration from file
	path := o.configPath
	if *configFlag != "" {
		path = *configFlag
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/econrcx")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and normalizes thresholds. Invalid
// device or economizer types and a missing fan point are fatal.
func (c *Config) Validate() error {
	errFactory := errors.New()
	a := &c.Arguments

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	a.DeviceType = strings.ToLower(strings.TrimSpace(a.DeviceType))
	if a.DeviceType != string(econ.DeviceAHU) && a.DeviceType != string(econ.DeviceRTU) {
		return errFactory.WithData(errors.ErrInvalidDeviceType, a.DeviceType)
	}

	a.EconomizerType = strings.ToLower(strings.TrimSpace(a.EconomizerType))
	if a.EconomizerType != string(econ.EconomizerDDB) && a.EconomizerType != string(econ.EconomizerHL) {
		return errFactory.WithData(errors.ErrInvalidEconomizer, a.EconomizerType)
	}

	if err := c.validateUnits(); err != nil {
		return err
	}

	mapping, err := c.points()
	if err != nil {
		return err
	}
	if mapping[econ.FanStatus] == "" && mapping[econ.FanSpeed] == "" {
		return errFactory.New(errors.ErrMissingFanPoint)
	}

	if len(a.Sensitivity) == 0 {
		return errFactory.New(errors.ErrInvalidSensitivity)
	}
	if a.DataWindow <= 0 {
		return errFactory.WithData(errors.ErrInvalidDataWindow, a.DataWindow)
	}

	for _, sink := range c.Output.Sinks {
		switch sink {
		case SinkLog, SinkMQTT:
		case SinkKafka:
			if len(c.Output.KafkaBrokers) == 0 || c.Output.KafkaTopic == "" {
				return errFactory.WithData(errors.ErrInvalidOutputTarget, "kafka sink needs kafka_brokers and kafka_topic")
			}
		default:
			return errFactory.WithData(errors.ErrInvalidOutputTarget, sink)
		}
	}

	c.normalizeThresholds()

	return nil
}

func (c *Config) normalizeThresholds() {
	a := &c.Arguments
	custom := a.CustomThresholds

	a.OAFTemperatureThreshold = oafTemperatureLimit.apply(a.OAFTemperatureThreshold, custom)
	a.CoolingEnabledThreshold = coolingEnabledLimit.apply(a.CoolingEnabledThreshold, custom)
	a.TempDifferenceThreshold = tempDifferenceLimit.apply(a.TempDifferenceThreshold, custom)
	a.MATLowThreshold = matLowLimit.apply(a.MATLowThreshold, custom)
	a.MATHighThreshold = matHighLimit.apply(a.MATHighThreshold, custom)
	a.RATLowThreshold = ratLowLimit.apply(a.RATLowThreshold, custom)
	a.RATHighThreshold = ratHighLimit.apply(a.RATHighThreshold, custom)
	a.OATLowThreshold = oatLowLimit.apply(a.OATLowThreshold, custom)
	a.OATHighThreshold = oatHighLimit.apply(a.OATHighThreshold, custom)
	a.OpenDamperThreshold = openDamperLimit.apply(a.OpenDamperThreshold, custom)
	a.MinimumDamperSetpoint = minimumDamperLimit.apply(a.MinimumDamperSetpoint, custom)
	a.DesiredOAF = desiredOAFLimit.apply(a.DesiredOAF, custom)

	if a.EconomizerType == string(econ.EconomizerHL) {
		a.EconHLTemp = econHighLimitTemp.apply(a.EconHLTemp, true)
	} else {
		a.EconHLTemp = 0
	}
	a.TempBand = tempBandLimit.apply(a.TempBand, true)
}

func (c *Config) points() (econ.PointMapping, error) {
	mapping := make(econ.PointMapping, len(c.Arguments.PointMapping))
	for key, point := range c.Arguments.PointMapping {
		s, ok := econ.ParseSignal(key)
		if !ok {
			return nil, errors.New().WithData(errors.ErrInvalidConfig, fmt.Sprintf("unknown point_mapping key %q", key))
		}
		mapping[s] = point
	}

	return mapping, nil
}

// Settings converts the validated configuration into the monitor settings
func (c *Config) Settings() econ.Settings {
	a := c.Arguments
	mapping, _ := c.points()

	return econ.Settings{
		AnalysisName:            c.AnalysisName,
		DeviceType:              econ.DeviceType(a.DeviceType),
		EconomizerType:          econ.EconomizerType(a.EconomizerType),
		Sensitivities:           append([]string(nil), a.Sensitivity...),
		Points:                  mapping,
		DataWindow:              minutes(a.DataWindow),
		ConstantVolume:          a.ConstantVolume,
		LowSupplyFanThreshold:   a.LowSupplyFanThreshold,
		OAFTemperatureThreshold: a.OAFTemperatureThreshold,
		CoolingEnabledThreshold: a.CoolingEnabledThreshold,
		TempBand:                a.TempBand,
		EconHighLimitTemp:       a.EconHLTemp,
		OATLimits:               econ.Bounds{Low: a.OATLowThreshold, High: a.OATHighThreshold},
		MATLimits:               econ.Bounds{Low: a.MATLowThreshold, High: a.MATHighThreshold},
		RATLimits:               econ.Bounds{Low: a.RATLowThreshold, High: a.RATHighThreshold},
	}
}

// Diagnostics converts the validated configuration into diagnostic thresholds
func (c *Config) Diagnostics() diagnostics.Config {
	a := c.Arguments

	return diagnostics.Config{
		AnalysisName:                c.AnalysisName,
		Sensitivities:               append([]string(nil), a.Sensitivity...),
		DataWindow:                  minutes(a.DataWindow),
		MinSamples:                  a.NoRequiredData,
		TempDifferenceThreshold:     a.TempDifferenceThreshold,
		OpenDamperTime:              minutes(a.OpenDamperTime),
		TempDamperThreshold:         a.TempDamperThreshold,
		OpenDamperThreshold:         a.OpenDamperThreshold,
		MinimumDamperSetpoint:       a.MinimumDamperSetpoint,
		DesiredOAF:                  a.DesiredOAF,
		ExcessDamperThreshold:       a.ExcessDamperThreshold,
		ExcessOAFThreshold:          a.ExcessOAFThreshold,
		InsufficientDamperThreshold: a.InsufficientDamperThreshold,
		VentilationOAFThreshold:     a.VentilationOAFThreshold,
		RatedCFM:                    a.RatedCFM,
		EER:                         a.EER,
	}
}

// Topics returns the device topics to subscribe to, in configuration order
func (c *Config) Topics() []string {
	var topics []string
	for _, u := range c.Device.Units {
		topics = append(topics, deviceTopic(c.Device.Campus, c.Device.Building, u.Name, ""))
		for _, sd := range u.Subdevices {
			topics = append(topics, deviceTopic(c.Device.Campus, c.Device.Building, u.Name, sd))
		}
	}

	return topics
}

func (c *Config) validateUnits() error {
	seen := make(map[string]bool, len(c.Device.Units))
	for i, u := range c.Device.Units {
		name := strings.TrimSpace(u.Name)
		if name == "" {
			return errors.New().WithData(errors.ErrInvalidConfig, fmt.Sprintf("device.units[%d] has no name", i))
		}
		if seen[name] {
			return errors.New().WithData(errors.ErrInvalidConfig, fmt.Sprintf("unit %q configured twice", name))
		}
		seen[name] = true
		c.Device.Units[i].Name = name
	}

	return nil
}

func deviceTopic(campus, building, unit, path string) string {
	parts := []string{"devices"}
	for _, p := range []string{campus, building, unit, path} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(append(parts, "all"), "/")
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
