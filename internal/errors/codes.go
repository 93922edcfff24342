package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig       ErrorCode = "invalid_configuration"
	ErrMissingConfig       ErrorCode = "missing_configuration"
	ErrBindFlags           ErrorCode = "bind_flags_failed"
	ErrReadConfig          ErrorCode = "read_config_failed"
	ErrInvalidDeviceType   ErrorCode = "invalid_device_type"
	ErrInvalidEconomizer   ErrorCode = "invalid_economizer_type"
	ErrMissingFanPoint     ErrorCode = "missing_fan_point"
	ErrInvalidSensitivity  ErrorCode = "invalid_sensitivity"
	ErrInvalidDataWindow   ErrorCode = "invalid_data_window"
	ErrInvalidOutputTarget ErrorCode = "invalid_output_target"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Application errors
	ErrInitApp       ErrorCode = "init_app_failed"
	ErrMainLoop      ErrorCode = "main_loop_failed"
	ErrCycleFailed   ErrorCode = "cycle_failed"
	ErrPublishRecord ErrorCode = "publish_record_failed"

	// Transport errors
	ErrBrokerConnect ErrorCode = "bus_connect_failed"
	ErrSubscribe     ErrorCode = "bus_subscribe_failed"
	ErrDecodeBatch   ErrorCode = "bus_decode_failed"

	// Storage errors
	ErrTelemetryInit  ErrorCode = "telemetry_init_failed"
	ErrTelemetryWrite ErrorCode = "telemetry_write_failed"
	ErrPIDFile        ErrorCode = "pid_file_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:            "Internal error occurred",
	ErrInvalidArgument:     "Invalid argument provided",
	ErrAlreadyRunning:      "Another instance is already running",
	ErrInvalidConfig:       "Invalid configuration",
	ErrMissingConfig:       "Missing configuration",
	ErrBindFlags:           "Failed to bind flags",
	ErrReadConfig:          "Failed to read configuration",
	ErrInvalidDeviceType:   `device_type must be "AHU" or "RTU"`,
	ErrInvalidEconomizer:   `economizer_type must be "DDB" or "HL"`,
	ErrMissingFanPoint:     "supply_fan_status or supply_fan_speed is required to verify unit status",
	ErrInvalidSensitivity:  "At least one sensitivity profile is required",
	ErrInvalidDataWindow:   "data_window must be positive",
	ErrInvalidOutputTarget: "Unknown output sink",
	ErrInvalidLogLevel:     "Invalid log level",
	ErrInitFailed:          "Initialization failed",
	ErrShutdownFailed:      "Shutdown failed",
	ErrInitApp:             "Failed to initialize application",
	ErrMainLoop:            "Error in main loop",
	ErrCycleFailed:         "Failed to process reading batch",
	ErrPublishRecord:       "Failed to publish diagnostic record",
	ErrBrokerConnect:       "Failed to connect to MQTT broker",
	ErrSubscribe:           "Failed to subscribe to device topic",
	ErrDecodeBatch:         "Failed to decode device batch",
	ErrTelemetryInit:       "Failed to initialize telemetry store",
	ErrTelemetryWrite:      "Failed to write telemetry",
	ErrPIDFile:             "Failed to manage PID file",
	ErrOperationFailed:     "Operation failed",
	ErrTimeout:             "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
