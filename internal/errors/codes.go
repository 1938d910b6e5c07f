package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrTimeout         ErrorCode = "operation_timeout"

	// Configuration errors
	ErrInvalidConfig     ErrorCode = "invalid_configuration"
	ErrReadConfig        ErrorCode = "read_config_failed"
	ErrInvalidInterval   ErrorCode = "invalid_interval"
	ErrInvalidTimeout    ErrorCode = "invalid_command_timeout"
	ErrInvalidBackend    ErrorCode = "invalid_gpu_backend"
	ErrInvalidThresholds ErrorCode = "invalid_thresholds"
	ErrInvalidDutyTable  ErrorCode = "invalid_duty_table"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrOpenLogFile     ErrorCode = "open_log_file_failed"

	// Bootstrap errors
	ErrRootRequired      ErrorCode = "root_privileges_required"
	ErrMissingDependency ErrorCode = "missing_dependency"
	ErrAlreadyRunning    ErrorCode = "already_running"
	ErrInitFailed        ErrorCode = "initialization_failed"
	ErrShutdownFailed    ErrorCode = "shutdown_failed"

	// Application errors
	ErrMainLoop ErrorCode = "main_loop_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidArgument:   "Invalid argument provided",
	ErrTimeout:           "Operation timed out",
	ErrInvalidConfig:     "Invalid configuration",
	ErrReadConfig:        "Failed to read config file",
	ErrInvalidInterval:   "Invalid interval value",
	ErrInvalidTimeout:    "Invalid command timeout value",
	ErrInvalidBackend:    "Invalid GPU backend, expected \"smi\" or \"nvml\"",
	ErrInvalidThresholds: "Temperature thresholds must be strictly ascending",
	ErrInvalidDutyTable:  "Duty cycle table must be strictly increasing within 1-100",
	ErrOpenLogFile:       "Failed to open log file",
	ErrRootRequired:      "Root privileges are required for IPMI access",
	ErrMissingDependency: "Required external tool is not installed",
	ErrAlreadyRunning:    "Another instance is already running",
	ErrInitFailed:        "Initialization failed",
	ErrShutdownFailed:    "Shutdown failed",
	ErrMainLoop:          "Error in main loop",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
