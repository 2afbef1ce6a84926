package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Hardware access errors
	ErrUnavailable      ErrorCode = "feature_unavailable"
	ErrPermissionDenied ErrorCode = "permission_denied"
	ErrParseFailure     ErrorCode = "parse_failure"
	ErrNoBackend        ErrorCode = "no_backend_available"

	// Profile errors
	ErrValidationFailed ErrorCode = "validation_failed"
	ErrNotFound         ErrorCode = "not_found"
	ErrDuplicateName    ErrorCode = "duplicate_name"
	ErrDefaultProtected ErrorCode = "default_profile_protected"
	ErrIndexOutOfRange  ErrorCode = "index_out_of_range"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Hardware feature not available",
	ErrPermissionDenied: "Insufficient privileges for hardware access",
	ErrParseFailure:     "Malformed content in sysfs node",
	ErrNoBackend:        "No hardware control backend available",
	ErrValidationFailed: "Validation failed",
	ErrNotFound:         "Profile not found",
	ErrDuplicateName:    "Profile name already exists",
	ErrDefaultProtected: "Cannot delete default profile",
	ErrIndexOutOfRange:  "Profile index out of bounds",
	ErrInvalidConfig:    "Invalid configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
