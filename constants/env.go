package constants

// Environment variable keys.
const (
	EnvKeyPrefix = "LINQSQL"
	EnvLogLevel  = EnvKeyPrefix + "_LOG_LEVEL" // Log level (debug|info|warn|error)
)
