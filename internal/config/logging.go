package config

import (
	"github.com/rshade/stockdesk/internal/logging"
)

// ToLoggingConfig converts the logging section for logging.NewLoggerWithPath.
// A configured file switches output to that file; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns the logging section of the global configuration.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
