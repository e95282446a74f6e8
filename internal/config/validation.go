package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	for i, p := range c.Embed.CopyExclude {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("embed.copy_exclude[%d] must not be blank", i))
		}
	}

	if strings.TrimSpace(c.Tools.Xcrun) == "" {
		errs = append(errs, "tools.xcrun must not be empty")
	}
	if c.Tools.CommandTimeoutSeconds < 1 {
		errs = append(errs, "tools.command_timeout_seconds must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.GracefulShutdownMs < 1 {
		errs = append(errs, "tools.graceful_shutdown_ms must be >= 1")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q must be one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
