package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapscan/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (valid: text, json)", c.LogFormat)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	return nil
}
