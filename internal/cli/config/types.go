// Package config loads leapscan settings from defaults, leapscan.yaml,
// LEAPSCAN_* environment variables and command-line flags.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat   string        `koanf:"output"`
	Verbose        bool          `koanf:"verbose"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"`
	StatePath      string        `koanf:"state_path"`
	Workers        int           `koanf:"workers"`
	SkipBlankLines bool          `koanf:"skip_blank_lines"`
	Record         bool          `koanf:"record"`
	WatchDebounce  time.Duration `koanf:"watch_debounce"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when there is none. Relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStateFile     = ".leapscan/state.db"
	DefaultOutput        = "auto" // TTY=text, non-TTY=markdown
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultWorkers       = 1
	DefaultWatchDebounce = 250 * time.Millisecond
	EnvPrefix            = "LEAPSCAN_"
)

// configFileNames are searched in order in each candidate directory.
var configFileNames = []string{"leapscan.yaml", "leapscan.yml"}

// Default returns a Config populated with default values, for commands run
// without the root command's config loading.
func Default() *Config {
	return &Config{
		OutputFormat:   DefaultOutput,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		StatePath:      DefaultStateFile,
		Workers:        DefaultWorkers,
		SkipBlankLines: true,
		WatchDebounce:  DefaultWatchDebounce,
	}
}
