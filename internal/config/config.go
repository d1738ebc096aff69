package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"mavosort/internal/engine"
	"mavosort/internal/paths"
)

// CurrentVersion is the config schema version this build understands.
const CurrentVersion = 1

// Config represents the complete mavosort configuration
type Config struct {
	Version int           `json:"version" mapstructure:"version"`
	Sort    SortConfig    `json:"sort" mapstructure:"sort"`
	Output  OutputConfig  `json:"output" mapstructure:"output"`
	Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
	State   StateConfig   `json:"state" mapstructure:"state"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// SortConfig controls criteria parsing and the engine's defaults
type SortConfig struct {
	DefaultDirection string   `json:"defaultDirection" mapstructure:"defaultDirection"`
	AscendingSigils  []string `json:"ascendingSigils" mapstructure:"ascendingSigils"`
	DescendingSigils []string `json:"descendingSigils" mapstructure:"descendingSigils"`
	// ParallelMismatch is "skip" or "error".
	ParallelMismatch string `json:"parallelMismatch" mapstructure:"parallelMismatch"`
}

// OutputConfig contains output encoding settings
type OutputConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Indent int    `json:"indent" mapstructure:"indent"`
}

// WatchConfig contains file polling settings
type WatchConfig struct {
	PollIntervalMs int `json:"pollIntervalMs" mapstructure:"pollIntervalMs"`
	DebounceMs     int `json:"debounceMs" mapstructure:"debounceMs"`
}

// StateConfig contains signature store settings
type StateConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// Mismatch policies for parallel keys.
const (
	MismatchSkip  = "skip"
	MismatchError = "error"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Sort: SortConfig{
			DefaultDirection: "desc",
			AscendingSigils:  []string{"+"},
			DescendingSigils: []string{"-"},
			ParallelMismatch: MismatchSkip,
		},
		Output: OutputConfig{
			Format: "json",
			Indent: 2,
		},
		Watch: WatchConfig{
			PollIntervalMs: 500,
			DebounceMs:     200,
		},
		State: StateConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// LoadResult is a loaded config plus where it came from.
type LoadResult struct {
	Config     *Config
	ConfigPath string // empty when only defaults and env applied
}

// LoadConfig loads configuration from explicitPath, or from
// .mavosort/config.{json,yaml,toml} under root. MAVOSORT_* environment
// variables override file values (MAVOSORT_SORT_DEFAULTDIRECTION, ...).
func LoadConfig(root, explicitPath string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("MAVOSORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(paths.StateDir(root))
	}

	result := &LoadResult{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	result.Config = &cfg
	return result, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("sort.defaultDirection", d.Sort.DefaultDirection)
	v.SetDefault("sort.ascendingSigils", d.Sort.AscendingSigils)
	v.SetDefault("sort.descendingSigils", d.Sort.DescendingSigils)
	v.SetDefault("sort.parallelMismatch", d.Sort.ParallelMismatch)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.indent", d.Output.Indent)
	v.SetDefault("watch.pollIntervalMs", d.Watch.PollIntervalMs)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
	v.SetDefault("state.enabled", d.State.Enabled)
	v.SetDefault("state.path", d.State.Path)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes the configuration to .mavosort/config.json under root.
func (c *Config) Save(root string) error {
	dir, err := paths.EnsureStateDir(root)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Direction returns the parsed sort.defaultDirection.
func (c *Config) Direction() engine.Direction {
	d, err := engine.ParseDirection(c.Sort.DefaultDirection)
	if err != nil || d == engine.DirectionDefault {
		return engine.Descending
	}
	return d
}

// StatePath returns the signature store path, defaulting under root.
func (c *Config) StatePath(root string) string {
	if c.State.Path != "" {
		return c.State.Path
	}
	return paths.StateDBPath(root)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if _, err := engine.ParseDirection(c.Sort.DefaultDirection); err != nil {
		return &ConfigError{Field: "sort.defaultDirection", Message: err.Error()}
	}
	if len(c.Sort.AscendingSigils) == 0 || len(c.Sort.DescendingSigils) == 0 {
		return &ConfigError{Field: "sort", Message: "sigil lists must not be empty"}
	}
	seen := make(map[string]bool)
	for _, s := range append(append([]string{}, c.Sort.AscendingSigils...), c.Sort.DescendingSigils...) {
		if s == "" {
			return &ConfigError{Field: "sort", Message: "empty sigil"}
		}
		if seen[s] {
			return &ConfigError{Field: "sort", Message: "sigil " + s + " is listed twice"}
		}
		seen[s] = true
	}
	switch c.Sort.ParallelMismatch {
	case MismatchSkip, MismatchError:
	default:
		return &ConfigError{Field: "sort.parallelMismatch", Message: "must be skip or error"}
	}
	switch c.Output.Format {
	case "json", "yaml", "toml", "human":
	default:
		return &ConfigError{Field: "output.format", Message: "must be json, yaml, toml or human"}
	}
	if c.Output.Indent < 0 {
		return &ConfigError{Field: "output.indent", Message: "must not be negative"}
	}
	if c.Watch.PollIntervalMs <= 0 {
		return &ConfigError{Field: "watch.pollIntervalMs", Message: "must be positive"}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
