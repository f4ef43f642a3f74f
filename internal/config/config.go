package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/recalc"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "recalc.json"

	// DefaultAddr is the default inspection server address.
	DefaultAddr = ":8090"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "recalc"

	// EnvLogLevel overrides Log.Level when set.
	EnvLogLevel = "RECALC_LOG_LEVEL"
)

// configFileNames are tried in order by Load.
var configFileNames = []string{ConfigFileName, "recalc.yaml", "recalc.yml"}

// Config represents the complete recalc configuration.
type Config struct {
	// Engine contains propagation settings.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Server contains inspection server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// EngineConfig contains propagation settings.
type EngineConfig struct {
	// MaxParallelism caps concurrent listener updates per change (0 = unlimited).
	MaxParallelism int `json:"maxParallelism,omitempty" yaml:"maxParallelism,omitempty"`

	// MaxPropagationDepth stops waves deeper than this many generations.
	MaxPropagationDepth int `json:"maxPropagationDepth,omitempty" yaml:"maxPropagationDepth,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers engine metrics and serves /metrics.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled installs a tracer provider.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Exporter is stdout or none.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
}

// ServerConfig contains inspection server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxPropagationDepth: recalc.DefaultMaxPropagationDepth,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			Exporter: "stdout",
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// recalc.json, recalc.yaml and recalc.yml in that order and returns the
// defaults when none exists.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	cfg := New()
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E011").
				WithSubject(path).
				WithDetail("No configuration file at " + path).
				Wrap(err)
		}
		return nil, errors.New("E011").WithSubject(path).Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E011").
			WithSubject(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E011").WithSubject(path).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E011").WithSubject(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Engine.MaxPropagationDepth == 0 {
		c.Engine.MaxPropagationDepth = recalc.DefaultMaxPropagationDepth
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.MaxParallelism < 0 {
		return invalid("engine.maxParallelism", "must not be negative, got %d", c.Engine.MaxParallelism)
	}
	if c.Engine.MaxPropagationDepth < 1 {
		return invalid("engine.maxPropagationDepth", "must be at least 1, got %d", c.Engine.MaxPropagationDepth)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "%v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", "must be text or json, got %q", c.Log.Format)
	}
	if c.Tracing.Exporter != "stdout" && c.Tracing.Exporter != "none" {
		return invalid("tracing.exporter", "must be stdout or none, got %q", c.Tracing.Exporter)
	}
	if c.Server.Addr == "" {
		return invalid("server.addr", "must not be empty")
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return errors.New("E010").
		WithSubject(field).
		WithDetail(field + " " + fmt.Sprintf(format, args...))
}

// LogLevel returns the configured slog level. Invalid levels map to Info;
// Validate reports them.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}

// EngineOptions translates the engine section into recalc options.
func (c *Config) EngineOptions() []recalc.Option {
	return []recalc.Option{
		recalc.WithMaxParallelism(c.Engine.MaxParallelism),
		recalc.WithMaxPropagationDepth(c.Engine.MaxPropagationDepth),
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
