package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/sim"
)

const (
	DefaultFPS       = 60.0
	DefaultDuration  = 10.0
	DefaultStoreDir  = ".physlab/runs"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Sim        string                        `yaml:"sim"`
	Integrator string                        `yaml:"integrator,omitempty"`
	Engine     EngineConfig                  `yaml:"engine"`
	Storage    StorageConfig                 `yaml:"storage"`
	Log        LogConfig                     `yaml:"log"`
	Params     map[string]float64            `yaml:"params,omitempty"`
	Sims       map[string]map[string]float64 `yaml:"sims,omitempty"`
}

type EngineConfig struct {
	FPS      float64 `yaml:"fps"`
	MaxDt    float64 `yaml:"max_dt"`
	Duration float64 `yaml:"duration"`
	Every    int     `yaml:"every"`
	// Seed overrides the "seed" parameter of stochastic simulations; 0 keeps
	// their own default.
	Seed int64 `yaml:"seed"`
}

type StorageConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Sim: "pendulum",
		Engine: EngineConfig{
			FPS:      DefaultFPS,
			MaxDt:    sim.DefaultMaxDt,
			Duration: DefaultDuration,
			Every:    1,
		},
		Storage: StorageConfig{Dir: DefaultStoreDir},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Engine.FPS <= 0 {
		return fmt.Errorf("%w: engine.fps must be positive", ErrInvalid)
	}
	if c.Engine.Duration <= 0 {
		return fmt.Errorf("%w: engine.duration must be positive", ErrInvalid)
	}
	if c.Engine.MaxDt < 0 {
		return fmt.Errorf("%w: engine.max_dt must not be negative", ErrInvalid)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Values returns the parameter overrides for id: the sims section, then the
// top-level params when id is the configured simulation, then the seed.
func (c *Config) Values(id string) map[string]float64 {
	out := maps.Clone(c.Sims[id])
	if out == nil {
		out = make(map[string]float64)
	}
	if id == c.Sim {
		maps.Copy(out, c.Params)
	}
	if c.Engine.Seed != 0 {
		out["seed"] = float64(c.Engine.Seed)
	}
	return out
}

func (c *Config) RunConfig() sim.RunConfig {
	rc := sim.DefaultRunConfig()
	rc.FPS = c.Engine.FPS
	rc.Duration = c.Engine.Duration
	rc.MaxDt = c.Engine.MaxDt
	if c.Engine.Every > 0 {
		rc.Every = c.Engine.Every
	}
	return rc
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}
	return l, nil
}
