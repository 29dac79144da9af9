package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/physlab/internal/registry"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sim != "pendulum" {
		t.Errorf("expected sim pendulum, got %s", cfg.Sim)
	}
	if cfg.Engine.FPS <= 0 {
		t.Error("fps should be positive")
	}
	if cfg.Engine.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physlab.yaml")
	data := "sim: projectile\nengine:\n  duration: 3\nparams:\n  angle: 60\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sim != "projectile" || cfg.Engine.Duration != 3 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Engine.FPS != DefaultFPS || cfg.Storage.Dir != DefaultStoreDir {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Values("projectile")["angle"] != 60 {
		t.Errorf("params not applied: %v", cfg.Values("projectile"))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.Sim = "gas-box"
	cfg.Engine.Seed = 42
	cfg.Sims = map[string]map[string]float64{"gas-box": {"count": 30}}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	v := got.Values("gas-box")
	if v["count"] != 30 || v["seed"] != 42 {
		t.Errorf("values = %v", v)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "engine: [1, 2"},
		{"zero fps", "engine:\n  fps: 0\n"},
		{"negative max dt", "engine:\n  max_dt: -1\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Duration = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestValuesPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sims = map[string]map[string]float64{
		"pendulum":   {"angle": 20, "length": 2},
		"projectile": {"speed": 10},
	}
	cfg.Params = map[string]float64{"angle": 40}

	v := cfg.Values("pendulum")
	if v["angle"] != 40 || v["length"] != 2 {
		t.Errorf("pendulum values = %v", v)
	}
	if v := cfg.Values("projectile"); v["angle"] != 0 || v["speed"] != 10 {
		t.Errorf("top-level params leaked: %v", v)
	}
	if _, ok := cfg.Values("pendulum")["seed"]; ok {
		t.Error("seed set without engine.seed")
	}

	cfg.Values("pendulum")["angle"] = 1
	if cfg.Sims["pendulum"]["angle"] != 20 {
		t.Error("Values must return a copy")
	}
}

func TestRunConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.FPS = 30
	cfg.Engine.Every = 0
	rc := cfg.RunConfig()
	if rc.FPS != 30 || rc.Every != 1 || rc.Duration != DefaultDuration {
		t.Errorf("run config = %+v", rc)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("pendulum", "small")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p["angle"] != 10 {
		t.Errorf("expected angle 10, got %v", p["angle"])
	}
	p["angle"] = 0
	if Presets["pendulum"]["small"]["angle"] != 10 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("pendulum", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "small") != nil {
		t.Error("expected nil for nonexistent simulation")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("pendulum")
	if len(names) != 4 || names[0] != "accurate" {
		t.Errorf("presets = %v", names)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent simulation")
	}
}

func TestPresetsNameRealParameters(t *testing.T) {
	r := registry.New()
	for id, set := range Presets {
		for name, values := range set {
			s, err := r.Build(id, values)
			if err != nil {
				t.Errorf("%s/%s: %v", id, name, err)
				continue
			}
			for param, v := range values {
				spec, ok := s.Params().Spec(param)
				if !ok {
					t.Errorf("%s/%s: unknown parameter %q", id, name, param)
					continue
				}
				if v < spec.Min || v > spec.Max {
					t.Errorf("%s/%s: %s = %v outside [%v, %v]", id, name, param, v, spec.Min, spec.Max)
				}
			}
		}
	}
}
