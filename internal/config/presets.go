package config

import (
	"maps"
	"sort"
)

// Presets are named parameter sets per catalog id.
var Presets = map[string]map[string]map[string]float64{
	"pendulum": {
		"small":    {"angle": 10, "damping": 0},
		"large":    {"angle": 85, "damping": 0},
		"damped":   {"angle": 60, "damping": 0.5},
		"accurate": {"angle": 45, "substeps": 16},
	},
	"free-fall": {
		"feather":  {"mass": 0.1, "drag": 2},
		"skydiver": {"mass": 80, "drag": 0.25, "height": 500},
		"bowling":  {"mass": 7, "drag": 0.05},
		"no-air":   {"drag": 0},
	},
	"projectile": {
		"max-range": {"angle": 45, "height": 0},
		"lob":       {"angle": 75, "speed": 25},
		"flat":      {"angle": 10, "speed": 30},
	},
	"collision-1d": {
		"equal":        {"m1": 1, "m2": 1, "v1": 3, "v2": -3},
		"heavy-target": {"m1": 1, "m2": 10, "v1": 5, "v2": 0},
		"chase":        {"v1": 6, "v2": 2},
	},
	"gas-box": {
		"sparse": {"count": 10},
		"dense":  {"count": 60},
		"lossy":  {"damping": 0.8},
		"tracer": {"heavy": 20},
	},
	"refraction": {
		"water": {"n1": 1, "n2": 1.33},
		"glass": {"n1": 1, "n2": 1.5},
	},
	"double-slit": {
		"narrow": {"separation": 100},
		"wide":   {"separation": 800},
	},
	"wave-beats": {
		"close":  {"f1": 1, "f2": 1.1},
		"octave": {"f1": 1, "f2": 2},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(id, name string) map[string]float64 {
	if set, ok := Presets[id]; ok {
		if p, ok := set[name]; ok {
			return maps.Clone(p)
		}
	}
	return nil
}

func ListPresets(id string) []string {
	set, ok := Presets[id]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
