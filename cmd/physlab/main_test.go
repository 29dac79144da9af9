package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"angle=30", " speed = 12.5"})
	if err != nil {
		t.Fatal(err)
	}
	if got["angle"] != 30 || got["speed"] != 12.5 {
		t.Errorf("got %v", got)
	}

	for _, bad := range []string{"angle", "=3", "angle=x"} {
		if _, err := parseSets([]string{bad}); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestParseAxis(t *testing.T) {
	a, err := parseAxis("angle=30:60:7")
	if err != nil {
		t.Fatal(err)
	}
	if a.Param != "angle" || len(a.Values) != 7 || a.Values[3] != 45 {
		t.Errorf("got %+v", a)
	}
	for _, bad := range []string{"angle", "angle=1:2", "angle=a:2:3", "angle=1:2:n"} {
		if _, err := parseAxis(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestValuesPrecedence(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	addEngineFlags(cmd)
	cfg.Sims = map[string]map[string]float64{"projectile": {"angle": 10, "speed": 5}}
	defer func() { cfg.Sims = nil }()

	if err := cmd.Flags().Parse([]string{"--preset", "lob", "--set", "speed=33", "--seed", "9"}); err != nil {
		t.Fatal(err)
	}
	defer func() { preset, sets = "", nil }()

	got, err := values(cmd, "projectile")
	if err != nil {
		t.Fatal(err)
	}
	if got["speed"] != 33 {
		t.Errorf("--set should win: speed = %v", got["speed"])
	}
	if got["angle"] == 10 {
		t.Error("preset should override the config file")
	}
	if got["seed"] != 9 {
		t.Errorf("seed = %v", got["seed"])
	}

	preset = "nope"
	if _, err := values(cmd, "projectile"); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestRunConfigFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "run"}
	addEngineFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--duration", "2.5"}); err != nil {
		t.Fatal(err)
	}
	rc := runConfig(cmd)
	if rc.Duration != 2.5 {
		t.Errorf("duration = %v", rc.Duration)
	}
	if rc.FPS != cfg.Engine.FPS {
		t.Errorf("unset --fps overrode config: %v", rc.FPS)
	}
}
