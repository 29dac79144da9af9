package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/registry"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
	"github.com/san-kum/physlab/internal/viz"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	storeDir   string

	cfg = config.DefaultConfig()
	reg = registry.New()

	// engine flags shared by run-like commands
	integrator string
	preset     string
	sets       []string
	fps        float64
	duration   float64
	every      int
	seed       int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "physlab",
		Short:             "educational physics playground",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(reg, liveOptions(cmd)...)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", config.DefaultStoreDir, "run store directory")
	addLiveFlags(rootCmd)

	rootCmd.AddCommand(
		listCmd(), paramsCmd(), presetsCmd(), configCmd(),
		runCmd(), runsCmd(), deleteCmd(), plotCmd(), analyzeCmd(),
		exportJSONCmd(), exportCSVCmd(), svgCmd(), traceSVGCmd(),
		compareCmd(), sweepCmd(), monteCarloCmd(), optimizeCmd(), scenarioCmd(), liveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads the config file and applies the persistent flags that were
// set explicitly, then installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("store") {
		cfg.Storage.Dir = storeDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func store() *storage.Store { return storage.New(cfg.Storage.Dir) }

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator for ODE families (euler, semi-implicit, verlet, leapfrog, rk4)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset parameters")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "parameter override name=value (repeatable)")
	cmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().Float64Var(&duration, "duration", config.DefaultDuration, "seconds of simulated frame time")
	cmd.Flags().IntVar(&every, "every", 1, "record every n-th frame")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for stochastic families (0 keeps the default)")
}

// runConfig is the config file's engine section with explicitly set flags
// on top.
func runConfig(cmd *cobra.Command) sim.RunConfig {
	rc := cfg.RunConfig()
	if cmd.Flags().Changed("fps") {
		rc.FPS = fps
	}
	if cmd.Flags().Changed("duration") {
		rc.Duration = duration
	}
	if cmd.Flags().Changed("every") {
		rc.Every = every
	}
	return rc
}

func integratorFor(cmd *cobra.Command) string {
	if cmd.Flags().Changed("integrator") {
		return integrator
	}
	return cfg.Integrator
}

// values merges, lowest first: config file, preset, --set and --seed.
func values(cmd *cobra.Command, id string) (map[string]float64, error) {
	out := cfg.Values(id)
	if preset != "" {
		p := config.GetPreset(id, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(id))
		}
		maps.Copy(out, p)
	}
	overrides, err := parseSets(sets)
	if err != nil {
		return nil, err
	}
	maps.Copy(out, overrides)
	if cmd.Flags().Changed("seed") {
		out["seed"] = float64(seed)
	}
	return out, nil
}

func parseSets(list []string) (map[string]float64, error) {
	out := make(map[string]float64, len(list))
	for _, kv := range list {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", kv, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
