package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/automation"
	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/optim"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
	"github.com/san-kum/physlab/internal/viz"
)

var (
	svgAt  float64
	svgOut string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	parallel   int

	mcJitter []string
	mcTrials int
	mcSeed   uint64

	axes      []string
	objective string
	maximize  bool

	theme     string
	chart     string
	autoStart bool
	liveFPS   float64
	logFile   string
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the simulation catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tTITLE\tDESCRIPTION")
			for _, m := range reg.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Category, m.Title, m.Description)
			}
			return w.Flush()
		},
	}
}

func paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params [sim]",
		Short: "list the tunable parameters of a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := reg.Build(args[0], cfg.Values(args[0]))
			if err != nil {
				return err
			}
			store := s.Params()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLABEL\tVALUE\tMIN\tMAX\tSTEP\tUNIT\tLIVE")
			for _, sp := range store.Specs() {
				live := ""
				if sp.Live {
					live = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%s\t%s\n",
					sp.Name, sp.Label, store.Get(sp.Name), sp.Min, sp.Max, sp.Step, sp.Unit, live)
			}
			return w.Flush()
		},
	}
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [sim]",
		Short: "list available presets for a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for sim: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %-14s %s\n", p, formatValues(config.GetPreset(args[0], p)))
			}
			return nil
		},
	}
}

func formatValues(v map[string]float64) string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, v[name])
	}
	return strings.Join(parts, " ")
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "print the effective config, or write it to path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cfg.Save(args[0]); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", args[0])
				return nil
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}

func svgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "svg [sim]",
		Short: "render one frame of a simulation as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderSVG,
	}
	addEngineFlags(cmd)
	cmd.Flags().Float64Var(&svgAt, "at", 0, "advance this many seconds before rendering")
	cmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	return cmd
}

func renderSVG(cmd *cobra.Command, args []string) error {
	id := args[0]
	vals, err := values(cmd, id)
	if err != nil {
		return err
	}
	s, err := reg.BuildWith(id, integratorFor(cmd), vals)
	if err != nil {
		return err
	}
	if svgAt > 0 {
		rc := runConfig(cmd)
		rc.Duration = svgAt
		if _, err := sim.Run(cmd.Context(), s, rc); err != nil {
			return err
		}
	}
	return writeOut(svgOut, export.SceneToSVG(s.Render()))
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [sim] [integrator...]",
		Short: "compare integrators on the same simulation",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addEngineFlags(cmd)
	return cmd
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	id := args[0]
	names := args[1:]
	if len(names) == 0 {
		names = integrators.Names()
	}
	vals, err := values(cmd, id)
	if err != nil {
		return err
	}
	rc := runConfig(cmd)
	rc.ValidateState = false

	fmt.Printf("comparing integrators for %s (fps=%.0f, duration=%.1fs)\n\n", id, rc.FPS, rc.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tFINAL_X0\tENERGY_DRIFT\tFRAMES\tTIME_MS")
	for _, name := range names {
		s, err := reg.BuildWith(id, name, vals)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		start := time.Now()
		res, err := sim.Run(cmd.Context(), s, rc)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		x0 := 0.0
		if final := finalState(res); len(final) > 0 {
			x0 = final[0]
		}
		drift := metrics.Evaluate(res, metrics.NewDrift("energy"))["energy_drift"]
		fmt.Fprintf(w, "%s\t%.6f\t%.2e\t%d\t%.2f\n",
			name, x0, drift, res.Frames, float64(elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [sim]",
		Short: "run a simulation across evenly spaced values of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addEngineFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep")
	cmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	cmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	id := args[0]
	vals, err := values(cmd, id)
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{
		Sim:        id,
		Integrator: integratorFor(cmd),
		Param:      sweepParam,
		Min:        sweepMin,
		Max:        sweepMax,
		Steps:      sweepSteps,
		Values:     vals,
		Limit:      parallel,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, reg, runConfig(cmd))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	var names []string
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTATUS\tELAPSED\tEVENTS", strings.ToUpper(sweepParam))
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(name))
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%s\t%.2fs\t%d", r.Value, r.Status, r.Elapsed, r.Events)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4g", r.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func monteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [sim]",
		Short: "run trials with uniformly jittered parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	addEngineFlags(cmd)
	cmd.Flags().StringArrayVar(&mcJitter, "jitter", nil, "half-width of the perturbation name=width (repeatable)")
	cmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	cmd.Flags().Uint64Var(&mcSeed, "mc-seed", 1, "seed for the perturbations")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")
	return cmd
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	id := args[0]
	vals, err := values(cmd, id)
	if err != nil {
		return err
	}
	jitter, err := parseSets(mcJitter)
	if err != nil {
		return err
	}
	mc := &automation.MonteCarloConfig{
		Sim:        id,
		Integrator: integratorFor(cmd),
		Values:     vals,
		Jitter:     jitter,
		Trials:     mcTrials,
		Seed:       mcSeed,
		Limit:      parallel,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, reg, runConfig(cmd))
	if err != nil {
		return err
	}

	names := make([]string, 0, len(jitter))
	for name := range jitter {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "TRIAL")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(name))
	}
	fmt.Fprintln(w, "\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d", r.TrialID)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4g", r.Values[name])
		}
		fmt.Fprintf(w, "\t%v\n", r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [sim]",
		Short: "grid-search parameters for the best objective",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	addEngineFlags(cmd)
	cmd.Flags().StringArrayVar(&axes, "axis", nil, "searched parameter name=lo:hi:n (repeatable)")
	cmd.Flags().StringVar(&objective, "objective", "", "metric or derived quantity to optimise")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")
	_ = cmd.MarkFlagRequired("objective")
	return cmd
}

// parseAxis reads name=lo:hi:n.
func parseAxis(spec string) (optim.Axis, error) {
	name, rng, ok := strings.Cut(spec, "=")
	parts := strings.Split(rng, ":")
	if !ok || name == "" || len(parts) != 3 {
		return optim.Axis{}, fmt.Errorf("invalid --axis %q: want name=lo:hi:n", spec)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err := errors.Join(err1, err2, err3); err != nil {
		return optim.Axis{}, fmt.Errorf("invalid --axis %q: %w", spec, err)
	}
	return optim.Axis{Param: name, Values: optim.Linspace(lo, hi, n)}, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	id := args[0]
	vals, err := values(cmd, id)
	if err != nil {
		return err
	}
	g := &optim.GridSearch{
		Sim:        id,
		Integrator: integratorFor(cmd),
		Values:     vals,
		Objective:  objective,
		Maximize:   maximize,
		Limit:      parallel,
	}
	for _, spec := range axes {
		a, err := parseAxis(spec)
		if err != nil {
			return err
		}
		g.Axes = append(g.Axes, a)
	}

	res, err := g.Search(cmd.Context(), reg, runConfig(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("searched %d points for %s\n", len(res.Points), objective)
	fmt.Printf("best %s: %.6g\n", objective, res.Best.Score)
	for _, a := range g.Axes {
		fmt.Printf("  %-12s %g\n", a.Param, res.Best.Values[a.Param])
	}
	return nil
}

func scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a YAML scenario in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	base := cfg.RunConfig()
	results, runErr := automation.RunScenario(cmd.Context(), sc, reg, base)

	st := store()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSIM\tSTATUS\tFRAMES\tELAPSED\tEVENTS\tSAVED")
	for i, r := range results {
		saved := "-"
		if r.Step.SaveAs != "" {
			id, err := st.Save(storage.RunMetadata{
				Name:       r.Step.SaveAs,
				Sim:        r.Step.Sim,
				Integrator: r.Step.Integrator,
				FPS:        base.FPS,
				Duration:   base.Duration,
				MaxDt:      base.MaxDt,
				Metrics:    metrics.Evaluate(r.Result, metrics.Defaults(r.Result.Kind)...),
			}, r.Result)
			if err != nil {
				return err
			}
			saved = id
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2fs\t%d\t%s\n",
			i+1, r.Step.Sim, r.Result.Status, r.Result.Frames, r.Result.Elapsed, len(r.Result.Events), saved)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&theme, "theme", "", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().StringVar(&chart, "chart", "", "derived quantity to plot")
	cmd.Flags().BoolVar(&autoStart, "start", false, "launch immediately")
	cmd.Flags().Float64Var(&liveFPS, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the view is open")
}

func liveOptions(cmd *cobra.Command) []viz.LiveOption {
	rate := cfg.Engine.FPS
	if cmd.Flags().Changed("fps") {
		rate = liveFPS
	}
	opts := []viz.LiveOption{
		viz.WithFPS(rate),
		viz.WithStepLimit(cfg.Engine.MaxDt),
		viz.WithTheme(theme),
		viz.WithChart(chart),
		viz.WithAutoStart(autoStart),
	}
	if logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			opts = append(opts, viz.WithLiveLogger(slog.New(slog.NewTextHandler(f, nil))))
		} else {
			slog.Warn("log file unavailable", "path", logFile, "error", err)
		}
	}
	return opts
}

func liveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [sim]",
		Short: "run a simulation in the terminal; without an id, pick from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return viz.RunInteractive(reg, liveOptions(cmd)...)
			}
			id := args[0]
			e, err := reg.Lookup(id)
			if err != nil {
				return err
			}
			vals, err := values(cmd, id)
			if err != nil {
				return err
			}
			s, err := reg.BuildWith(id, integratorFor(cmd), vals)
			if err != nil {
				return err
			}
			return viz.RunLive(e.Meta, s, liveOptions(cmd)...)
		},
	}
	addLiveFlags(cmd)
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator for ODE families")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset parameters")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "parameter override name=value (repeatable)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for stochastic families")
	return cmd
}
