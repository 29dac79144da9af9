package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/physlab/internal/analysis"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
)

var (
	noSave bool

	spectrumOf string

	traceX       string
	traceY       string
	traceDerived bool
	traceOut     string
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [sim]",
		Short: "run a simulation headless and store the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addEngineFlags(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the store")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	id := args[0]
	vals, err := values(cmd, id)
	if err != nil {
		return err
	}
	integ := integratorFor(cmd)
	s, err := reg.BuildWith(id, integ, vals)
	if err != nil {
		return err
	}
	rc := runConfig(cmd)

	res, err := sim.Run(cmd.Context(), s, rc)
	if err != nil {
		return err
	}
	m := metrics.Evaluate(res, metrics.Defaults(res.Kind)...)

	fmt.Printf("sim: %s (%s)\n", id, res.Kind)
	fmt.Printf("status: %s after %d frames, t=%.3fs (wall %v)\n", res.Status, res.Frames, res.Elapsed, res.Wall.Round(time.Microsecond))
	for _, ev := range res.Events {
		fmt.Printf("event: %.3fs %s %s\n", ev.Time, ev.Name, ev.Detail)
	}
	if final, ok := res.Final(); ok {
		fmt.Println()
		for _, q := range final.Derived {
			fmt.Println("  " + q.String())
		}
	}
	printMetrics(m)

	if noSave {
		return nil
	}
	runID, err := store().Save(storage.RunMetadata{
		Sim:        id,
		Integrator: integ,
		FPS:        rc.FPS,
		Duration:   rc.Duration,
		MaxDt:      rc.MaxDt,
		Metrics:    m,
	}, res)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println()
	for _, name := range names {
		fmt.Printf("  %-20s %.6g\n", name, m[name])
	}
}

// resolveRun accepts a run id or "latest".
func resolveRun(st *storage.Store, arg string) (*storage.RunMetadata, *sim.Result, error) {
	if arg == "latest" {
		meta, err := st.Latest()
		if err != nil {
			return nil, nil, err
		}
		if meta == nil {
			return nil, nil, fmt.Errorf("%w: store is empty", storage.ErrRunNotFound)
		}
		arg = meta.ID
	}
	return st.LoadResult(arg)
}

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := store().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSIM\tTIME\tSTATUS\tFRAMES\tELAPSED\tINTEG")
			for _, run := range runs {
				integ := run.Integrator
				if integ == "" {
					integ = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2fs\t%s\n",
					run.ID,
					run.Sim,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Status,
					run.Frames,
					run.Elapsed,
					integ,
				)
			}
			return w.Flush()
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store().Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted: %s\n", args[0])
			return nil
		},
	}
}

func plotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id] [quantity...]",
		Short: "plot state components, or the named derived quantities",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotRun,
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, res, err := resolveRun(store(), args[0])
	if err != nil {
		return err
	}
	if len(res.Samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("sim: %s\n", meta.Sim)
	fmt.Printf("samples: %d\n\n", len(res.Samples))

	plot := func(data []float64, caption string) {
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if quantities := args[1:]; len(quantities) > 0 {
		known := res.Quantities()
		for _, q := range quantities {
			if !contains(known, q) {
				return fmt.Errorf("unknown quantity: %s (available: %s)", q, strings.Join(known, ", "))
			}
			plot(res.Series(q), q+" vs time")
		}
		return nil
	}

	width := len(res.Samples[0].State)
	if width == 0 {
		return fmt.Errorf("run has no state vector; name a quantity (available: %s)", strings.Join(res.Quantities(), ", "))
	}
	header := storage.StateHeader(res.Labels, width)[2:]
	const maxPlots = 6
	for i := 0; i < min(width, maxPlots); i++ {
		data := make([]float64, len(res.Samples))
		for j, s := range res.Samples {
			if i < len(s.State) {
				data[j] = s.State[i]
			}
		}
		plot(data, header[i]+" vs time")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summaries and frequency analysis of derived quantities",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	cmd.Flags().StringVar(&spectrumOf, "spectrum", "", "plot the amplitude spectrum of this quantity")
	return cmd
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, res, err := resolveRun(store(), args[0])
	if err != nil {
		return err
	}
	if len(res.Samples) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("sim: %s, %d samples at %.1f hz\n\n", meta.Sim, len(res.Samples), analysis.SampleRate(res))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tMIN\tMAX\tMEAN\tSTDDEV\tFINAL\tDOMINANT\tPERIOD")
	for _, r := range analysis.AnalyzeAll(res) {
		period := "-"
		if r.Period > 0 {
			period = fmt.Sprintf("%.3fs", r.Period)
		}
		dominant := "-"
		if r.Dominant > 0 {
			dominant = fmt.Sprintf("%.3f hz", r.Dominant)
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%s\t%s\n",
			r.Name, r.Min, r.Max, r.Mean, r.StdDev, r.Final, dominant, period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(meta.Metrics) > 0 {
		printMetrics(meta.Metrics)
	}

	if spectrumOf == "" {
		return nil
	}
	if !contains(res.Quantities(), spectrumOf) {
		return fmt.Errorf("unknown quantity: %s", spectrumOf)
	}
	bins := analysis.Spectrum(res.Series(spectrumOf), analysis.SampleRate(res))
	if len(bins) < 2 {
		return fmt.Errorf("run too short for a spectrum")
	}
	amp := make([]float64, len(bins)/2)
	for i := range amp {
		amp[i] = bins[i].Amplitude
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(amp,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum (%s), 0 to %.2f hz", spectrumOf, bins[len(amp)-1].Frequency)),
	))
	return nil
}

func exportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := resolveRun(store(), args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(os.Stdout, meta, res)
		},
	}
}

func exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV, one row per sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := resolveRun(store(), args[0])
			if err != nil {
				return err
			}
			if len(res.Samples) == 0 {
				return fmt.Errorf("no data to export")
			}
			return storage.ExportCSV(os.Stdout, res)
		},
	}
}

func traceSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace-svg [run_id]",
		Short: "plot two components of a stored run against each other as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  traceSVG,
	}
	cmd.Flags().StringVar(&traceX, "x", "", "x axis (state label or, with --derived, quantity)")
	cmd.Flags().StringVar(&traceY, "y", "", "y axis (state label or, with --derived, quantity)")
	cmd.Flags().BoolVar(&traceDerived, "derived", false, "use derived quantities instead of state labels")
	cmd.Flags().StringVarP(&traceOut, "out", "o", "", "output file (default stdout)")
	return cmd
}

func traceSVG(cmd *cobra.Command, args []string) error {
	_, res, err := resolveRun(store(), args[0])
	if err != nil {
		return err
	}

	var portrait *analysis.Portrait
	if traceDerived {
		if traceX == "" || traceY == "" {
			return fmt.Errorf("--derived needs --x and --y (available: %s)", strings.Join(res.Quantities(), ", "))
		}
		portrait = analysis.QuantityPortrait(res, traceX, traceY)
	} else {
		x, y := traceX, traceY
		if x == "" && len(res.Labels) > 0 {
			x = res.Labels[0]
		}
		if y == "" && len(res.Labels) > 1 {
			y = res.Labels[1]
		}
		portrait = analysis.PhasePortrait(res, x, y)
		if portrait == nil {
			return fmt.Errorf("unknown state labels %q, %q (available: %s)", x, y, strings.Join(res.Labels, ", "))
		}
	}

	doc := export.TrajectoryToSVG(portrait.Points, 800, 600, string(scene.Accent))
	if doc == "" {
		return errors.New("not enough points to trace")
	}
	return writeOut(traceOut, doc)
}

func writeOut(path, doc string) error {
	if path == "" {
		_, err := fmt.Print(doc)
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}

// finalState is the last recorded state of res, or nil.
func finalState(res *sim.Result) dynamo.State {
	if final, ok := res.Final(); ok {
		return final.State
	}
	return nil
}
