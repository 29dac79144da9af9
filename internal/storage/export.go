package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/sim"
)

type ExportData struct {
	Sim      string               `json:"sim"`
	Kind     string               `json:"kind"`
	FPS      float64              `json:"fps"`
	Duration float64              `json:"duration"`
	Status   string               `json:"status"`
	Steps    int                  `json:"steps"`
	Labels   []string             `json:"labels"`
	Params   map[string]float64   `json:"params"`
	Times    []float64            `json:"times"`
	States   [][]float64          `json:"states"`
	Derived  map[string][]float64 `json:"derived"`
	Events   []dynamo.Event       `json:"events"`
	Metrics  map[string]float64   `json:"metrics,omitempty"`
}

func NewExportData(meta *RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		Sim:      meta.Sim,
		Kind:     result.Kind.String(),
		FPS:      meta.FPS,
		Duration: meta.Duration,
		Status:   result.Status.String(),
		Steps:    result.Frames,
		Labels:   result.Labels,
		Params:   result.Params,
		Times:    result.Times(),
		States:   make([][]float64, len(result.Samples)),
		Derived:  make(map[string][]float64),
		Events:   result.Events,
		Metrics:  meta.Metrics,
	}
	for i, s := range result.Samples {
		data.States[i] = s.State
	}
	for _, name := range result.Quantities() {
		data.Derived[name] = result.Series(name)
	}
	return data
}

func ExportJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, result))
}

// ExportCSV writes one wide row per sample: frame, time, the state columns
// and then every derived quantity.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if len(result.Samples) == 0 {
		cw.Flush()
		return cw.Error()
	}

	quantities := result.Quantities()
	header := append(StateHeader(result.Labels, len(result.Samples[0].State)), quantities...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range result.Samples {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(s.Frame), formatFloat(s.Time))
		for _, v := range s.State {
			row = append(row, formatFloat(v))
		}
		for _, name := range quantities {
			row = append(row, formatFloat(s.Derived.Value(name)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
