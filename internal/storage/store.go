package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	derivedFile  = "derived.csv"
	eventsFile   = "events.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

// createFile is swapped in tests to fail individual writes.
var createFile = os.Create

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Sim        string             `json:"sim"`
	Kind       string             `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator,omitempty"`
	FPS        float64            `json:"fps"`
	Duration   float64            `json:"duration"`
	MaxDt      float64            `json:"max_dt"`
	Status     string             `json:"status"`
	Frames     int                `json:"frames"`
	Elapsed    float64            `json:"elapsed"`
	Labels     []string           `json:"labels"`
	Params     map[string]float64 `json:"params"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// DerivedRow is one quantity of one recorded frame in derived.csv.
type DerivedRow struct {
	Frame int     `csv:"frame"`
	Time  float64 `csv:"time"`
	Name  string  `csv:"name"`
	Label string  `csv:"label"`
	Unit  string  `csv:"unit"`
	Value float64 `csv:"value"`
}

// EventRow is one step event in events.csv.
type EventRow struct {
	Time   float64 `csv:"time"`
	Name   string  `csv:"name"`
	Detail string  `csv:"detail"`
}

// Save writes a run directory and returns its id, prefixed by meta.Name or
// else meta.Sim. The run fields of meta (kind, status, frames, labels,
// params) are taken from result. A failed write removes the run directory,
// and metadata.json goes last so List never sees a partial run.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	now := time.Now()
	prefix := meta.Name
	if prefix == "" {
		prefix = meta.Sim
	}
	runID, runDir, err := s.newRunDir(prefix, now)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Kind = result.Kind.String()
	meta.Status = result.Status.String()
	meta.Frames = result.Frames
	meta.Elapsed = result.Elapsed
	meta.Labels = result.Labels
	meta.Params = result.Params

	if err := writeRun(runDir, meta, result); err != nil {
		_ = os.RemoveAll(runDir)
		return "", fmt.Errorf("saving run %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(dir string, meta RunMetadata, result *sim.Result) error {
	if err := writeFile(filepath.Join(dir, statesFile), func(w io.Writer) error {
		return writeStates(w, result)
	}); err != nil {
		return err
	}
	if err := writeRows(filepath.Join(dir, derivedFile), derivedRows(result)); err != nil {
		return err
	}
	if err := writeRows(filepath.Join(dir, eventsFile), eventRows(result)); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, metadataFile), meta)
}

// writeFile creates path and hands it to write. The Close error is returned
// when write succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func (s *Store) newRunDir(name string, now time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	runID := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// StateHeader is the states.csv header: frame, time, then one column per
// state component. Labels that do not match the state width fall back to
// x0, x1, ...
func StateHeader(labels []string, width int) []string {
	header := []string{"frame", "time"}
	if len(labels) == width {
		return append(header, labels...)
	}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	return header
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeStates(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)
	if len(result.Samples) > 0 {
		if err := w.Write(StateHeader(result.Labels, len(result.Samples[0].State))); err != nil {
			return err
		}
	}
	for _, smp := range result.Samples {
		row := []string{strconv.Itoa(smp.Frame), formatFloat(smp.Time)}
		for _, v := range smp.State {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func derivedRows(result *sim.Result) []DerivedRow {
	var rows []DerivedRow
	for _, smp := range result.Samples {
		for _, q := range smp.Derived {
			rows = append(rows, DerivedRow{
				Frame: smp.Frame,
				Time:  smp.Time,
				Name:  q.Name,
				Label: q.Label,
				Unit:  q.Unit,
				Value: q.Value,
			})
		}
	}
	return rows
}

func eventRows(result *sim.Result) []EventRow {
	rows := make([]EventRow, 0, len(result.Events))
	for _, e := range result.Events {
		rows = append(rows, EventRow{Time: e.Time, Name: e.Name, Detail: e.Detail})
	}
	return rows
}

func writeRows[T any](path string, rows []T) error {
	return writeFile(path, func(w io.Writer) error {
		if len(rows) == 0 {
			return nil
		}
		if err := gocsv.Marshal(rows, w); err != nil {
			return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Latest returns the most recent run, or ErrRunNotFound for an empty store.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: store is empty", ErrRunNotFound)
	}
	return &runs[len(runs)-1], nil
}

func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

func (s *Store) path(runID, name string) string {
	return filepath.Join(s.baseDir, filepath.Base(runID), name)
}

// LoadStates reads states.csv back as frames, times and state vectors.
func (s *Store) LoadStates(runID string) ([]int, []float64, []dynamo.State, error) {
	file, err := os.Open(s.path(runID, statesFile))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []int{}, []float64{}, []dynamo.State{}, nil
	}

	frames := make([]int, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}

		state := make(dynamo.State, 0, len(record)-2)
		for _, field := range record[2:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}
		frames = append(frames, frame)
		times = append(times, t)
		states = append(states, state)
	}
	return frames, times, states, nil
}

func (s *Store) LoadDerived(runID string) ([]DerivedRow, error) {
	return readRows[DerivedRow](s.path(runID, derivedFile))
}

func (s *Store) LoadEvents(runID string) ([]EventRow, error) {
	return readRows[EventRow](s.path(runID, eventsFile))
}

func readRows[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	var rows []T
	if info.Size() == 0 {
		return rows, nil
	}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// LoadResult rebuilds the recorded trace of a run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	kind, err := dynamo.ParseKind(meta.Kind)
	if err != nil {
		return nil, nil, err
	}
	status, err := dynamo.ParseStatus(meta.Status)
	if err != nil {
		return nil, nil, err
	}
	frames, times, states, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	derived, err := s.LoadDerived(runID)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, nil, err
	}

	res := &sim.Result{
		Kind:    kind,
		Labels:  meta.Labels,
		Params:  meta.Params,
		Status:  status,
		Frames:  meta.Frames,
		Elapsed: meta.Elapsed,
	}
	byFrame := make(map[int]int, len(frames))
	for i := range frames {
		byFrame[frames[i]] = i
		res.Samples = append(res.Samples, sim.Sample{Frame: frames[i], Time: times[i], State: states[i]})
	}
	for _, row := range derived {
		i, ok := byFrame[row.Frame]
		if !ok {
			continue
		}
		res.Samples[i].Derived = append(res.Samples[i].Derived, dynamo.Quantity{
			Name:  row.Name,
			Label: row.Label,
			Unit:  row.Unit,
			Value: row.Value,
		})
	}
	for _, e := range events {
		res.Events = append(res.Events, dynamo.Event{Name: e.Name, Time: e.Time, Detail: e.Detail})
	}
	return meta, res, nil
}
