package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/physlab/internal/dynamo"
)

// RunConfig drives a headless run at a fixed frame rate.
type RunConfig struct {
	FPS      float64
	Duration float64 // seconds of frame time
	MaxDt    float64 // 0 selects DefaultMaxDt
	Every    int     // record every n-th frame

	// ValidateState aborts the run when the state vector goes non-finite.
	ValidateState bool
	Logger        *slog.Logger
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		FPS:           60,
		Duration:      10,
		MaxDt:         DefaultMaxDt,
		Every:         1,
		ValidateState: true,
	}
}

func (c RunConfig) validate() error {
	if !(c.FPS > 0) || math.IsInf(c.FPS, 0) {
		return fmt.Errorf("%w: fps must be positive, got %v", dynamo.ErrInvalidConfig, c.FPS)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidConfig, c.Duration)
	}
	if c.MaxDt < 0 {
		return fmt.Errorf("%w: max dt must not be negative, got %v", dynamo.ErrInvalidConfig, c.MaxDt)
	}
	return nil
}

// durationEps absorbs the nanosecond rounding of the frame interval.
const durationEps = 1e-6

// Run launches sim under a Controller over ManualFrames and advances one
// frame interval at a time until the summed clamped dt reaches Duration or
// the simulation stops. Cancelling ctx returns the partial trace with
// ctx.Err().
func Run(ctx context.Context, sim dynamo.Simulation, cfg RunConfig) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	frames := NewManualFrames(time.Unix(0, 0))
	rec := &Recorder{Every: cfg.Every}
	ctrl := NewController(sim, frames, WithLogger(logger), WithMaxDt(cfg.MaxDt), WithObserver(rec))
	defer ctrl.Close()

	if err := ctrl.Launch(); err != nil {
		return nil, err
	}
	rec.Restart(sim)

	interval := time.Duration(float64(time.Second) / cfg.FPS)
	step := math.Min(interval.Seconds(), ctrl.MaxDt())
	// The cap only matters if a frame fails to advance the clock.
	limit := int(math.Ceil(cfg.Duration/step-1e-9)) + 1
	logger.Debug("run", "sim", sim.Kind().String(), "frames", limit-1, "fps", cfg.FPS, "dt", step)

	res := rec.Result()
	for i := 0; i < limit && ctrl.Status() == dynamo.StatusRunning && sim.Elapsed() < cfg.Duration-durationEps; i++ {
		if err := ctx.Err(); err != nil {
			res.Wall = time.Since(start)
			return res, err
		}
		frames.Advance(interval)

		if cfg.ValidateState {
			if x := sim.Snapshot(); !x.IsValid() {
				res.Wall = time.Since(start)
				return res, &dynamo.SimulationError{
					Frame:   ctrl.Frame(),
					Time:    sim.Elapsed(),
					State:   x.Clone(),
					Wrapped: dynamo.ErrInvalidState,
				}
			}
		}
	}

	res.Wall = time.Since(start)
	return res, nil
}
