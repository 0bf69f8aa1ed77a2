package forecast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
)

// Status is a snapshot of a Runner.
type Status struct {
	State         entity.ForecastState
	HorizonMonths int
	Stage         Stage
	Progress      float64
	StartedAt     time.Time
	LastError     string
}

// Runner holds the forecast of one session. Fits are explicit: idle ->
// fitting -> ready, and a different horizon or dataset drops the cached result.
type Runner struct {
	engine *Engine

	mu       sync.Mutex
	status   Status
	ds       *dataset.Dataset
	result   *entity.Forecast
	onChange func(Status)
}

func NewRunner(e *Engine) *Runner {
	return &Runner{
		engine: e,
		status: Status{State: entity.ForecastIdle},
	}
}

// Engine returns the engine the runner fits with.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// OnChange registers f to be called after every state change.
func (r *Runner) OnChange(f func(Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = f
}

// Status returns the current state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the cached forecast if it was fitted for horizonMonths on ds.
func (r *Runner) Result(ds *dataset.Dataset, horizonMonths int) (*entity.Forecast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.State != entity.ForecastReady || r.ds != ds || r.status.HorizonMonths != horizonMonths {
		return nil, false
	}
	return r.result, true
}

// SetHorizon selects the horizon. A change drops a ready result back to idle.
func (r *Runner) SetHorizon(horizonMonths int) {
	r.mu.Lock()
	if r.status.State == entity.ForecastFitting || r.status.HorizonMonths == horizonMonths {
		r.mu.Unlock()
		return
	}
	r.status = Status{State: entity.ForecastIdle, HorizonMonths: horizonMonths}
	r.result, r.ds = nil, nil
	r.unlockAndNotify()
}

// Reset drops the cached result, e.g. after a dataset reload.
func (r *Runner) Reset() {
	r.mu.Lock()
	if r.status.State == entity.ForecastFitting {
		r.mu.Unlock()
		return
	}
	r.status = Status{State: entity.ForecastIdle, HorizonMonths: r.status.HorizonMonths}
	r.result, r.ds = nil, nil
	r.unlockAndNotify()
}

// Fit runs the forecast for horizonMonths and caches it. A ready result for
// the same horizon and dataset is returned without refitting. Fit returns
// gerr.ErrFitInProgress while another fit runs.
func (r *Runner) Fit(ctx context.Context, ds *dataset.Dataset, horizonMonths int, progress ProgressFunc) (*entity.Forecast, error) {
	if err := r.engine.ValidateHorizon(horizonMonths); err != nil {
		return nil, err
	}

	r.mu.Lock()
	switch {
	case r.status.State == entity.ForecastFitting:
		r.mu.Unlock()
		return nil, gerr.ErrFitInProgress
	case r.status.State == entity.ForecastReady && r.ds == ds && r.status.HorizonMonths == horizonMonths:
		res := r.result
		r.mu.Unlock()
		return res, nil
	}
	r.status = Status{
		State:         entity.ForecastFitting,
		HorizonMonths: horizonMonths,
		Stage:         StageSeries,
		StartedAt:     time.Now().UTC(),
	}
	r.result, r.ds = nil, nil
	r.unlockAndNotify()

	res, err := r.engine.Forecast(ctx, ds, horizonMonths, func(stage Stage, done float64) {
		r.mu.Lock()
		r.status.Stage = stage
		r.status.Progress = done
		r.mu.Unlock()
		if progress != nil {
			progress(stage, done)
		}
	})

	r.mu.Lock()
	if err != nil {
		r.status = Status{State: entity.ForecastIdle, HorizonMonths: horizonMonths, LastError: err.Error()}
		r.unlockAndNotify()
		slog.Default().ErrorContext(ctx, "forecast fit failed",
			slog.Int("horizon_months", horizonMonths),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	r.status = Status{State: entity.ForecastReady, HorizonMonths: horizonMonths, Stage: StageDone, Progress: 1}
	r.result, r.ds = res, ds
	r.unlockAndNotify()
	return res, nil
}

// unlockAndNotify releases r.mu and reports the new status.
func (r *Runner) unlockAndNotify() {
	st, f := r.status, r.onChange
	r.mu.Unlock()
	if f != nil {
		f(st)
	}
}
