package forecast

import (
	"context"
	"testing"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerLifecycle(t *testing.T) {
	ds := history(t, 60)
	r := NewRunner(engine(t, nil))

	var states []entity.ForecastState
	r.OnChange(func(s Status) { states = append(states, s.State) })

	assert.Equal(t, entity.ForecastIdle, r.Status().State)
	_, ok := r.Result(ds, 1)
	assert.False(t, ok)

	res, err := r.Fit(context.Background(), ds, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ForecastReady, r.Status().State)
	assert.Equal(t, 1, r.Status().HorizonMonths)
	assert.Equal(t, []entity.ForecastState{entity.ForecastFitting, entity.ForecastReady}, states)

	cached, ok := r.Result(ds, 1)
	require.True(t, ok)
	assert.Same(t, res, cached)

	// same horizon does not refit
	again, err := r.Fit(context.Background(), ds, 1, nil)
	require.NoError(t, err)
	assert.Same(t, res, again)

	// a new horizon drops the result
	r.SetHorizon(2)
	assert.Equal(t, entity.ForecastIdle, r.Status().State)
	_, ok = r.Result(ds, 1)
	assert.False(t, ok)

	res2, err := r.Fit(context.Background(), ds, 2, nil)
	require.NoError(t, err)
	assert.NotSame(t, res, res2)
	assert.Len(t, res2.Future(), 60)

	// another dataset is never served from cache
	other := history(t, 60)
	_, ok = r.Result(other, 2)
	assert.False(t, ok)

	r.Reset()
	assert.Equal(t, entity.ForecastIdle, r.Status().State)
	assert.Equal(t, 2, r.Status().HorizonMonths)
}

func TestRunnerRejectsConcurrentFit(t *testing.T) {
	ds := history(t, 60)
	r := NewRunner(engine(t, nil))

	var inner error
	var seen Status
	_, err := r.Fit(context.Background(), ds, 1, func(stage Stage, _ float64) {
		if stage != StageFit {
			return
		}
		seen = r.Status()
		_, inner = r.Fit(context.Background(), ds, 3, nil)
		r.SetHorizon(5)
		r.Reset()
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, gerr.ErrFitInProgress)
	assert.Equal(t, gerr.KindBusy, gerr.KindOf(inner))
	assert.Equal(t, entity.ForecastFitting, seen.State)
	assert.Equal(t, StageFit, seen.Stage)

	// calls made while fitting left the run alone
	st := r.Status()
	assert.Equal(t, entity.ForecastReady, st.State)
	assert.Equal(t, 1, st.HorizonMonths)
}

func TestRunnerFailureReturnsToIdle(t *testing.T) {
	r := NewRunner(engine(t, nil))

	_, err := r.Fit(context.Background(), history(t, 10), 1, nil)
	require.Error(t, err)
	assert.Equal(t, gerr.KindPrecondition, gerr.KindOf(err))
	st := r.Status()
	assert.Equal(t, entity.ForecastIdle, st.State)
	assert.NotEmpty(t, st.LastError)

	_, err = r.Fit(context.Background(), history(t, 60), 0, nil)
	assert.Equal(t, gerr.KindInvalid, gerr.KindOf(err))
}
