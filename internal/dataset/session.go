package dataset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
)

// Session owns the dataset of one analytics session. It is constructed once,
// loaded explicitly and only replaced by an explicit Reload.
type Session struct {
	id     string
	loader *Loader

	mu     sync.RWMutex
	ds     *Dataset
	report *LoadReport
}

func NewSession(loader *Loader) *Session {
	return &Session{
		id:     uuid.NewString(),
		loader: loader,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Load loads the dataset if it is not loaded yet.
func (s *Session) Load(ctx context.Context) (*LoadReport, error) {
	s.mu.RLock()
	rep := s.report
	s.mu.RUnlock()
	if rep != nil {
		return rep, nil
	}
	return s.Reload(ctx)
}

// Reload builds a new dataset and swaps it in. On failure the current dataset
// stays in place.
func (s *Session) Reload(ctx context.Context) (*LoadReport, error) {
	ds, rep, err := s.loader.Load(ctx)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't load dataset",
			slog.String("session", s.id),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	s.mu.Lock()
	s.ds = ds
	s.report = rep
	s.mu.Unlock()
	return rep, nil
}

// Dataset returns the loaded dataset or gerr.ErrNotLoaded.
func (s *Session) Dataset() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, gerr.ErrNotLoaded
	}
	return s.ds, nil
}

// Report returns the report of the last successful load.
func (s *Session) Report() *LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}
