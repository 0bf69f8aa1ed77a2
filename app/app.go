package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jekabolt/ecomm-insights/config"
	httpapi "github.com/jekabolt/ecomm-insights/internal/api/http"
	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/dependency"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
	"github.com/jekabolt/ecomm-insights/internal/logistics"
	"github.com/jekabolt/ecomm-insights/internal/metrics"
	"github.com/jekabolt/ecomm-insights/internal/sales"
	"github.com/jekabolt/ecomm-insights/internal/source"
)

// App is the main application
type App struct {
	c        *config.Config
	src      dependency.TableSource
	closer   io.Closer
	session  *dataset.Session
	metrics  *metrics.Registry
	hs       *httpapi.Server
	done     chan struct{}
	stopOnce sync.Once
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// OpenSource returns the table source selected by c. The closer is nil when
// the source holds no resources.
func OpenSource(ctx context.Context, c *config.DatasetConfig) (dependency.TableSource, io.Closer, error) {
	switch c.Source {
	case config.SourceParquet:
		return source.NewParquetSource(&c.Parquet), nil, nil
	case config.SourceMySQL:
		s, err := source.NewSQLSource(ctx, &c.MySQL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset source %q", c.Source)
	}
}

// Start loads the dataset and starts the http server. A failed load is fatal.
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting ecomm-insights",
		slog.String("source", a.c.Dataset.Source),
	)

	a.src, a.closer, err = OpenSource(ctx, &a.c.Dataset)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't open dataset source", slog.String("err", err.Error()))
		return err
	}

	a.metrics = metrics.NewRegistry()
	a.session = dataset.NewSession(dataset.NewLoader(a.src))
	rep, err := a.session.Load(ctx)
	a.metrics.ObserveLoad(rep)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't load dataset", slog.String("err", err.Error()))
		a.closeSource(ctx)
		return err
	}

	engine, err := forecast.New(&a.c.Forecast)
	if err != nil {
		a.closeSource(ctx)
		return err
	}
	runner := forecast.NewRunner(engine)
	runner.OnChange(func(s forecast.Status) {
		a.metrics.SetForecastState(s.State)
	})
	a.metrics.SetForecastState(runner.Status().State)

	a.hs = httpapi.New(&a.c.HTTP, a.session, sales.New(&a.c.Sales), logistics.New(&a.c.Logistics), runner, a.metrics)
	if err = a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server", slog.String("err", err.Error()))
		a.closeSource(ctx)
		return err
	}
	go func() {
		<-a.hs.Done()
		a.stopOnce.Do(func() {
			a.closeSource(ctx)
			close(a.done)
		})
	}()
	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown failed", slog.String("err", err.Error()))
		}
	}
	a.stopOnce.Do(func() {
		a.closeSource(ctx)
		close(a.done)
	})
}

func (a *App) closeSource(ctx context.Context) {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		slog.Default().ErrorContext(ctx, "couldn't close dataset source", slog.String("err", err.Error()))
	}
	a.closer = nil
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
