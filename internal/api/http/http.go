package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/jekabolt/ecomm-insights/internal/dataset"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
	"github.com/jekabolt/ecomm-insights/internal/logistics"
	"github.com/jekabolt/ecomm-insights/internal/metrics"
	"github.com/jekabolt/ecomm-insights/internal/middleware"
	"github.com/jekabolt/ecomm-insights/internal/ratelimit"
	"github.com/jekabolt/ecomm-insights/internal/sales"
)

// Config is the configuration for the http server
type Config struct {
	Port           string        `mapstructure:"port"`
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// HeavyRequestsPerMinute limits forecast fits and reloads per client; 0 disables it.
	HeavyRequestsPerMinute int `mapstructure:"heavy_requests_per_minute"`
}

// Session is the dataset owner the handlers read from.
type Session interface {
	ID() string
	Dataset() (*dataset.Dataset, error)
	Reload(ctx context.Context) (*dataset.LoadReport, error)
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}

	session   Session
	sales     *sales.Aggregator
	logistics *logistics.Deriver
	forecast  *forecast.Runner
	metrics   *metrics.Registry
	limiter   *ratelimit.Limiter
}

// New creates a new server
func New(c *Config, session Session, agg *sales.Aggregator, dv *logistics.Deriver, runner *forecast.Runner, reg *metrics.Registry) *Server {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		c:         c,
		done:      make(chan struct{}),
		session:   session,
		sales:     agg,
		logistics: dv,
		forecast:  runner,
		metrics:   reg,
	}
	if c.HeavyRequestsPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(time.Minute, c.HeavyRequestsPerMinute)
	}
	return s
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Router builds the http handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return isOriginAllowed(origin, s.c.AllowedOrigins)
		},
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding"},
		MaxAge:         300,
	}))
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ClientIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.c.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/options", s.getOptions)
		r.Get("/sales", s.getSales)
		r.Get("/logistics", s.getLogistics)
		r.Get("/forecast", s.getForecast)
		r.With(s.limit).Post("/forecast", s.fitForecast)
		r.Get("/forecast/state", s.getForecastState)
		r.With(s.limit).Post("/reload", s.reload)
	})
	return r
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, "ecomm-insights listening",
			slog.String("addr", "http://"+listenerAddr),
			slog.String("session", s.session.ID()),
		)
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}

// limit rejects a client that exceeded its heavy request budget.
func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			ip := middleware.GetClientIP(r.Context())
			if !s.limiter.Allow(ip) {
				w.Header().Set("Retry-After", strconv.Itoa(int(s.limiter.Window().Seconds())))
				renderErr(w, r, gerr.ErrRateLimited)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	// Always allow localhost origins
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "https://localhost:") {
		return true
	}
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || origin == allowedOrigin {
			return true
		}
	}
	return false
}
