package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/dto"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
	"github.com/jekabolt/ecomm-insights/internal/form"
)

const (
	viewSales     = "sales"
	viewLogistics = "logistics"
	viewForecast  = "forecast"
)

func (s *Server) getOptions(w http.ResponseWriter, r *http.Request) {
	ds, err := s.session.Dataset()
	if err != nil {
		renderErr(w, r, err)
		return
	}
	render.JSON(w, r, dto.ConvertFilterOptions(ds.Options()))
}

// listParam returns nil when key is absent, so an absent list selects all.
// Present values are split on commas and blanks dropped.
func listParam(r *http.Request, key string) []string {
	vs, ok := r.URL.Query()[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range vs {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// parseFilter reads start, end, state and category query params. Missing
// dates default to the dataset range, missing lists to every value.
func parseFilter(r *http.Request, ds *dataset.Dataset) (entity.Filter, error) {
	opts := ds.Options()
	q := r.URL.Query()
	req := &form.DashboardFilterRequest{
		StartDate:      q.Get("start"),
		EndDate:        q.Get("end"),
		States:         listParam(r, "state"),
		CategoryLabels: listParam(r, "category"),
	}
	if req.StartDate == "" {
		req.StartDate = opts.MinDate.Format("2006-01-02")
	}
	if req.EndDate == "" {
		req.EndDate = opts.MaxDate.Format("2006-01-02")
	}
	if err := req.Validate(); err != nil {
		return entity.Filter{}, err
	}

	sel := dataset.Selection{States: req.States, CategoryLabels: req.CategoryLabels}
	sel.StartDate, sel.EndDate = req.Dates()
	if req.States == nil {
		sel.States = opts.States
	}
	if req.CategoryLabels == nil {
		for _, c := range opts.Categories {
			sel.CategoryLabels = append(sel.CategoryLabels, c.Label)
		}
	}
	return ds.NewFilter(sel), nil
}

func (s *Server) getSales(w http.ResponseWriter, r *http.Request) {
	s.metrics.Requests.WithLabelValues(viewSales).Inc()
	ds, err := s.session.Dataset()
	if err != nil {
		renderErr(w, r, err)
		return
	}
	f, err := parseFilter(r, ds)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	rep, err := s.sales.Report(r.Context(), ds, f)
	if err != nil {
		if errors.Is(err, gerr.ErrEmptyResult) {
			s.metrics.EmptyResults.WithLabelValues(viewSales).Inc()
		}
		renderErr(w, r, err)
		return
	}
	render.JSON(w, r, dto.ConvertSalesReport(rep))
}

func (s *Server) getLogistics(w http.ResponseWriter, r *http.Request) {
	s.metrics.Requests.WithLabelValues(viewLogistics).Inc()
	ds, err := s.session.Dataset()
	if err != nil {
		renderErr(w, r, err)
		return
	}
	f, err := parseFilter(r, ds)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	rep, err := s.logistics.Report(r.Context(), ds, f)
	if err != nil {
		if errors.Is(err, gerr.ErrEmptyResult) {
			s.metrics.EmptyResults.WithLabelValues(viewLogistics).Inc()
		}
		renderErr(w, r, err)
		return
	}
	render.JSON(w, r, dto.ConvertLogisticsReport(rep))
}

func (s *Server) maxHorizon() int {
	return s.forecast.Engine().Config().MaxHorizonMonths
}

// getForecast serves the cached forecast of a horizon without fitting.
func (s *Server) getForecast(w http.ResponseWriter, r *http.Request) {
	ds, err := s.session.Dataset()
	if err != nil {
		renderErr(w, r, err)
		return
	}
	h, err := strconv.Atoi(r.URL.Query().Get("horizonMonths"))
	if err != nil {
		_ = render.Render(w, r, ErrInvalidRequest(fmt.Errorf("horizonMonths must be an integer")))
		return
	}
	if err := s.forecast.Engine().ValidateHorizon(h); err != nil {
		renderErr(w, r, err)
		return
	}
	res, ok := s.forecast.Result(ds, h)
	if !ok {
		renderErr(w, r, gerr.New(gerr.KindPrecondition, fmt.Sprintf("no forecast fitted for %d months", h)))
		return
	}
	render.JSON(w, r, dto.ConvertForecast(res))
}

// fitForecast runs a blocking fit for the requested horizon.
func (s *Server) fitForecast(w http.ResponseWriter, r *http.Request) {
	s.metrics.Requests.WithLabelValues(viewForecast).Inc()
	req := &form.ForecastRequest{}
	if err := render.DecodeJSON(r.Body, req); err != nil {
		_ = render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	req.MaxHorizon = s.maxHorizon()
	if err := req.Validate(); err != nil {
		renderErr(w, r, err)
		return
	}

	ds, err := s.session.Dataset()
	if err != nil {
		renderErr(w, r, err)
		return
	}

	s.forecast.SetHorizon(req.HorizonMonths)
	_, cached := s.forecast.Result(ds, req.HorizonMonths)
	res, err := s.forecast.Fit(r.Context(), ds, req.HorizonMonths, func(stage forecast.Stage, done float64) {
		slog.Default().DebugContext(r.Context(), "forecast progress",
			slog.String("stage", string(stage)),
			slog.Float64("done", done),
		)
	})
	if err != nil {
		renderErr(w, r, err)
		return
	}
	if !cached {
		s.metrics.ObserveFit(res.FitDuration)
	}
	render.JSON(w, r, dto.ConvertForecast(res))
}

func (s *Server) getForecastState(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, dto.ConvertForecastStatus(s.forecast.Status()))
}

type reloadResponse struct {
	Session string         `json:"session"`
	Records int            `json:"records"`
	Dropped int            `json:"dropped"`
	Tables  map[string]int `json:"tables"`
	TookMs  int64          `json:"tookMs"`
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	rep, err := s.session.Reload(r.Context())
	s.metrics.ObserveLoad(rep)
	if err != nil {
		renderErr(w, r, err)
		return
	}
	s.forecast.Reset()

	resp := reloadResponse{
		Session: s.session.ID(),
		Records: rep.Records,
		Dropped: rep.DroppedTimestamp,
		Tables:  make(map[string]int, len(rep.TableRows)),
		TookMs:  rep.Took.Milliseconds(),
	}
	for t, n := range rep.TableRows {
		resp.Tables[string(t)] = n
	}
	render.JSON(w, r, resp)
}
