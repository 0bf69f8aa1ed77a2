package form

import (
	"errors"
	"regexp"
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
)

var stateCode = regexp.MustCompile(`^[A-Z]{2}$`)

// DashboardFilterRequest is the raw sidebar selection. Dates are inclusive
// and formatted as 2006-01-02. A nil States or CategoryLabels selects all.
type DashboardFilterRequest struct {
	StartDate      string
	EndDate        string
	States         []string
	CategoryLabels []string
}

func (r *DashboardFilterRequest) Validate() error {
	return ValidateStruct(r,
		v.Field(&r.StartDate, v.Required, v.Date(time.DateOnly)),
		v.Field(&r.EndDate, v.Required, v.Date(time.DateOnly), v.By(r.notBeforeStart)),
		v.Field(&r.States, v.Each(v.Match(stateCode))),
		v.Field(&r.CategoryLabels, v.Each(v.Required, v.Length(1, 100))),
	)
}

func (r *DashboardFilterRequest) notBeforeStart(value interface{}) error {
	end, _ := value.(string)
	s, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return nil
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return nil
	}
	if e.Before(s) {
		return errors.New("end date must not be before start date")
	}
	return nil
}

// Dates returns the parsed dates of a validated request.
func (r *DashboardFilterRequest) Dates() (time.Time, time.Time) {
	s, _ := time.Parse(time.DateOnly, r.StartDate)
	e, _ := time.Parse(time.DateOnly, r.EndDate)
	return s, e
}
