package form

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
)

type ForecastRequest struct {
	HorizonMonths int `json:"horizonMonths"`
	MaxHorizon    int `json:"-"`
}

func (r *ForecastRequest) Validate() error {
	return ValidateStruct(r,
		v.Field(&r.HorizonMonths, v.Required, v.Min(1), v.Max(r.MaxHorizon)),
	)
}
