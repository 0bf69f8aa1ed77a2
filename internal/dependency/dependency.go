package dependency

import (
	"context"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/jekabolt/ecomm-insights/internal/source"
)

//go:generate mockery --with-expecter --case underscore --all --output=./mocks
type (
	TableSource interface {
		// Read returns only the requested columns of table.
		Read(ctx context.Context, table source.Table, columns []string) (*source.Frame, error)
	}

	Translator interface {
		CategoryLabel(code string) string
		CategoryCode(label string) string
		CategoryCodes(labels []string) []string
		CategoryOptions(codes []string) []entity.CategoryOption
		PaymentLabel(paymentType string) string
		WeekdayLabel(d time.Weekday) string
		DeliveryStatusLabel(s entity.DeliveryStatus) string
	}
)
