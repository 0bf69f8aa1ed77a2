package cache

import (
	"log/slog"
	"sort"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
)

var weekdayLabels = [7]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
}

var deliveryStatusLabels = map[entity.DeliveryStatus]string{
	entity.DeliveryOnTime: "No Prazo",
	entity.DeliveryLate:   "Atrasado",
}

// Translator maps internal codes to display labels. It is built once per
// dataset and is safe for concurrent use.
type Translator struct {
	Category      *CategoryCache
	PaymentMethod *PaymentMethodCache
}

func NewTranslator(translations []entity.CategoryTranslation) (*Translator, error) {
	cc, err := newCategoryCache(translations)
	if err != nil {
		slog.Default().Error("cant build category translations",
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	return &Translator{
		Category:      cc,
		PaymentMethod: newPaymentMethodCache(),
	}, nil
}

// category
func (t *Translator) CategoryLabel(code string) string {
	return t.Category.GetLabel(code)
}
func (t *Translator) CategoryCode(label string) string {
	return t.Category.GetCode(label)
}

// CategoryCodes reverse-maps a set of display labels to category codes.
func (t *Translator) CategoryCodes(labels []string) []string {
	codes := make([]string, 0, len(labels))
	for _, l := range labels {
		codes = append(codes, t.Category.GetCode(l))
	}
	return codes
}

// CategoryOptions returns the labelled categories of a domain sorted by label.
func (t *Translator) CategoryOptions(codes []string) []entity.CategoryOption {
	opts := make([]entity.CategoryOption, 0, len(codes))
	for _, c := range codes {
		opts = append(opts, entity.CategoryOption{Code: c, Label: t.Category.GetLabel(c)})
	}
	sort.SliceStable(opts, func(i, j int) bool {
		return opts[i].Label < opts[j].Label
	})
	return opts
}

// payment method
func (t *Translator) PaymentLabel(paymentType string) string {
	return t.PaymentMethod.GetLabel(paymentType)
}

// weekday
func (t *Translator) WeekdayLabel(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return d.String()
	}
	return weekdayLabels[d]
}

// delivery status
func (t *Translator) DeliveryStatusLabel(s entity.DeliveryStatus) string {
	if l, ok := deliveryStatusLabels[s]; ok {
		return l
	}
	return string(s)
}
