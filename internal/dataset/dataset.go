package dataset

import (
	"time"

	"github.com/jekabolt/ecomm-insights/internal/cache"
	"github.com/jekabolt/ecomm-insights/internal/entity"
)

// Dataset is the immutable set of unified records of one session. Consumers
// must not modify Records.
type Dataset struct {
	Records      []entity.OrderRecord
	States       *entity.Domain
	Categories   *entity.Domain
	PaymentTypes *entity.Domain
	Translations []entity.CategoryTranslation
	Translator   *cache.Translator
	LoadedAt     time.Time
}

func newDataset(rows []joined, translations []entity.CategoryTranslation, tr *cache.Translator) *Dataset {
	states := make([]string, 0, len(rows))
	categories := make([]string, 0, len(rows))
	paymentTypes := make([]string, 0, len(rows))
	for _, r := range rows {
		states = append(states, r.State)
		categories = append(categories, r.CategoryEnglish)
		paymentTypes = append(paymentTypes, r.PaymentType)
	}

	ds := &Dataset{
		States:       entity.NewDomain(states),
		Categories:   entity.NewDomain(categories),
		PaymentTypes: entity.NewDomain(paymentTypes),
		Translations: translations,
		Translator:   tr,
		Records:      make([]entity.OrderRecord, len(rows)),
		LoadedAt:     time.Now().UTC(),
	}
	for i, r := range rows {
		ds.Records[i] = entity.OrderRecord{
			OrderID:          r.OrderID,
			CustomerID:       r.CustomerID,
			CustomerUniqueID: r.CustomerUniqueID,
			State:            ds.States.Level(r.State),
			PurchasedAt:      r.PurchasedAt,
			DeliveredAt:      r.DeliveredAt,
			EstimatedAt:      r.EstimatedAt,
			ProductID:        r.ProductID,
			CategoryRaw:      r.CategoryRaw,
			Category:         ds.Categories.Level(r.CategoryEnglish),
			Price:            r.Price,
			ItemSeq:          r.ItemSeq,
			PaymentType:      ds.PaymentTypes.Level(r.PaymentType),
			PaymentValue:     r.PaymentValue,
			PaymentSeq:       r.PaymentSeq,
		}
	}
	return ds
}

// Len returns the number of unified records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// DateRange returns the first and last purchase timestamps.
func (d *Dataset) DateRange() (time.Time, time.Time) {
	var first, last time.Time
	for i := range d.Records {
		t := d.Records[i].PurchasedAt
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return first, last
}

// Options returns the values a filter can be built from. Dates are whole days.
func (d *Dataset) Options() entity.FilterOptions {
	first, last := d.DateRange()
	return entity.FilterOptions{
		MinDate:    truncateDay(first),
		MaxDate:    truncateDay(last),
		States:     d.States.Values(),
		Categories: d.Translator.CategoryOptions(d.Categories.Values()),
	}
}

// AllFilter selects every record of the dataset.
func (d *Dataset) AllFilter() entity.Filter {
	first, last := d.DateRange()
	return entity.Filter{
		From:       truncateDay(first),
		To:         truncateDay(last).AddDate(0, 0, 1),
		States:     d.States.Values(),
		Categories: d.Categories.Values(),
	}
}

// Selection is a user selection with an inclusive date range and category
// display labels.
type Selection struct {
	StartDate      time.Time
	EndDate        time.Time
	States         []string
	CategoryLabels []string
}

// NewFilter converts a selection to a half-open filter: the end date is
// moved one day forward and category labels are mapped back to codes.
func (d *Dataset) NewFilter(sel Selection) entity.Filter {
	return entity.Filter{
		From:       truncateDay(sel.StartDate),
		To:         truncateDay(sel.EndDate).AddDate(0, 0, 1),
		States:     sel.States,
		Categories: d.Translator.CategoryCodes(sel.CategoryLabels),
	}
}

// Matcher evaluates a filter against records using level masks.
type Matcher struct {
	from, to   time.Time
	states     []bool
	categories []bool
}

// Matcher builds a matcher for f.
func (d *Dataset) Matcher(f entity.Filter) *Matcher {
	return &Matcher{
		from:       f.From,
		to:         f.To,
		states:     d.States.Mask(f.States),
		categories: d.Categories.Mask(f.Categories),
	}
}

// Match reports whether r passes the filter.
func (m *Matcher) Match(r *entity.OrderRecord) bool {
	if r.PurchasedAt.Before(m.from) || !r.PurchasedAt.Before(m.to) {
		return false
	}
	if int(r.State) >= len(m.states) || !m.states[r.State] {
		return false
	}
	if int(r.Category) >= len(m.categories) || !m.categories[r.Category] {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
