package entity

import "time"

// Filter selects the rows a dashboard view works on.
// The date range is half-open: From <= purchased_at < To.
// States and Categories are taken literally; an empty selection matches nothing.
type Filter struct {
	From       time.Time
	To         time.Time
	States     []string
	Categories []string
}

// FilterOptions describes the values a caller can choose from.
type FilterOptions struct {
	MinDate    time.Time
	MaxDate    time.Time
	States     []string
	Categories []CategoryOption
}

// CategoryOption pairs a category code with its display label.
type CategoryOption struct {
	Code  string
	Label string
}
