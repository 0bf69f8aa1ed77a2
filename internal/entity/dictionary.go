package entity

import "sort"

// Level is the compact index of a value inside a Domain.
type Level uint16

// NoLevel marks a value that is not part of the domain.
const NoLevel Level = ^Level(0)

// Domain is the fixed, sorted value set of a categorical column, known after load.
// Records store a Level instead of repeating the string value.
type Domain struct {
	values []string
	index  map[string]Level
}

// NewDomain builds a domain from the distinct values in vs, sorted ascending.
func NewDomain(vs []string) *Domain {
	seen := make(map[string]struct{}, len(vs))
	values := make([]string, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)

	d := &Domain{
		values: values,
		index:  make(map[string]Level, len(values)),
	}
	for i, v := range values {
		d.index[v] = Level(i)
	}
	return d
}

// Len returns the number of values in the domain.
func (d *Domain) Len() int {
	return len(d.values)
}

// Value returns the value stored at level l.
func (d *Domain) Value(l Level) string {
	if int(l) >= len(d.values) {
		return ""
	}
	return d.values[l]
}

// Level returns the level of v or NoLevel when v is not in the domain.
func (d *Domain) Level(v string) Level {
	l, ok := d.index[v]
	if !ok {
		return NoLevel
	}
	return l
}

// Values returns a copy of the sorted domain values.
func (d *Domain) Values() []string {
	out := make([]string, len(d.values))
	copy(out, d.values)
	return out
}

// Mask converts a value selection to a per-level membership mask.
// Values outside the domain are ignored.
func (d *Domain) Mask(selected []string) []bool {
	mask := make([]bool, len(d.values))
	for _, v := range selected {
		if l, ok := d.index[v]; ok {
			mask[l] = true
		}
	}
	return mask
}
