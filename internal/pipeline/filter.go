// Package pipeline implements the filter, aggregate and present stages shared by
// the finance pages and the scheduling dashboard.
package pipeline

import (
	"strings"
	"time"
)

// Record is a flat transaction or appointment entry.
type Record interface {
	// RecordDate returns the record's calendar date. A zero value marks a missing
	// or malformed date.
	RecordDate() time.Time
	RecordCategory() string
	RecordType() string
	// RecordAmount returns the amount in minor units.
	RecordAmount() int64
	// RecordText returns the fields matched by a text query.
	RecordText() []string
}

// DateRange bounds records by calendar day. Both ends are inclusive and either
// may be nil.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Spec is the conjunction of active search criteria. Empty fields always match.
type Spec struct {
	Query    string
	Category string
	Type     string
	Dates    *DateRange
}

// IsZero reports whether the spec has no active criteria.
func (s Spec) IsZero() bool {
	return strings.TrimSpace(s.Query) == "" &&
		strings.TrimSpace(s.Category) == "" &&
		strings.TrimSpace(s.Type) == "" &&
		(s.Dates == nil || (s.Dates.From == nil && s.Dates.To == nil))
}

// Filter returns the records that satisfy every present criterion of spec, in
// their original order.
func Filter[R Record](records []R, spec Spec) []R {
	m := newMatcher(spec)

	out := make([]R, 0, len(records))

	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}

	return out
}

// Total sums the amount of all records.
func Total[R Record](records []R) int64 {
	var sum int64
	for _, r := range records {
		sum += r.RecordAmount()
	}

	return sum
}

type matcher struct {
	query    string
	category string
	typ      string
	bounded  bool
	from     int
	to       int
}

func newMatcher(spec Spec) *matcher {
	m := &matcher{}

	m.query = m.fold(spec.Query)
	m.category = m.fold(spec.Category)
	m.typ = m.fold(spec.Type)

	// Open ends default to the widest representable day keys.
	m.from, m.to = minDayKey, maxDayKey

	if spec.Dates != nil {
		if spec.Dates.From != nil {
			m.bounded = true
			m.from = DayKey(*spec.Dates.From)
		}

		if spec.Dates.To != nil {
			m.bounded = true
			m.to = DayKey(*spec.Dates.To)
		}
	}

	return m
}

func (m *matcher) match(r Record) bool {
	if m.category != "" && m.fold(r.RecordCategory()) != m.category {
		return false
	}

	if m.typ != "" && m.fold(r.RecordType()) != m.typ {
		return false
	}

	if m.bounded {
		d := r.RecordDate()
		if d.IsZero() {
			return false
		}

		k := DayKey(d)
		if k < m.from || k > m.to {
			return false
		}
	}

	if m.query != "" {
		return m.matchText(r.RecordText())
	}

	return true
}

func (m *matcher) matchText(fields []string) bool {
	for _, f := range fields {
		if strings.Contains(m.fold(f), m.query) {
			return true
		}
	}

	return false
}

func (m *matcher) fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	return Fold(s)
}
