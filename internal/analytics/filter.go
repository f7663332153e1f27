package analytics

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

// FilterConfig is the set of optional filters for one request. A nil field
// is a filter that is switched off. It is built once at the request boundary
// and passed by value through the pipeline.
type FilterConfig struct {
	Segment      *domain.Segment
	DateRange    *Period
	MinSpent     *decimal.Decimal
	HasAnomalies *bool
}

// SubjectTotals is a subject's spend and anomaly profile across its full
// transaction history.
type SubjectTotals struct {
	Transactions int
	Spent        decimal.Decimal
	Anomalies    int
}

// SubjectIndex maps subject ID to its totals. Subject-level filters are
// evaluated against it rather than against individual records.
type SubjectIndex map[int64]SubjectTotals

// BuildSubjectIndex totals every transaction per subject.
func BuildSubjectIndex(transactions []Record) SubjectIndex {
	idx := make(SubjectIndex)
	for _, r := range transactions {
		t := idx[r.SubjectID]
		t.Transactions++
		t.Spent = t.Spent.Add(r.Amount)
		if r.Anomalous {
			t.Anomalies++
		}
		idx[r.SubjectID] = t
	}
	return idx
}

type predicate func(Record) bool

func (f FilterConfig) predicates(subjects SubjectIndex) []predicate {
	var preds []predicate
	if f.Segment != nil {
		seg := string(*f.Segment)
		preds = append(preds, func(r Record) bool { return r.Segment == seg })
	}
	if f.DateRange != nil {
		dr := *f.DateRange
		preds = append(preds, func(r Record) bool {
			if !dr.Start.IsZero() && r.Timestamp.Before(dr.Start) {
				return false
			}
			return dr.End.IsZero() || r.Timestamp.Before(dr.End)
		})
	}
	if f.MinSpent != nil {
		floor := *f.MinSpent
		preds = append(preds, func(r Record) bool {
			return subjects[r.SubjectID].Spent.GreaterThanOrEqual(floor)
		})
	}
	if f.HasAnomalies != nil {
		want := *f.HasAnomalies
		preds = append(preds, func(r Record) bool {
			return (subjects[r.SubjectID].Anomalies > 0) == want
		})
	}
	return preds
}

// ApplyFilters keeps the records that pass every enabled filter. With no
// filters enabled it returns a copy of records.
func ApplyFilters(records []Record, f FilterConfig, subjects SubjectIndex) []Record {
	preds := f.predicates(subjects)
	out := make([]Record, 0, len(records))
next:
	for _, r := range records {
		for _, keep := range preds {
			if !keep(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Within returns a copy of f whose date range is narrowed to p.
func (f FilterConfig) Within(p Period) FilterConfig {
	narrowed := p
	if f.DateRange != nil {
		if f.DateRange.Start.After(narrowed.Start) {
			narrowed.Start = f.DateRange.Start
		}
		if !f.DateRange.End.IsZero() && f.DateRange.End.Before(narrowed.End) {
			narrowed.End = f.DateRange.End
		}
		if narrowed.End.Before(narrowed.Start) {
			narrowed.End = narrowed.Start
		}
	}
	f.DateRange = &narrowed
	return f
}

// Bounds on min_spent. Customer totals are sums of decimal(10,2) amounts.
const (
	maxMinSpentLen = 32
	minSpentMinExp = -10
	minSpentMaxExp = 15
)

var maxMinSpent = decimal.New(1, 15)

// ParseFilterConfig reads the filter query parameters. Dates are
// interpreted in loc; date_to is inclusive of the named day. A segment of
// "all" is the same as no segment.
func ParseFilterConfig(q url.Values, loc *time.Location) (FilterConfig, error) {
	var f FilterConfig

	if v := strings.TrimSpace(q.Get("segment")); v != "" && !strings.EqualFold(v, "all") {
		seg, ok := matchSegment(v)
		if !ok {
			return FilterConfig{}, invalid("segment", "unknown segment %q", v)
		}
		f.Segment = &seg
	}

	from, to := strings.TrimSpace(q.Get("date_from")), strings.TrimSpace(q.Get("date_to"))
	if from != "" || to != "" {
		var dr Period
		if from != "" {
			t, err := time.ParseInLocation(DateLayout, from, loc)
			if err != nil {
				return FilterConfig{}, invalid("date_from", "%q is not a YYYY-MM-DD date", from)
			}
			dr.Start = t
		}
		if to != "" {
			t, err := time.ParseInLocation(DateLayout, to, loc)
			if err != nil {
				return FilterConfig{}, invalid("date_to", "%q is not a YYYY-MM-DD date", to)
			}
			dr.End = t.AddDate(0, 0, 1)
		}
		if !dr.Start.IsZero() && !dr.End.IsZero() && !dr.Start.Before(dr.End) {
			return FilterConfig{}, invalid("date_from", "%s is after date_to %s", from, to)
		}
		dr.Granularity = Custom
		f.DateRange = &dr
	}

	if v := strings.TrimSpace(q.Get("min_spent")); v != "" {
		if len(v) > maxMinSpentLen {
			return FilterConfig{}, invalid("min_spent", "must be at most %d characters", maxMinSpentLen)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return FilterConfig{}, invalid("min_spent", "%q is not a number", v)
		}
		// Exponent first: comparing against a huge exponent rescales to a
		// huge big.Int.
		if e := d.Exponent(); e < minSpentMinExp || e > minSpentMaxExp || d.GreaterThan(maxMinSpent) {
			return FilterConfig{}, invalid("min_spent", "%q is out of range (0 to %s)", v, maxMinSpent)
		}
		if d.IsNegative() {
			return FilterConfig{}, invalid("min_spent", "must not be negative")
		}
		f.MinSpent = &d
	}

	if v := strings.TrimSpace(q.Get("has_anomalies")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return FilterConfig{}, invalid("has_anomalies", "%q is not a boolean", v)
		}
		f.HasAnomalies = &b
	}

	return f, nil
}

func matchSegment(v string) (domain.Segment, bool) {
	for _, s := range domain.Segments() {
		if strings.EqualFold(v, string(s)) {
			return s, true
		}
	}
	return "", false
}
