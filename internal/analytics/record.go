package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is the unit the engine aggregates: a customer signup or a
// transaction. Signups carry a zero Amount and count as one.
type Record struct {
	SubjectID int64
	Timestamp time.Time
	Amount    decimal.Decimal
	Segment   string
	Category  string
	Anomalous bool
}

// Granularity is the width of a period or bucket.
type Granularity string

const (
	Day    Granularity = "day"
	Week   Granularity = "week"
	Month  Granularity = "month"
	Year   Granularity = "year"
	Custom Granularity = "custom"
)

// Calendar reports whether g is a calendar unit that buckets can be cut on.
func (g Granularity) Calendar() bool {
	switch g {
	case Day, Week, Month, Year:
		return true
	}
	return false
}

// Truncate returns the start of the period of granularity g containing t,
// in t's location. Weeks start on Monday.
func Truncate(t time.Time, g Granularity) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

// Advance returns the start of the period following the one beginning at start.
func Advance(start time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Year:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// InLocation returns a copy of records with timestamps expressed in loc.
func InLocation(records []Record, loc *time.Location) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Timestamp = r.Timestamp.In(loc)
		out[i] = r
	}
	return out
}
