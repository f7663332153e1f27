package analytics

import (
	"strings"
	"time"
)

// DateLayout is the wire format for explicit date bounds.
const DateLayout = "2006-01-02"

// Period is the half-open interval [Start, End).
type Period struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Duration is the wall-clock length of the period.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Days is the number of calendar days the period spans.
func (p Period) Days() int {
	return calendarDays(p.Start, p.End)
}

// ResolvePeriod computes the current period for kind at now and the
// period immediately before it. Calendar kinds are aligned in now's location.
// For custom periods both bounds are required and the end day is inclusive.
func ResolvePeriod(kind string, now time.Time, explicitStart, explicitEnd string) (current, previous Period, err error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(kind)))
	switch g {
	case Day, Week, Month, Year:
		start := Truncate(now, g)
		current = Period{Start: start, End: Advance(start, g), Granularity: g}
		previous = Period{Start: retreat(start, g), End: start, Granularity: g}
		return current, previous, nil
	case Custom:
		loc := now.Location()
		start, err := parseDate("start_date", explicitStart, loc)
		if err != nil {
			return Period{}, Period{}, err
		}
		end, err := parseDate("end_date", explicitEnd, loc)
		if err != nil {
			return Period{}, Period{}, err
		}
		if start.After(end) {
			return Period{}, Period{}, invalid("start_date", "%s is after end_date %s", explicitStart, explicitEnd)
		}
		end = end.AddDate(0, 0, 1)
		days := calendarDays(start, end)
		current = Period{Start: start, End: end, Granularity: Custom}
		previous = Period{Start: start.AddDate(0, 0, -days), End: start, Granularity: Custom}
		return current, previous, nil
	default:
		return Period{}, Period{}, invalid("period", "unknown period %q (want day, week, month, year or custom)", kind)
	}
}

func retreat(start time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return start.AddDate(0, 0, -7)
	case Month:
		return start.AddDate(0, -1, 0)
	case Year:
		return start.AddDate(-1, 0, 0)
	default:
		return start.AddDate(0, 0, -1)
	}
}

func parseDate(param, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, invalid(param, "required for custom period")
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, invalid(param, "%q is not a YYYY-MM-DD date", value)
	}
	return t, nil
}

// calendarDays counts whole days between two midnights, ignoring DST shifts.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
