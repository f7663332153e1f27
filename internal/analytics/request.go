package analytics

import (
	"net/url"
	"strings"
	"time"
)

// DefaultPeriod is used when the request names none.
const DefaultPeriod = "week"

// customBucketDays is the longest custom period still bucketed by day.
const customBucketDays = 92

// TrendRequest is a validated insights request.
type TrendRequest struct {
	Period      string
	StartDate   string
	EndDate     string
	Granularity Granularity
	Filters     FilterConfig
	Series      []string
}

// ParseTrendRequest validates every parameter up front so that no
// aggregation is attempted for a bad request.
func ParseTrendRequest(q url.Values, now time.Time) (TrendRequest, error) {
	req := TrendRequest{
		Period:    strings.ToLower(strings.TrimSpace(q.Get("period"))),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
	}
	if req.Period == "" {
		req.Period = DefaultPeriod
	}
	if _, _, err := ResolvePeriod(req.Period, now, req.StartDate, req.EndDate); err != nil {
		return TrendRequest{}, err
	}

	if v := strings.ToLower(strings.TrimSpace(q.Get("granularity"))); v != "" {
		g := Granularity(v)
		if !g.Calendar() {
			return TrendRequest{}, invalid("granularity", "unknown granularity %q (want day, week, month or year)", v)
		}
		req.Granularity = g
	}

	filters, err := ParseFilterConfig(q, now.Location())
	if err != nil {
		return TrendRequest{}, err
	}
	req.Filters = filters
	return req, nil
}

// DefaultGranularity picks the bucket width for a period when the request
// does not name one.
func DefaultGranularity(p Period) Granularity {
	switch p.Granularity {
	case Year:
		return Month
	case Custom:
		if p.Days() > customBucketDays {
			return Week
		}
		return Day
	default:
		return Day
	}
}

// CacheKey is a stable description of the request at the given bucket
// time, suitable for keying cached responses.
func (r TrendRequest) CacheKey() string {
	var b strings.Builder
	b.WriteString("period=" + r.Period)
	if r.Period == string(Custom) {
		b.WriteString(";start=" + r.StartDate + ";end=" + r.EndDate)
	}
	b.WriteString(";granularity=" + string(r.Granularity))
	f := r.Filters
	if f.Segment != nil {
		b.WriteString(";segment=" + string(*f.Segment))
	}
	if f.DateRange != nil {
		b.WriteString(";from=" + f.DateRange.Start.Format(time.RFC3339) + ";to=" + f.DateRange.End.Format(time.RFC3339))
	}
	if f.MinSpent != nil {
		b.WriteString(";min_spent=" + f.MinSpent.String())
	}
	if f.HasAnomalies != nil {
		if *f.HasAnomalies {
			b.WriteString(";has_anomalies=true")
		} else {
			b.WriteString(";has_anomalies=false")
		}
	}
	if len(r.Series) > 0 {
		b.WriteString(";series=" + strings.Join(r.Series, ","))
	}
	return b.String()
}
