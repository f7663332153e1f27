package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Measure selects which aggregate a series' growth is computed on.
type Measure string

const (
	MeasureCount Measure = "count"
	MeasureSum   Measure = "sum"
)

// Series names used in trend responses.
const (
	SeriesCustomerCount       = "customer_count"
	SeriesRevenue             = "revenue"
	SeriesSegmentDistribution = "segment_distribution"
	SeriesProductCategory     = "product_category"
)

// TrendPoint is a bucket plus the running totals of the series up to and
// including it. Split series also carry running totals of the point's own
// dimension.
type TrendPoint struct {
	Bucket
	CumulativeCount          int              `json:"cumulative_count"`
	CumulativeSum            decimal.Decimal  `json:"cumulative_sum"`
	DimensionCumulativeCount int              `json:"dimension_cumulative_count,omitempty"`
	DimensionCumulativeSum   *decimal.Decimal `json:"dimension_cumulative_sum,omitempty"`
}

// TrendSeries is an ordered run of trend points. Growth compares the first
// period in the series with the last and is absent for an empty series.
type TrendSeries struct {
	Name    string             `json:"name"`
	Measure Measure            `json:"measure"`
	Points  []TrendPoint       `json:"points"`
	Growth  *ComparativeMetric `json:"growth,omitempty"`
}

// TrendSet holds independent series keyed by name.
type TrendSet map[string]TrendSeries

// AssembleTrend threads running totals through buckets in one pass. The
// cumulative at the last point equals the total over all buckets.
func AssembleTrend(name string, buckets []Bucket, m Measure) TrendSeries {
	type running struct {
		count int
		sum   decimal.Decimal
	}
	var total running
	perDimension := make(map[string]running)
	points := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		total.count += b.Count
		total.sum = total.sum.Add(b.Sum)
		points[i] = TrendPoint{Bucket: b, CumulativeCount: total.count, CumulativeSum: total.sum}

		if b.Dimension != "" {
			rt := perDimension[b.Dimension]
			rt.count += b.Count
			rt.sum = rt.sum.Add(b.Sum)
			perDimension[b.Dimension] = rt
			sum := rt.sum
			points[i].DimensionCumulativeCount = rt.count
			points[i].DimensionCumulativeSum = &sum
		}
	}

	series := TrendSeries{Name: name, Measure: m, Points: points}
	if len(buckets) > 0 {
		first := periodTotal(buckets, buckets[0].Start, m)
		last := periodTotal(buckets, buckets[len(buckets)-1].Start, m)
		growth := Compare(last, first)
		series.Growth = &growth
	}
	return series
}

// periodTotal sums the measure over every bucket starting at start, which
// folds the dimensions of a split series back into one value.
func periodTotal(buckets []Bucket, start time.Time, m Measure) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		if !b.Start.Equal(start) {
			continue
		}
		if m == MeasureSum {
			total = total.Add(b.Sum)
		} else {
			total = total.Add(decimal.NewFromInt(int64(b.Count)))
		}
	}
	return total
}

// Add stores s under its name.
func (ts TrendSet) Add(s TrendSeries) {
	ts[s.Name] = s
}
