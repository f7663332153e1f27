package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket aggregates the records whose timestamps fall in [Start, End).
// Dimension is set when the series is split by a categorical tag.
type Bucket struct {
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Dimension    string          `json:"dimension,omitempty"`
	Count        int             `json:"count"`
	Sum          decimal.Decimal `json:"sum"`
	Average      decimal.Decimal `json:"average"`
	AnomalyCount int             `json:"anomaly_count"`
}

// AverageScale is the number of decimal places averages are rounded to.
const AverageScale = 2

// Average divides sum by count, defining the average of nothing as zero.
func Average(sum decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return sum.DivRound(decimal.NewFromInt(int64(count)), AverageScale)
}

// BucketRecords groups records into consecutive periods of granularity g.
func BucketRecords(records []Record, g Granularity) []Bucket {
	return BucketBy(records, g, nil)
}

// BucketBy groups records by (period, dimension(record)). A nil dimension
// groups by period only. Buckets come back ordered by start then dimension,
// and only periods with at least one record are present.
func BucketBy(records []Record, g Granularity, dimension func(Record) string) []Bucket {
	type key struct {
		start int64
		dim   string
	}
	index := make(map[key]int)
	var buckets []Bucket

	for _, r := range records {
		start := Truncate(r.Timestamp, g)
		var dim string
		if dimension != nil {
			dim = dimension(r)
		}
		k := key{start: start.Unix(), dim: dim}
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{
				Start:     start,
				End:       Advance(start, g),
				Dimension: dim,
				Sum:       decimal.Zero,
			})
		}
		b := &buckets[i]
		b.Count++
		b.Sum = b.Sum.Add(r.Amount)
		if r.Anomalous {
			b.AnomalyCount++
		}
	}

	for i := range buckets {
		buckets[i].Average = Average(buckets[i].Sum, buckets[i].Count)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].Start.Equal(buckets[j].Start) {
			return buckets[i].Start.Before(buckets[j].Start)
		}
		return buckets[i].Dimension < buckets[j].Dimension
	})
	if buckets == nil {
		buckets = []Bucket{}
	}
	return buckets
}

// BySegment splits a series by customer segment.
func BySegment(r Record) string { return r.Segment }

// ByCategory splits a series by product category. Transactions whose
// product no longer exists are reported as "Unknown".
func ByCategory(r Record) string {
	if r.Category == "" {
		return "Unknown"
	}
	return r.Category
}
