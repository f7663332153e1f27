package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the consistent view of the store a request is computed over.
type Snapshot struct {
	Customers    []Record
	Transactions []Record
}

// Summary describes the filtered transactions of the current period.
type Summary struct {
	TotalCount            int             `json:"total_count"`
	TotalSum              decimal.Decimal `json:"total_sum"`
	Average               decimal.Decimal `json:"average"`
	AnomalyCount          int             `json:"anomaly_count"`
	AnomalyRatePercent    float64         `json:"anomaly_rate_percent"`
	RevenueGrowthPercent  *float64        `json:"revenue_growth_percent"`
	NewCustomers          int             `json:"new_customers"`
	CustomerGrowthPercent *float64        `json:"customer_growth_percent"`
}

// TrendResponse is the complete result of one insights request.
type TrendResponse struct {
	Period         Period                       `json:"period"`
	PreviousPeriod Period                       `json:"previous_period"`
	Granularity    Granularity                  `json:"granularity"`
	Summary        Summary                      `json:"summary"`
	Comparisons    map[string]ComparativeMetric `json:"comparisons"`
	Trends         TrendSet                     `json:"trends"`
}

// Comparison names.
const (
	CompareRevenue      = "revenue"
	CompareTransactions = "transactions"
	CompareCustomers    = "customers"
)

// AllSeries is every series ComputeTrends can build, in response order.
var AllSeries = []string{SeriesCustomerCount, SeriesRevenue, SeriesSegmentDistribution, SeriesProductCategory}

// ComputeTrends runs the filter → bucket → assemble pipeline over snap.
// Timestamps are interpreted in now's location. Subject-level filters are
// evaluated against every transaction in the snapshot, not only those in
// the current period.
func ComputeTrends(snap Snapshot, req TrendRequest, now time.Time) (*TrendResponse, error) {
	current, previous, err := ResolvePeriod(req.Period, now, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	g := req.Granularity
	if g == "" {
		g = DefaultGranularity(current)
	}
	if !g.Calendar() {
		return nil, invalid("granularity", "unknown granularity %q", g)
	}

	loc := now.Location()
	customers := InLocation(snap.Customers, loc)
	transactions := InLocation(snap.Transactions, loc)
	subjects := BuildSubjectIndex(transactions)

	curFilters := req.Filters.Within(current)
	prevFilters := req.Filters.Within(previous)
	curTx := ApplyFilters(transactions, curFilters, subjects)
	prevTx := ApplyFilters(transactions, prevFilters, subjects)
	curCust := ApplyFilters(customers, curFilters, subjects)
	prevCust := ApplyFilters(customers, prevFilters, subjects)

	curSum, curAnomalies := totals(curTx)
	prevSum, _ := totals(prevTx)

	resp := &TrendResponse{
		Period:         current,
		PreviousPeriod: previous,
		Granularity:    g,
		Summary: Summary{
			TotalCount:            len(curTx),
			TotalSum:              curSum,
			Average:               Average(curSum, len(curTx)),
			AnomalyCount:          curAnomalies,
			AnomalyRatePercent:    Rate(curAnomalies, len(curTx)),
			RevenueGrowthPercent:  PercentChange(curSum, prevSum),
			NewCustomers:          len(curCust),
			CustomerGrowthPercent: CountChange(len(curCust), len(prevCust)),
		},
		Comparisons: map[string]ComparativeMetric{
			CompareRevenue:      Compare(curSum, prevSum),
			CompareTransactions: Compare(decimal.NewFromInt(int64(len(curTx))), decimal.NewFromInt(int64(len(prevTx)))),
			CompareCustomers:    Compare(decimal.NewFromInt(int64(len(curCust))), decimal.NewFromInt(int64(len(prevCust)))),
		},
		Trends: make(TrendSet),
	}

	series := req.Series
	if len(series) == 0 {
		series = AllSeries
	}
	for _, name := range series {
		switch name {
		case SeriesCustomerCount:
			resp.Trends.Add(AssembleTrend(name, BucketRecords(curCust, g), MeasureCount))
		case SeriesRevenue:
			resp.Trends.Add(AssembleTrend(name, BucketRecords(curTx, g), MeasureSum))
		case SeriesSegmentDistribution:
			resp.Trends.Add(AssembleTrend(name, BucketBy(curCust, g, BySegment), MeasureCount))
		case SeriesProductCategory:
			resp.Trends.Add(AssembleTrend(name, BucketBy(curTx, g, ByCategory), MeasureSum))
		}
	}
	return resp, nil
}

func totals(records []Record) (sum decimal.Decimal, anomalies int) {
	sum = decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Amount)
		if r.Anomalous {
			anomalies++
		}
	}
	return sum, anomalies
}
