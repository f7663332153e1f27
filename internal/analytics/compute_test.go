package analytics

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/ignite/customer-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The week of 2024-01-08 (Monday) is current; 2024-01-01 is the previous week.
var computeNow = at("2024-01-10T12:00:00Z")

func computeSnapshot() Snapshot {
	return Snapshot{
		Customers: []Record{
			{SubjectID: 1, Timestamp: at("2024-01-02T10:00:00Z"), Segment: "High"},
			{SubjectID: 2, Timestamp: at("2024-01-09T10:00:00Z"), Segment: "Low"},
			{SubjectID: 3, Timestamp: at("2024-01-10T08:00:00Z"), Segment: "Barely"},
		},
		Transactions: []Record{
			{SubjectID: 1, Timestamp: at("2024-01-03T10:00:00Z"), Amount: amount("100"), Segment: "High", Category: "Loan"},
			{SubjectID: 1, Timestamp: at("2024-01-08T10:00:00Z"), Amount: amount("100"), Segment: "High", Category: "Loan"},
			{SubjectID: 1, Timestamp: at("2024-01-09T10:00:00Z"), Amount: amount("50"), Segment: "High", Category: "Loan", Anomalous: true},
			{SubjectID: 2, Timestamp: at("2024-01-09T11:00:00Z"), Amount: amount("200"), Segment: "Low", Category: "Deposit"},
		},
	}
}

func TestComputeTrends_Summary(t *testing.T) {
	resp, err := ComputeTrends(computeSnapshot(), TrendRequest{Period: "week"}, computeNow)
	require.NoError(t, err)

	assert.Equal(t, day("2024-01-08"), resp.Period.Start)
	assert.Equal(t, day("2024-01-01"), resp.PreviousPeriod.Start)
	assert.Equal(t, Day, resp.Granularity)

	s := resp.Summary
	assert.Equal(t, 3, s.TotalCount)
	assertDecimal(t, "350", s.TotalSum)
	assertDecimal(t, "116.67", s.Average)
	assert.Equal(t, 1, s.AnomalyCount)
	assert.Equal(t, 33.33, s.AnomalyRatePercent)
	assertPercent(t, 250, s.RevenueGrowthPercent)
	assert.Equal(t, 2, s.NewCustomers)
	assertPercent(t, 100, s.CustomerGrowthPercent)

	assertPercent(t, 200, resp.Comparisons[CompareTransactions].PercentChange)
}

func TestComputeTrends_AllSeries(t *testing.T) {
	resp, err := ComputeTrends(computeSnapshot(), TrendRequest{Period: "week"}, computeNow)
	require.NoError(t, err)
	require.Len(t, resp.Trends, 4)

	revenue := resp.Trends[SeriesRevenue]
	require.Len(t, revenue.Points, 2)
	assertDecimal(t, "100", revenue.Points[0].Sum)
	assertDecimal(t, "250", revenue.Points[1].Sum)
	assertDecimal(t, "350", revenue.Points[1].CumulativeSum)
	assertPercent(t, 150, revenue.Growth.PercentChange)

	customers := resp.Trends[SeriesCustomerCount]
	require.Len(t, customers.Points, 2)
	assert.Equal(t, 2, customers.Points[1].CumulativeCount)

	categories := resp.Trends[SeriesProductCategory]
	require.Len(t, categories.Points, 3)
	assert.Equal(t, "Loan", categories.Points[0].Dimension)
	assert.Equal(t, "Deposit", categories.Points[1].Dimension)
	assert.Equal(t, "Loan", categories.Points[2].Dimension)

	segments := resp.Trends[SeriesSegmentDistribution]
	require.Len(t, segments.Points, 2)
	assert.Equal(t, "Low", segments.Points[0].Dimension)
	assert.Equal(t, "Barely", segments.Points[1].Dimension)
}

func TestComputeTrends_SelectedSeries(t *testing.T) {
	req := TrendRequest{Period: "week", Series: []string{SeriesRevenue, SeriesProductCategory}}
	resp, err := ComputeTrends(computeSnapshot(), req, computeNow)
	require.NoError(t, err)
	assert.Len(t, resp.Trends, 2)
	assert.Contains(t, resp.Trends, SeriesRevenue)
	assert.Contains(t, resp.Trends, SeriesProductCategory)
}

func TestComputeTrends_Filters(t *testing.T) {
	req := TrendRequest{Period: "week", Filters: FilterConfig{Segment: ptr(domain.SegmentHigh), HasAnomalies: ptr(true)}}
	resp, err := ComputeTrends(computeSnapshot(), req, computeNow)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Summary.TotalCount)
	assertDecimal(t, "150", resp.Summary.TotalSum)
	assert.Equal(t, 0, resp.Summary.NewCustomers)
	assertPercent(t, -100, resp.Summary.CustomerGrowthPercent)
}

func TestComputeTrends_EmptySnapshotIsZeroed(t *testing.T) {
	resp, err := ComputeTrends(Snapshot{}, TrendRequest{Period: "month"}, computeNow)
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Summary.TotalCount)
	assert.True(t, resp.Summary.TotalSum.IsZero())
	assert.True(t, resp.Summary.Average.IsZero())
	assert.Equal(t, 0.0, resp.Summary.AnomalyRatePercent)
	assertPercent(t, 0, resp.Summary.RevenueGrowthPercent)
	for _, name := range AllSeries {
		s, ok := resp.Trends[name]
		require.True(t, ok, name)
		assert.Empty(t, s.Points)
		assert.Nil(t, s.Growth)
	}
}

func TestComputeTrends_RevenueGrowthFromNothingIsUndefined(t *testing.T) {
	snap := Snapshot{Transactions: []Record{
		{SubjectID: 1, Timestamp: at("2024-01-09T10:00:00Z"), Amount: amount("10")},
	}}
	resp, err := ComputeTrends(snap, TrendRequest{Period: "week"}, computeNow)
	require.NoError(t, err)
	assert.Nil(t, resp.Summary.RevenueGrowthPercent)
}

func TestComputeTrends_CustomPeriodIncludesEndDay(t *testing.T) {
	snap := Snapshot{Transactions: []Record{
		{SubjectID: 1, Timestamp: at("2024-01-31T23:59:59Z"), Amount: amount("10")},
		{SubjectID: 1, Timestamp: at("2024-02-01T00:00:00Z"), Amount: amount("10")},
	}}
	req := TrendRequest{Period: "custom", StartDate: "2024-01-01", EndDate: "2024-01-31"}
	resp, err := ComputeTrends(snap, req, computeNow)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.TotalCount)
}

func TestComputeTrends_NormalizesToLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	now := computeNow.In(loc)
	// 2024-01-08T05:00Z is still Sunday 2024-01-07 in UTC-8, so it belongs to the previous week.
	snap := Snapshot{Transactions: []Record{
		{SubjectID: 1, Timestamp: at("2024-01-08T05:00:00Z"), Amount: amount("10")},
	}}
	resp, err := ComputeTrends(snap, TrendRequest{Period: "week"}, now)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Summary.TotalCount)
	assertDecimal(t, "10", resp.Comparisons[CompareRevenue].Previous)
}

func TestComputeTrends_InvalidPeriod(t *testing.T) {
	resp, err := ComputeTrends(computeSnapshot(), TrendRequest{Period: "fortnight"}, computeNow)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "period", ParamOf(err))
}

func TestParseTrendRequest(t *testing.T) {
	q := url.Values{"period": {"Month"}, "granularity": {"week"}, "segment": {"Low"}}
	req, err := ParseTrendRequest(q, computeNow)
	require.NoError(t, err)
	assert.Equal(t, "month", req.Period)
	assert.Equal(t, Week, req.Granularity)
	require.NotNil(t, req.Filters.Segment)
	assert.Equal(t, domain.SegmentLow, *req.Filters.Segment)
}

func TestParseTrendRequest_Defaults(t *testing.T) {
	req, err := ParseTrendRequest(url.Values{}, computeNow)
	require.NoError(t, err)
	assert.Equal(t, DefaultPeriod, req.Period)
	assert.Equal(t, Granularity(""), req.Granularity)
}

func TestParseTrendRequest_Errors(t *testing.T) {
	tests := []struct {
		q     url.Values
		param string
	}{
		{url.Values{"period": {"fortnight"}}, "period"},
		{url.Values{"period": {"custom"}, "end_date": {"2024-01-31"}}, "start_date"},
		{url.Values{"granularity": {"hour"}}, "granularity"},
		{url.Values{"min_spent": {"ten"}}, "min_spent"},
	}
	for _, tt := range tests {
		_, err := ParseTrendRequest(tt.q, computeNow)
		require.Error(t, err)
		assert.Equal(t, tt.param, ParamOf(err))
	}
}

func TestDefaultGranularity(t *testing.T) {
	assert.Equal(t, Month, DefaultGranularity(Period{Granularity: Year}))
	assert.Equal(t, Day, DefaultGranularity(Period{Granularity: Week}))
	short := Period{Start: day("2024-01-01"), End: day("2024-02-01"), Granularity: Custom}
	assert.Equal(t, Day, DefaultGranularity(short))
	long := Period{Start: day("2024-01-01"), End: day("2024-07-01"), Granularity: Custom}
	assert.Equal(t, Week, DefaultGranularity(long))
}

func TestTrendRequest_CacheKey(t *testing.T) {
	a, err := ParseTrendRequest(url.Values{"period": {"week"}, "segment": {"High"}}, computeNow)
	require.NoError(t, err)
	b, err := ParseTrendRequest(url.Values{"segment": {"high"}}, computeNow)
	require.NoError(t, err)
	assert.Equal(t, a.CacheKey(), b.CacheKey())

	c, err := ParseTrendRequest(url.Values{"period": {"week"}, "segment": {"Low"}}, computeNow)
	require.NoError(t, err)
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}
