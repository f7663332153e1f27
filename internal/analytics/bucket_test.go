package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketRecords_Weekly(t *testing.T) {
	records := []Record{
		{SubjectID: 1, Timestamp: day("2024-01-08"), Amount: amount("200")},
		{SubjectID: 1, Timestamp: day("2024-01-01"), Amount: amount("100")},
	}
	buckets := BucketRecords(records, Week)
	require.Len(t, buckets, 2)

	assert.Equal(t, day("2024-01-01"), buckets[0].Start)
	assert.Equal(t, day("2024-01-08"), buckets[0].End)
	assert.Equal(t, 1, buckets[0].Count)
	assertDecimal(t, "100", buckets[0].Sum)
	assert.Equal(t, day("2024-01-08"), buckets[1].Start)
	assertDecimal(t, "200", buckets[1].Sum)
}

func TestBucketRecords_Aggregates(t *testing.T) {
	records := []Record{
		{Timestamp: at("2024-01-03T08:00:00Z"), Amount: amount("10")},
		{Timestamp: at("2024-01-03T12:00:00Z"), Amount: amount("20"), Anomalous: true},
		{Timestamp: at("2024-01-03T23:59:59Z"), Amount: amount("11")},
	}
	buckets := BucketRecords(records, Day)
	require.Len(t, buckets, 1)
	b := buckets[0]
	assert.Equal(t, 3, b.Count)
	assertDecimal(t, "41", b.Sum)
	assertDecimal(t, "13.67", b.Average)
	assert.Equal(t, 1, b.AnomalyCount)
}

func TestBucketRecords_PartitionsInput(t *testing.T) {
	records := sampleTransactions()
	for _, g := range []Granularity{Day, Week, Month, Year} {
		buckets := BucketRecords(records, g)
		total := 0
		for i, b := range buckets {
			total += b.Count
			if i > 0 {
				assert.True(t, buckets[i-1].Start.Before(b.Start), "%s buckets must be ascending", g)
			}
		}
		assert.Equal(t, len(records), total, "%s buckets must partition the records", g)
	}
}

func TestBucketRecords_SparseSeries(t *testing.T) {
	records := []Record{
		{Timestamp: day("2024-01-01")},
		{Timestamp: day("2024-01-10")},
	}
	buckets := BucketRecords(records, Day)
	require.Len(t, buckets, 2, "empty days are not synthesized")
	assert.Equal(t, day("2024-01-10"), buckets[1].Start)
}

func TestBucketRecords_Empty(t *testing.T) {
	buckets := BucketRecords(nil, Month)
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)
}

func TestBucketRecords_SignupsAverageZero(t *testing.T) {
	buckets := BucketRecords([]Record{{Timestamp: day("2024-01-01")}}, Day)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Average.IsZero())
}

func TestBucketBy_CompositeKey(t *testing.T) {
	buckets := BucketBy(sampleTransactions(), Month, ByCategory)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"Banking", "Deposit", "Loan"}, []string{buckets[0].Dimension, buckets[1].Dimension, buckets[2].Dimension})
	assert.Equal(t, 2, buckets[1].Count)
	assertDecimal(t, "25", buckets[1].Sum)
	assertDecimal(t, "110", buckets[2].Sum)
	assert.Equal(t, 1, buckets[2].AnomalyCount)
}

func TestByCategory_Unknown(t *testing.T) {
	assert.Equal(t, "Unknown", ByCategory(Record{}))
}

func TestAverage_ZeroCount(t *testing.T) {
	assert.True(t, Average(amount("10"), 0).IsZero())
}
