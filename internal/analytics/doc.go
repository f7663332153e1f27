// Package analytics is the time-windowed aggregation engine behind the
// insights endpoints.
//
// The pipeline is filter → bucket → assemble. Periods are resolved once per
// request and drive both the filter bounds and the period-over-period
// comparisons. Everything in this package is pure: callers hand in an
// immutable snapshot of records plus the current time and get back a
// complete response or an error, never a partial result.
//
// Bucketing produces sparse series. A period slice with no records has no
// bucket; charts must not assume consecutive buckets are adjacent in time.
package analytics
