// Package insights serves time-windowed analytics over the customer store.
//
// Every request loads one snapshot of customers and transactions through
// the Repository, then runs the pure pipeline in internal/analytics over
// it. Responses can be cached in Redis and exported as reports.
package insights
