// Package customer implements the customer-facing read operations: the
// paginated overview with its week-over-week aggregates, single customer
// lookups, the services a customer used, their transaction history and
// their segmentation profile.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package customer
