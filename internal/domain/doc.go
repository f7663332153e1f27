// Package domain holds the customer, product and transaction types shared
// by the repositories, services and HTTP handlers.
//
// The types carry JSON and DB tags and small pure helpers (Valid, Label)
// but no persistence or transport logic. Nothing here imports another
// internal/ package.
package domain
