// Package httputil writes JSON responses and the API error envelope.
//
// Handlers use these helpers rather than the raw ResponseWriter so that
// every error carries the same {error, code, details} shape.
package httputil
