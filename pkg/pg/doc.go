// Package pg provides PostgreSQL connection management for the
// application: pool construction with retry, goose migrations routed
// through structured logging, a health probe, and error classifiers for
// common SQLSTATE conditions.
package pg
