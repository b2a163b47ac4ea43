// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Horizon rise/transit/set search, watch UI with events view
// 0.2.0 - JPL DE and Horizons engines, tracing and Prometheus metrics
// 0.1.0 - Initial release: complete 108-value records, table and JSON export
