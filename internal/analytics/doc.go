// Package analytics holds the query and aggregation layer of the report.
//
// Every function is a pure computation over an immutable Snapshot and, where it
// applies, a Selection. Nothing here performs I/O or keeps state between calls,
// so a Snapshot can be shared by concurrent requests without locking.
//
// Soft failures (unknown entity, missing year, no index column, too few years
// for a trend) are returned as sentinel errors next to a usable zero-value
// result; callers turn them into panel notices rather than aborting the report.
package analytics
