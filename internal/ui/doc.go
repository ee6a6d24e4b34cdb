// Package ui provides helpers for formatting human-readable console output.
//
// Progress lines announce each checker invocation on stdout while detailed
// command telemetry continues to flow through structured loggers.
package ui
