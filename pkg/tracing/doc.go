// Package tracing records timed spans as structured log entries.
package tracing
