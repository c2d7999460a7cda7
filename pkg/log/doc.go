// Package log builds [log/slog] handlers from level and format names.
package log
