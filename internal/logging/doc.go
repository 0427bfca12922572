// Package logging provides slog-based structured logging for subweave with
// console and JSON handlers, standardized field names, and context-derived
// attributes.
package logging
