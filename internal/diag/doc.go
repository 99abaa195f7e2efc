// Package diag defines the diagnostic model shared by every analysis phase.
//
// Diagnostic is the central record: a Severity, a stable Code from the
// typing-issue catalog (codes.go), a message, a primary source.Span, optional
// secondary Notes, and an optional Help string. Typing findings are data,
// never Go errors; producers emit them through a Reporter and the driver
// aggregates them into Bags, which support sorting, deduplication, merging
// and allow/deny filtering.
//
// Rendering lives in internal/diagfmt; this package performs no IO.
package diag
