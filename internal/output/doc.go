// Package output formats review results for display or machine consumption.
//
// Four formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured JSON result
//   - markdown — PR-comment-friendly with collapsible sections per severity
//   - github   — GitHub Actions workflow commands for inline PR annotations
//
// Use [ForFormat] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Result]. [WriteResult]
// is a convenience helper that handles destination selection.
package output
