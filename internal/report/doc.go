// Package report writes markup reports.
//
// Three formats are available:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured output for other tools
//   - MarkdownWriter: tables and a mermaid chart for sharing
//
// Report data lives in the model package; writers only format it.
package report
