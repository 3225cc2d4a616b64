// Package pipeline runs markup scripts against document sessions.
//
// Every script action becomes a Step. A Pipeline executes its steps in
// order against one Job (a session plus the report being built), checks for
// cancellation before each step and records failures in the report. Because
// session failures are never fatal, scripts continue past failing steps
// unless the pipeline is told to stop on the first error.
//
// BatchProcessor applies the same script to many documents concurrently.
// Each document gets its own Job and therefore its own session; the number
// of documents in flight is bounded with errgroup.SetLimit.
package pipeline
