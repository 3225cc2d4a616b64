// Package log provides drawtopia's structured logging, built on log/slog.
//
// RedactHandler wraps any slog.Handler and rewrites attributes before they
// reach it:
//   - values under password-like keys (password, user_pw, owner_pw) are
//     replaced with MaskValue, so encrypted-PDF passwords never hit a log
//   - file paths under the user's home directory are shortened to "~/..."
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("document loaded",
//	    "path", "/home/alice/plans/site.pdf", // logged as ~/plans/site.pdf
//	    "password", "hunter2",                // logged as ***REDACTED***
//	)
package log
