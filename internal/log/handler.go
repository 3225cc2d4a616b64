package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"password":  true,
	"passwd":    true,
	"pw":        true,
	"user_pw":   true,
	"userpw":    true,
	"owner_pw":  true,
	"ownerpw":   true,
	"secret":    true,
	"token":     true,
	"api_key":   true,
	"apikey":    true,
	"signature": true,
}

// sensitiveKeywords are substrings that mark a key as sensitive.
var sensitiveKeywords = []string{"password", "passwd", "secret", "token", "credential"}

// RedactHandler wraps an slog.Handler to mask secrets and shorten home
// directory paths in every attribute.
type RedactHandler struct {
	handler slog.Handler

	// home is the user's home directory with a trailing separator.
	// Empty disables path shortening.
	home string
}

// NewRedactHandler creates a RedactHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return &RedactHandler{handler: handler}
	}
	return &RedactHandler{handler: handler, home: filepath.Clean(home) + string(filepath.Separator)}
}

// withHome returns a copy of h that shortens paths under home.
func (h *RedactHandler) withHome(home string) *RedactHandler {
	if home != "" && !strings.HasSuffix(home, string(filepath.Separator)) {
		home += string(filepath.Separator)
	}
	return &RedactHandler{handler: h.handler, home: home}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(redacted), home: h.home}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name), home: h.home}
}

// redactAttr rewrites a single attribute, recursing into groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			redacted[i] = h.redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); h.home != "" && strings.Contains(s, h.home) {
			return slog.String(a.Key, strings.ReplaceAll(s, h.home, "~"+string(filepath.Separator)))
		}
	}

	return a
}

// isSensitiveKey reports whether values under key must be masked.
func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// level maps the verbose flag to a minimum level: Debug when verbose,
// Warn otherwise.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger creates a text logger writing to w with redaction applied.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewRedactHandler(textHandler))
}

// NewJSONLogger creates a JSON logger writing to w with redaction applied.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewRedactHandler(jsonHandler))
}
