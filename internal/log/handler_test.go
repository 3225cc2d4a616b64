package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// newTestLogger returns a debug logger writing text to buf with home set to /home/alice.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	text := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewRedactHandler(text).withHome("/home/alice"))
}

// TestRedactHandler_MasksSensitiveKeys tests that password-like keys are masked.
func TestRedactHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "password", key: "password", value: "hunter2", wantMask: true},
		{name: "uppercase key", key: "Password", value: "hunter2", wantMask: true},
		{name: "user password", key: "user_pw", value: "open-sesame", wantMask: true},
		{name: "owner password", key: "owner_pw", value: "open-sesame", wantMask: true},
		{name: "keyword inside key", key: "pdf_password_hint", value: "birthday", wantMask: true},
		{name: "document name is kept", key: "document", value: "plan.pdf", wantMask: false},
		{name: "tool is kept", key: "tool", value: "marker", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			newTestLogger(&buf).Info("test", tt.key, tt.value)
			out := buf.String()

			if tt.wantMask {
				if strings.Contains(out, tt.value) {
					t.Errorf("expected %q to be masked, got %s", tt.value, out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("expected mask value in output, got %s", out)
				}
				return
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("expected %q in output, got %s", tt.value, out)
			}
		})
	}
}

// TestRedactHandler_ShortensHomePaths tests home directory shortening.
func TestRedactHandler_ShortensHomePaths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newTestLogger(&buf).Info("exported", "path", "/home/alice/plans/site.pdf", "other", "/srv/plans/site.pdf")
	out := buf.String()

	if strings.Contains(out, "/home/alice") {
		t.Errorf("home directory leaked: %s", out)
	}
	if !strings.Contains(out, "~/plans/site.pdf") {
		t.Errorf("expected shortened path, got %s", out)
	}
	if !strings.Contains(out, "/srv/plans/site.pdf") {
		t.Errorf("paths outside home must be kept, got %s", out)
	}
}

// TestRedactHandler_LogLevels tests the verbose switch.
func TestRedactHandler_LogLevels(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("shown")
		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("unexpected output %s", buf.String())
		}
	})

	t.Run("verbose logger keeps debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewLogger(&buf, true).Debug("details")
		if !strings.Contains(buf.String(), "details") {
			t.Errorf("expected debug output, got %s", buf.String())
		}
	})
}

// TestRedactHandler_WithAttrsAndGroup tests attributes attached ahead of time.
func TestRedactHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf).
		With("password", "hunter2").
		WithGroup("doc").
		With("path", "/home/alice/a.pdf")
	logger.Info("grouped", slog.Group("secrets", slog.String("owner_pw", "x1y2z3")))
	out := buf.String()

	for _, leaked := range []string{"hunter2", "x1y2z3", "/home/alice"} {
		if strings.Contains(out, leaked) {
			t.Errorf("%q leaked: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "doc.path=~/a.pdf") {
		t.Errorf("expected grouped shortened path, got %s", out)
	}
}

// TestNewJSONLogger tests the JSON variant.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewJSONLogger(&buf, false).Warn("careful", "password", "hunter2")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["password"] != MaskValue {
		t.Errorf("expected masked password, got %v", entry["password"])
	}
}

// TestNewRedactHandler_NilHandler tests the nil fallback.
func TestNewRedactHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewRedactHandler(nil)
	if h.handler == nil {
		t.Error("expected default handler")
	}
}
