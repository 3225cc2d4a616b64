// Package notify delivers non-blocking user notifications.
//
// Session operations never fail loudly: every failure is reported through a
// Notifier and returned to the caller, and the session stays usable.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nao1215/drawtopia/internal/model"
)

// Notifier receives user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(n model.Notice)
}

// Success sends a success notice.
func Success(n Notifier, message string) {
	send(n, model.NoticeSuccess, message)
}

// Info sends an informational notice.
func Info(n Notifier, message string) {
	send(n, model.NoticeInfo, message)
}

// Error sends an error notice.
func Error(n Notifier, message string) {
	send(n, model.NoticeError, message)
}

func send(n Notifier, level model.NoticeLevel, message string) {
	if n == nil {
		return
	}
	n.Notify(model.Notice{Level: level, Message: message, Time: time.Now()})
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(model.Notice) {}

// Recorder keeps every notice in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []model.Notice
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Notifier.
func (r *Recorder) Notify(n model.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices in arrival order.
func (r *Recorder) Notices() []model.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice and whether there was one.
func (r *Recorder) Last() (model.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return model.Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Reset drops all recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}

// WriterNotifier prints one line per notice, prefixed by a level marker.
// Notifiers derived with WithPrefix share the writer and its lock.
type WriterNotifier struct {
	mu     *sync.Mutex
	w      io.Writer
	prefix string
}

// NewWriterNotifier creates a WriterNotifier. prefix is printed before the
// level marker, typically the document name in batch runs.
func NewWriterNotifier(w io.Writer, prefix string) *WriterNotifier {
	return &WriterNotifier{mu: &sync.Mutex{}, w: w, prefix: prefix}
}

// WithPrefix returns a notifier writing to the same writer under the same
// lock with a different prefix.
func (wn *WriterNotifier) WithPrefix(prefix string) *WriterNotifier {
	return &WriterNotifier{mu: wn.mu, w: wn.w, prefix: prefix}
}

// Notify implements Notifier. Write errors are ignored.
func (wn *WriterNotifier) Notify(n model.Notice) {
	marker := "i"
	switch n.Level {
	case model.NoticeSuccess:
		marker = "✓"
	case model.NoticeError:
		marker = "✗"
	}

	wn.mu.Lock()
	defer wn.mu.Unlock()
	if wn.prefix != "" {
		fmt.Fprintf(wn.w, "[%s] %s %s\n", wn.prefix, marker, n.Message)
		return
	}
	fmt.Fprintf(wn.w, "%s %s\n", marker, n.Message)
}

// Multi fans every notice out to all notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n model.Notice) {
	for _, nn := range m {
		if nn != nil {
			nn.Notify(n)
		}
	}
}
