// internal/sink/writer.go
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/user/danmaku/internal/types"
)

// Target consumes classified events. Emit reports whether the event was
// accepted; a false return means the event was dropped, not that the target
// failed.
type Target interface {
	Emit(ev types.Event) bool
}

// LineWriter formats one line per event onto a text stream. It is the
// fallback output when no queue is attached.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineWriter creates a LineWriter on w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// Emit writes the event's line representation.
func (l *LineWriter) Emit(ev types.Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintln(l.w, ev.Line())
	return err == nil
}
