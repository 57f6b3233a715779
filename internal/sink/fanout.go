// internal/sink/fanout.go
package sink

import (
	"log/slog"
	"sync"

	"github.com/user/danmaku/internal/types"
)

// Fanout forwards each event to every registered target. Targets are
// registered by name so drops can be attributed in logs.
type Fanout struct {
	mu      sync.RWMutex
	names   []string
	targets map[string]Target
}

// NewFanout creates an empty fanout.
func NewFanout() *Fanout {
	return &Fanout{targets: make(map[string]Target)}
}

// Register adds a named target. Registration order is the emit order.
func (f *Fanout) Register(name string, target Target) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.targets[name]; !exists {
		f.names = append(f.names, name)
	}
	f.targets[name] = target
}

// Emit forwards the event to all targets in registration order. Returns
// true if at least one target accepted it.
func (f *Fanout) Emit(ev types.Event) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	accepted := false
	for _, name := range f.names {
		if f.targets[name].Emit(ev) {
			accepted = true
		} else {
			slog.Debug("sink target dropped event", "target", name, "kind", string(ev.Kind))
		}
	}
	return accepted
}
