// Package recorder is an optional JSONL event log. It is plumbing around
// the streaming core, wired in as one more sink target when recording is
// enabled; the pipeline itself never depends on it.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/danmaku/internal/types"
)

// Recorder appends events to rooms/<roomID>/events.jsonl under its root
// directory, one JSON object per line.
type Recorder struct {
	root string
	mu   sync.Mutex
}

// New creates a Recorder rooted at dir.
func New(dir string) *Recorder {
	return &Recorder{root: dir}
}

func (r *Recorder) eventsPath(room types.RoomID) string {
	return filepath.Join(r.root, "rooms", string(room), "events.jsonl")
}

// Append writes one event to the room's log.
func (r *Recorder) Append(ev types.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.eventsPath(ev.Room)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create room dir: %w", err)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Emit implements sink.Target. Write failures are reported as drops; the
// stream must keep flowing regardless of disk trouble.
func (r *Recorder) Emit(ev types.Event) bool {
	return r.Append(ev) == nil
}

// Tail returns the last limit events recorded for the room.
func (r *Recorder) Tail(room types.RoomID, limit int) ([]types.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.eventsPath(room))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var events []types.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev types.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events file: %w", err)
	}

	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// Count returns the number of events recorded for the room.
func (r *Recorder) Count(room types.RoomID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.eventsPath(room))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var count int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan events file: %w", err)
	}
	return count, nil
}
