// Package sink carries classified events from the polling loops to
// consumers: an ordered queue for programmatic use, a line writer for plain
// CLI output, and a fanout that feeds several targets at once.
package sink

import (
	"sync"
	"time"

	"github.com/user/danmaku/internal/types"
)

// Queue is an ordered multi-producer queue of events. Put never blocks:
// when a bounded queue is full the event is dropped and counted. Get blocks
// up to a timeout.
type Queue struct {
	mu       sync.Mutex
	items    []types.Event
	capacity int // 0 = unbounded
	dropped  int64
	closed   bool
	notify   chan struct{}
}

// NewQueue creates a queue holding at most capacity events; capacity 0
// means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
	}
}

// Put appends an event. Returns false if the event was dropped because the
// queue is full or closed.
func (q *Queue) Put(ev types.Event) bool {
	q.mu.Lock()
	if q.closed || (q.capacity > 0 && len(q.items) >= q.capacity) {
		if !q.closed {
			q.dropped++
		}
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Get removes and returns the oldest event, waiting up to timeout for one
// to arrive. The second return is false on timeout or when the queue is
// closed and drained.
func (q *Queue) Get(timeout time.Duration) (types.Event, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				// Re-signal so a sibling consumer is not left waiting on
				// the single notify token.
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return ev, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return types.Event{}, false
		}

		select {
		case <-q.notify:
		case <-deadline.C:
			return types.Event{}, false
		}
	}
}

// Emit implements Target.
func (q *Queue) Emit(ev types.Event) bool { return q.Put(ev) }

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many events were discarded because the queue was full.
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Close marks the queue closed. Pending events remain readable; further
// puts are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
