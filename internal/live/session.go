// Package live runs the connection lifecycle for one monitored room: a
// supervisor that bootstraps session credentials, two polling loops that
// share the session state, and staleness-driven reconnection.
package live

import (
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/types"
)

// ErrSessionInvalidated is returned when a loop tries to use credentials
// after the supervisor has torn the session down. A stale session fails
// cleanly instead of resending old signatures.
var ErrSessionInvalidated = errors.New("session invalidated")

// Session is the state shared by the two polling loops for one connected
// period. Topic and credentials are immutable for the session's lifetime.
// The pagination cursor is written only by the comment loop and the
// heartbeat offset only by the heartbeat loop; both are atomics purely for
// cross-goroutine visibility. lastActivity is bumped by either loop on any
// non-empty payload and read by the heartbeat loop's staleness check.
type Session struct {
	Topic string
	Room  types.RoomID

	creds       mtop.Credentials
	invalidated atomic.Bool

	cursor       atomic.Value // string, "" until the first successful fetch
	offset       atomic.Value // string, seeded from wall clock
	lastActivity atomic.Int64 // unix millis, only moves forward
}

// NewSession creates a Session with the heartbeat offset seeded from now
// and an empty pagination cursor.
func NewSession(topic string, room types.RoomID, creds mtop.Credentials, now time.Time) *Session {
	s := &Session{
		Topic: topic,
		Room:  room,
		creds: creds,
	}
	s.cursor.Store("")
	s.offset.Store(strconv.FormatInt(now.UnixMilli(), 10))
	s.lastActivity.Store(now.UnixMilli())
	return s
}

// Credentials returns the session cookies, or ErrSessionInvalidated once
// the session has been torn down.
func (s *Session) Credentials() (mtop.Credentials, error) {
	if s.invalidated.Load() {
		return mtop.Credentials{}, ErrSessionInvalidated
	}
	return s.creds, nil
}

// Invalidate marks the session dead. Idempotent.
func (s *Session) Invalidate() {
	s.invalidated.Store(true)
}

// Cursor returns the comment-feed pagination cursor, "" when none exists.
func (s *Session) Cursor() string {
	return s.cursor.Load().(string)
}

// SetCursor replaces the pagination cursor with a server-issued value.
// Cursors are never invented locally; empty values are ignored.
func (s *Session) SetCursor(cursor string) {
	if cursor != "" {
		s.cursor.Store(cursor)
	}
}

// Offset returns the heartbeat-feed cursor.
func (s *Session) Offset() string {
	return s.offset.Load().(string)
}

// SetOffset replaces the heartbeat cursor with a server-issued value.
// Empty values are ignored.
func (s *Session) SetOffset(offset string) {
	if offset != "" {
		s.offset.Store(offset)
	}
}

// Touch records payload activity at the given instant. The activity clock
// only moves forward.
func (s *Session) Touch(now time.Time) {
	millis := now.UnixMilli()
	for {
		prev := s.lastActivity.Load()
		if millis <= prev || s.lastActivity.CompareAndSwap(prev, millis) {
			return
		}
	}
}

// IdleFor returns how long ago the last non-empty payload arrived.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-s.lastActivity.Load()) * time.Millisecond
}
