// internal/live/bootstrap.go
package live

import (
	"context"
	"fmt"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/types"
)

// BootstrapError reports a failed topic/credential acquisition. Always
// recoverable: the supervisor retries at its backoff cadence.
type BootstrapError struct {
	Err error
}

func (e *BootstrapError) Error() string { return fmt.Sprintf("bootstrap: %v", e.Err) }
func (e *BootstrapError) Unwrap() error { return e.Err }

// Bootstrapper acquires the feed topic and session cookies for a room.
// The original acquisition path intercepts the room page's own requests in
// a headless browser; that machinery lives outside this module, behind this
// interface. Implementations must return within a bounded time.
type Bootstrapper interface {
	AcquireSession(ctx context.Context, room types.RoomID) (topic string, creds mtop.Credentials, err error)
}

// StaticBootstrapper serves a topic and cookies captured out of band, e.g.
// copied from the room page's network traffic and supplied via config.
type StaticBootstrapper struct {
	Topic       string
	Credentials mtop.Credentials
}

// AcquireSession returns the configured values, or a BootstrapError when
// they are incomplete.
func (b StaticBootstrapper) AcquireSession(ctx context.Context, room types.RoomID) (string, mtop.Credentials, error) {
	if b.Topic == "" {
		return "", mtop.Credentials{}, &BootstrapError{Err: fmt.Errorf("no topic configured for room %s", room)}
	}
	if !b.Credentials.Valid() {
		return "", mtop.Credentials{}, &BootstrapError{Err: fmt.Errorf("missing _m_h5_tk/_m_h5_tk_enc cookies for room %s", room)}
	}
	return b.Topic, b.Credentials, nil
}
