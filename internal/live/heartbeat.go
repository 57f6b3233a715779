// internal/live/heartbeat.go
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/danmaku/internal/frame"
	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/router"
	"github.com/user/danmaku/internal/sink"
)

const (
	defaultHeartbeatInterval = 10 * time.Second
	defaultStalenessWindow   = 30 * time.Second
)

// ErrStale signals that no payload arrived within the staleness window.
// HTTP polling never reports disconnection on its own, so this is the
// system's only liveness detector. It is a signal, not a failure: the
// supervisor reacts by tearing the session down and reconnecting.
var ErrStale = errors.New("feed stale: no payload within staleness window")

// HeartbeatLoop drives the powermsg notification feed at a fixed cadence,
// advancing the offset cursor from each response and decoding the framed
// payloads into events. It also carries the staleness check that declares
// the session dead.
type HeartbeatLoop struct {
	session *Session
	builder *mtop.Builder
	client  *mtop.Client
	out     sink.Target
	log     *slog.Logger

	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

// NewHeartbeatLoop creates a notification-feed loop over an established
// session.
func NewHeartbeatLoop(session *Session, builder *mtop.Builder, client *mtop.Client, out sink.Target, log *slog.Logger) *HeartbeatLoop {
	return &HeartbeatLoop{
		session:    session,
		builder:    builder,
		client:     client,
		out:        out,
		log:        log,
		interval:   defaultHeartbeatInterval,
		staleAfter: defaultStalenessWindow,
		now:        time.Now,
	}
}

// Run cycles until the context is canceled, a pull fails, or the feed goes
// stale (ErrStale).
func (h *HeartbeatLoop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if idle := h.session.IdleFor(h.now()); idle >= h.staleAfter {
			h.log.Info("feed stale, forcing reconnect", "idle", idle.String())
			return ErrStale
		}
		if err := h.cycle(ctx); err != nil {
			return fmt.Errorf("heartbeat pull: %w", err)
		}
		if err := sleepCtx(ctx, h.interval); err != nil {
			return err
		}
	}
}

func (h *HeartbeatLoop) cycle(ctx context.Context) error {
	creds, err := h.session.Credentials()
	if err != nil {
		return err
	}

	req, err := h.builder.HeartbeatPull(h.session.Topic, h.session.Offset(), string(h.session.Room))
	if err != nil {
		return err
	}
	env, err := h.client.Do(ctx, req, creds)
	if err != nil {
		return err
	}
	data, err := env.HeartbeatData()
	if err != nil {
		return err
	}

	entries := data.TimestampList
	if len(entries) == 0 {
		return nil
	}

	h.session.SetOffset(entries[len(entries)-1].Offset)
	h.session.Touch(h.now())
	h.log.Debug("notifications received", "count", len(entries), "offset", h.session.Offset())

	for _, entry := range entries {
		if entry.Data == "" {
			continue
		}
		objects, err := frame.Decode(entry.Data)
		if err != nil {
			// One undecodable frame is a local skip, not a loop failure.
			h.log.Debug("frame discarded", "error", err)
			continue
		}
		for _, obj := range objects {
			ev := router.Classify(obj)
			ev.Room = h.session.Room
			h.out.Emit(ev)
		}
	}
	return nil
}
