// internal/live/supervisor.go
package live

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/sink"
	"github.com/user/danmaku/internal/types"
)

const (
	reconnectDelay    = 1 * time.Second
	reconnectMaxDelay = 60 * time.Second
)

// Options tunes a Supervisor. Zero values select production defaults.
type Options struct {
	Logger *slog.Logger
	Client *mtop.Client

	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	HeartbeatInterval time.Duration
	StalenessWindow   time.Duration
	CommentDelay      time.Duration // default sleep when the response carries none

	// ConfigureBuilder is applied to each session's request builder before
	// the loops start. Tests use it to point at a local server.
	ConfigureBuilder func(*mtop.Builder)
}

// Supervisor owns the session lifecycle for one room: bootstrap, run both
// polling loops, tear down on failure or staleness, reconnect with capped
// exponential backoff. It is the single source of truth for "are we
// connected" and the single retry authority; nothing below it retries.
//
// One Supervisor monitors one room. Multiple rooms take independent
// Supervisor instances with no shared state.
type Supervisor struct {
	room types.RoomID
	boot Bootstrapper
	out  sink.Target
	opts Options

	connected atomic.Bool
}

// NewSupervisor creates a Supervisor emitting events to out.
func NewSupervisor(room types.RoomID, boot Bootstrapper, out sink.Target, opts Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Client == nil {
		opts.Client = mtop.NewClient()
	}
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = reconnectDelay
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = reconnectMaxDelay
	}
	return &Supervisor{
		room: room,
		boot: boot,
		out:  out,
		opts: opts,
	}
}

// Connected reports whether a session is currently running.
func (s *Supervisor) Connected() bool {
	return s.connected.Load()
}

// Run bootstraps and monitors the room until the context is canceled.
// Every session-ending condition (bootstrap failure, loop error, staleness)
// feeds the same backoff-and-reconnect path: the delay doubles after each
// failed attempt, capped at the ceiling, and resets to the floor once a
// session reaches the running state.
func (s *Supervisor) Run(ctx context.Context) error {
	retry := newReconnectBackoff(s.opts.BackoffInitial, s.opts.BackoffMax)

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		sessionErr := s.runSession(ctx, retry)
		if sessionErr == nil {
			return struct{}{}, nil
		}
		if errors.Is(sessionErr, context.Canceled) || errors.Is(sessionErr, context.DeadlineExceeded) {
			return struct{}{}, sessionErr
		}
		if errors.Is(sessionErr, ErrStale) {
			s.opts.Logger.Info("session stale, reconnecting", "room", string(s.room))
		} else {
			s.opts.Logger.Warn("session ended", "room", string(s.room), "error", sessionErr)
		}
		return struct{}{}, sessionErr
	},
		backoff.WithBackOff(retry),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.opts.Logger.Info("reconnect scheduled", "room", string(s.room), "wait", next.String())
		}),
	)

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// runSession performs one bootstrap-and-run cycle. It returns when either
// loop exits; the sibling is canceled before returning and the session is
// invalidated so late requests fail cleanly.
func (s *Supervisor) runSession(ctx context.Context, retry *backoff.ExponentialBackOff) error {
	topic, creds, err := s.boot.AcquireSession(ctx, s.room)
	if err != nil {
		return err
	}
	s.opts.Logger.Info("session established", "room", string(s.room), "topic", topic)

	session := NewSession(topic, s.room, creds, time.Now())
	defer session.Invalidate()

	builder := mtop.NewBuilder(creds.Token)
	if s.opts.ConfigureBuilder != nil {
		s.opts.ConfigureBuilder(builder)
	}

	poll := NewPollLoop(session, builder, s.opts.Client, s.out, s.opts.Logger)
	if s.opts.CommentDelay > 0 {
		poll.defaultDelay = s.opts.CommentDelay
	}
	heartbeat := NewHeartbeatLoop(session, builder, s.opts.Client, s.out, s.opts.Logger)
	if s.opts.HeartbeatInterval > 0 {
		heartbeat.interval = s.opts.HeartbeatInterval
	}
	if s.opts.StalenessWindow > 0 {
		heartbeat.staleAfter = s.opts.StalenessWindow
	}

	s.connected.Store(true)
	defer s.connected.Store(false)

	// Reaching the running state resets the reconnect delay to its floor.
	retry.Reset()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return poll.Run(groupCtx) })
	group.Go(func() error { return heartbeat.Run(groupCtx) })
	return group.Wait()
}

// newReconnectBackoff builds the supervisor's delay schedule: floor,
// doubling per failed attempt, capped at max, deterministic.
func newReconnectBackoff(initial, maxDelay time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = maxDelay
	b.Reset()
	return b
}
