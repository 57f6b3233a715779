// internal/live/poller.go
package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/router"
	"github.com/user/danmaku/internal/sink"
)

const defaultCommentDelay = 6 * time.Second

// PollLoop drives the comment feed: fetch with the current cursor, emit the
// classified records, sleep for the server-suggested delay, repeat. The
// loop never retries internally; any failure returns to the supervisor,
// which owns the single backoff policy.
type PollLoop struct {
	session *Session
	builder *mtop.Builder
	client  *mtop.Client
	out     sink.Target
	log     *slog.Logger

	defaultDelay time.Duration
	now          func() time.Time
}

// NewPollLoop creates a comment-feed loop over an established session.
func NewPollLoop(session *Session, builder *mtop.Builder, client *mtop.Client, out sink.Target, log *slog.Logger) *PollLoop {
	return &PollLoop{
		session:      session,
		builder:      builder,
		client:       client,
		out:          out,
		log:          log,
		defaultDelay: defaultCommentDelay,
		now:          time.Now,
	}
}

// Run cycles until the context is canceled or a fetch fails.
func (p *PollLoop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delay, err := p.cycle(ctx)
		if err != nil {
			return fmt.Errorf("comment fetch: %w", err)
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
}

// cycle performs one fetch and returns the delay before the next one.
func (p *PollLoop) cycle(ctx context.Context) (time.Duration, error) {
	creds, err := p.session.Credentials()
	if err != nil {
		return 0, err
	}

	req, err := p.builder.CommentFetch(p.session.Topic, p.session.Cursor())
	if err != nil {
		return 0, err
	}
	env, err := p.client.Do(ctx, req, creds)
	if err != nil {
		return 0, err
	}
	data, err := env.CommentData()
	if err != nil {
		return 0, err
	}

	p.session.SetCursor(data.PaginationContext)

	if len(data.Comments) > 0 {
		p.session.Touch(p.now())
		p.log.Debug("comments received", "count", len(data.Comments))
	}
	for _, rec := range data.Comments {
		ev := router.ClassifyComment(rec)
		ev.Room = p.session.Room
		p.out.Emit(ev)
	}

	delay := p.defaultDelay
	if data.Delay > 0 {
		delay = time.Duration(data.Delay) * time.Millisecond
	}
	return delay, nil
}

// sleepCtx waits for d or until the context is canceled, whichever comes
// first, so shutdown latency inside a sleep is bounded.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
