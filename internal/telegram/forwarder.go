// Package telegram forwards selected event kinds to a Telegram chat, so a
// room owner can follow gifts and joins without keeping the terminal open.
package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/danmaku/internal/types"
)

// sender is the slice of the bot API the forwarder needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Forwarder is a sink target that relays events to one chat. Only the
// configured kinds are forwarded; an empty kind set forwards everything.
type Forwarder struct {
	bot    sender
	chatID int64
	kinds  map[types.Kind]bool
}

// New creates a Forwarder for the given bot token and chat.
func New(token string, chatID int64, kinds []string) (*Forwarder, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	f := &Forwarder{
		bot:    bot,
		chatID: chatID,
	}
	if len(kinds) > 0 {
		f.kinds = make(map[types.Kind]bool, len(kinds))
		for _, k := range kinds {
			f.kinds[types.Kind(k)] = true
		}
	}
	return f, nil
}

// Emit implements sink.Target. Send failures are logged and reported as
// drops; the pipeline never blocks on Telegram.
func (f *Forwarder) Emit(ev types.Event) bool {
	if f.kinds != nil && !f.kinds[ev.Kind] {
		return true
	}
	msg := tgbotapi.NewMessage(f.chatID, ev.Line())
	if _, err := f.bot.Send(msg); err != nil {
		slog.Warn("telegram forward failed", "kind", string(ev.Kind), "error", err)
		return false
	}
	return true
}
