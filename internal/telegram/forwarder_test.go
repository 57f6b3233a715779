package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/danmaku/internal/types"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func giftEvent(name string, count int) types.Event {
	ev := types.NewEvent(types.KindGift)
	ev.Gift = &types.Gift{UserName: "B", GiftName: name, Count: count}
	return ev
}

func TestForwarderFiltersKinds(t *testing.T) {
	fake := &fakeSender{}
	f := &Forwarder{
		bot:    fake,
		chatID: 42,
		kinds:  map[types.Kind]bool{types.KindGift: true},
	}

	chat := types.NewEvent(types.KindChat)
	chat.Chat = &types.Chat{UserName: "A", Content: "hello"}
	if !f.Emit(chat) {
		t.Error("filtered-out kinds are accepted silently, not dropped")
	}
	if len(fake.sent) != 0 {
		t.Fatalf("chat forwarded despite gift-only filter: %+v", fake.sent)
	}

	if !f.Emit(giftEvent("火箭", 2)) {
		t.Error("gift emit reported a drop")
	}
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	msg := fake.sent[0]
	if msg.ChatID != 42 {
		t.Errorf("chat id = %d, want 42", msg.ChatID)
	}
	if msg.Text != "[gift] B -> 火箭 x2" {
		t.Errorf("text = %q", msg.Text)
	}
}

func TestForwarderNilFilterForwardsEverything(t *testing.T) {
	fake := &fakeSender{}
	f := &Forwarder{bot: fake, chatID: 1}

	chat := types.NewEvent(types.KindChat)
	chat.Chat = &types.Chat{UserName: "A", Content: "x"}
	f.Emit(chat)
	f.Emit(giftEvent("礼物", 1))

	if len(fake.sent) != 2 {
		t.Errorf("sent %d messages, want 2", len(fake.sent))
	}
}

func TestForwarderReportsSendFailureAsDrop(t *testing.T) {
	fake := &fakeSender{err: errors.New("telegram unreachable")}
	f := &Forwarder{bot: fake, chatID: 1}

	if f.Emit(giftEvent("礼物", 1)) {
		t.Error("send failure must be reported as a drop")
	}
}
