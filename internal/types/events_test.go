package types

import (
	"encoding/json"
	"testing"
)

func TestEventLine(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "chat",
			ev:   Event{Kind: KindChat, Chat: &Chat{UserName: "A", Content: "hello"}},
			want: "[chat] A: hello",
		},
		{
			name: "gift",
			ev:   Event{Kind: KindGift, Gift: &Gift{UserName: "B", GiftName: "火箭", Count: 2}},
			want: "[gift] B -> 火箭 x2",
		},
		{
			name: "like",
			ev:   Event{Kind: KindLike, Like: &Like{UserName: "C", Count: 5}},
			want: "[like] C x5",
		},
		{
			name: "join with badges",
			ev:   Event{Kind: KindMemberJoin, MemberJoin: &MemberJoin{UserName: "D", Badges: []string{"vip", "fan"}}},
			want: "[join] D [vip fan]",
		},
		{
			name: "stats",
			ev:   Event{Kind: KindStats, Stats: &Stats{CurrentViewers: "1.5万", TotalViewers: "99"}},
			want: "[stats] current=1.5万 total=99",
		},
		{
			name: "unknown keeps raw",
			ev:   Event{Kind: KindUnknown, Raw: json.RawMessage(`{"x":1}`)},
			want: `[unknown] {"x":1}`,
		},
		{
			name: "missing variant degrades to the tag",
			ev:   Event{Kind: KindChat},
			want: "[chat]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.Line(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewEventAssignsUniqueIDs(t *testing.T) {
	a := NewEvent(KindChat)
	b := NewEvent(KindChat)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids must be unique and non-empty: %s vs %s", a.ID, b.ID)
	}
	if a.At.IsZero() {
		t.Error("timestamp must be set")
	}
}
