package router

import (
	"testing"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/types"
)

func TestClassifyCommentPlainChat(t *testing.T) {
	ev := ClassifyComment(mtop.CommentRecord{
		PublisherNick: "A",
		PublisherID:   "1",
		Content:       "hello",
	})
	if ev.Kind != types.KindChat {
		t.Fatalf("kind = %s, want chat", ev.Kind)
	}
	if ev.Chat.UserID != "1" || ev.Chat.UserName != "A" || ev.Chat.Content != "hello" {
		t.Errorf("unexpected chat: %+v", ev.Chat)
	}
}

func TestClassifyCommentGiftReparse(t *testing.T) {
	ev := ClassifyComment(mtop.CommentRecord{
		PublisherNick: "张三",
		PublisherID:   "1",
		Content:       "张三送出了棒棒糖x5",
	})
	if ev.Kind != types.KindGift {
		t.Fatalf("kind = %s, want gift", ev.Kind)
	}
	if ev.Gift.Count != 5 {
		t.Errorf("count = %d, want 5", ev.Gift.Count)
	}
	// The gift name is the item text after the action keyword with the
	// digit run removed.
	if ev.Gift.GiftName != "棒棒糖x" {
		t.Errorf("gift name = %q, want %q", ev.Gift.GiftName, "棒棒糖x")
	}
	if ev.Gift.UserName != "张三" {
		t.Errorf("user name = %q", ev.Gift.UserName)
	}
}

func TestClassifyCommentGiftKeywordVariants(t *testing.T) {
	tests := []struct {
		content   string
		wantCount int
		wantName  string
	}{
		{"李四打赏了火箭2", 2, "火箭"},
		{"感谢送来的小心心", 1, "感谢送来的小心心"},
		{"王五送出了礼物", 1, "礼物"},
	}
	for _, tt := range tests {
		ev := ClassifyComment(mtop.CommentRecord{PublisherNick: "N", Content: tt.content})
		if ev.Kind != types.KindGift {
			t.Errorf("%q: kind = %s, want gift", tt.content, ev.Kind)
			continue
		}
		if ev.Gift.Count != tt.wantCount {
			t.Errorf("%q: count = %d, want %d", tt.content, ev.Gift.Count, tt.wantCount)
		}
		if ev.Gift.GiftName != tt.wantName {
			t.Errorf("%q: name = %q, want %q", tt.content, ev.Gift.GiftName, tt.wantName)
		}
	}
}

func TestClassifyCommentGiftDefaults(t *testing.T) {
	// Content that matches a keyword but yields no usable name or count
	// falls back to count 1 and the unknown-gift name.
	ev := ClassifyComment(mtop.CommentRecord{PublisherNick: "N", Content: "送出了123"})
	if ev.Kind != types.KindGift {
		t.Fatalf("kind = %s, want gift", ev.Kind)
	}
	if ev.Gift.Count != 123 {
		t.Errorf("count = %d, want 123", ev.Gift.Count)
	}
	if ev.Gift.GiftName != "未知礼物" {
		t.Errorf("name = %q, want 未知礼物", ev.Gift.GiftName)
	}
}

func TestTrailingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"棒棒糖x5", 5},
		{"礼物x99", 99},
		{"no digits", 0},
		{"", 0},
		{"123", 123},
	}
	for _, tt := range tests {
		if got := trailingInt(tt.in); got != tt.want {
			t.Errorf("trailingInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
