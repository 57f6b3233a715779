// internal/router/gift.go
package router

import (
	"strconv"
	"strings"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/types"
)

// giftKeywords are the content markers that flag a chat record as a gift
// announcement rendered into the comment feed.
var giftKeywords = []string{"送出了", "打赏了", "礼物", "小心心", "棒棒糖"}

const defaultGiftName = "未知礼物"

// reparseGift re-interprets a comment record as a gift when its content
// matches the keyword set. The count is the trailing digit run of the
// content; the gift name is the text after the action keyword with digits
// removed. When extraction fails the gift defaults to count 1 and an
// unknown-gift name.
func reparseGift(rec mtop.CommentRecord) (*types.Gift, bool) {
	matched := ""
	for _, kw := range giftKeywords {
		if strings.Contains(rec.Content, kw) {
			matched = kw
			break
		}
	}
	if matched == "" {
		return nil, false
	}

	count := trailingInt(rec.Content)
	if count <= 0 {
		count = 1
	}

	// Prefer the text after an action keyword ("送出了"/"打赏了") as the
	// item description; marker-only matches fall back to the whole content.
	item := rec.Content
	for _, action := range []string{"送出了", "打赏了"} {
		if _, after, ok := strings.Cut(rec.Content, action); ok {
			item = after
			break
		}
	}

	name := strings.TrimSpace(stripDigits(item))
	if name == "" {
		name = defaultGiftName
	}

	return &types.Gift{
		UserName: rec.PublisherNick,
		GiftName: name,
		Count:    count,
	}, true
}

// trailingInt extracts the integer formed by the trailing digit run of s,
// or 0 when s does not end in a digit.
func trailingInt(s string) int {
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}
