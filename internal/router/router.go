// Package router classifies raw feed payloads into typed events.
//
// Two shapes feed the router: comment-feed records and the heterogeneous
// JSON objects extracted from heartbeat frames. Heartbeat objects are
// dispatched by key shape through a fixed-priority decision table; anything
// that matches no rule becomes an Unknown event carrying the raw object, so
// classification is total and unrecognized shapes stay observable. The
// table was reverse-engineered from observed traffic and is provisional;
// the Unknown fallback is mandatory, not a best-effort afterthought.
package router

import (
	"encoding/json"

	"github.com/user/danmaku/internal/mtop"
	"github.com/user/danmaku/internal/types"
)

// Classify maps one decoded heartbeat object to a typed event. First match
// wins:
//
//  1. viewCountFormat or pageViewCount  -> Stats
//  2. nick with flowSourceText/subType  -> MemberJoin
//  3. value.dig                         -> Like
//  4. subType 10001                     -> Chat
//  5. subType 10002                     -> Gift
//  6. anything else                     -> Unknown (raw attached)
func Classify(raw json.RawMessage) types.Event {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return unknown(raw)
	}

	if hasKey(obj, "viewCountFormat") || hasKey(obj, "pageViewCount") {
		ev := types.NewEvent(types.KindStats)
		ev.Stats = &types.Stats{
			CurrentViewers: stringField(obj, "viewCountFormat"),
			TotalViewers:   stringField(obj, "pageViewCount"),
		}
		return ev
	}

	if hasKey(obj, "nick") && (hasKey(obj, "flowSourceText") || hasKey(obj, "subType")) {
		ev := types.NewEvent(types.KindMemberJoin)
		ev.MemberJoin = &types.MemberJoin{
			UserID:   stringField(obj, "userId"),
			UserName: stringField(obj, "nick"),
			Badges:   badges(obj),
		}
		return ev
	}

	if value, ok := obj["value"].(map[string]any); ok && hasKey(value, "dig") {
		ev := types.NewEvent(types.KindLike)
		ev.Like = &types.Like{
			UserName: stringField(obj, "nick"),
			Count:    intField(value, "dig"),
		}
		return ev
	}

	switch intField(obj, "subType") {
	case 10001:
		ev := types.NewEvent(types.KindChat)
		ev.Chat = &types.Chat{
			UserID:   stringField(obj, "userId"),
			UserName: stringField(obj, "nick"),
			Content:  stringField(obj, "content"),
		}
		return ev
	case 10002:
		ev := types.NewEvent(types.KindGift)
		ev.Gift = &types.Gift{
			UserName: stringField(obj, "nick"),
			GiftName: stringField(obj, "giftName"),
			Count:    max(intField(obj, "count"), 1),
		}
		return ev
	}

	return unknown(raw)
}

// ClassifyComment maps one comment-feed record to a typed event. Records
// whose content matches the gift keyword set are re-interpreted as Gift
// events; everything else is Chat.
func ClassifyComment(rec mtop.CommentRecord) types.Event {
	if gift, ok := reparseGift(rec); ok {
		ev := types.NewEvent(types.KindGift)
		ev.Gift = gift
		return ev
	}
	ev := types.NewEvent(types.KindChat)
	ev.Chat = &types.Chat{
		UserID:   rec.PublisherID,
		UserName: rec.PublisherNick,
		Content:  rec.Content,
	}
	return ev
}

// badges derives badge strings from the nested identity flags, in fixed
// order: VIP flag, membership flag, fan level.
func badges(obj map[string]any) []string {
	identity, _ := obj["identity"].(map[string]any)
	if identity == nil {
		return nil
	}
	var out []string
	if boolField(identity, "vip") {
		out = append(out, "vip")
	}
	if boolField(identity, "member") {
		out = append(out, "member")
	}
	if intField(identity, "fanLevel") > 0 {
		out = append(out, "fan")
	}
	return out
}

func unknown(raw json.RawMessage) types.Event {
	ev := types.NewEvent(types.KindUnknown)
	ev.Raw = raw
	return ev
}

func hasKey(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func boolField(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

// intField reads a numeric field, tolerating the float64 that
// encoding/json produces for untyped numbers.
func intField(obj map[string]any, key string) int {
	switch v := obj[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}
