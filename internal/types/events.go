// internal/types/events.go
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags the variant carried by an Event.
type Kind string

const (
	KindChat       Kind = "chat"
	KindGift       Kind = "gift"
	KindLike       Kind = "like"
	KindMemberJoin Kind = "member_join"
	KindStats      Kind = "stats"
	KindUnknown    Kind = "unknown"
)

type Chat struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}

type Gift struct {
	UserName string `json:"user_name"`
	GiftName string `json:"gift_name"`
	Count    int    `json:"count"`
}

type Like struct {
	UserName string `json:"user_name"`
	Count    int    `json:"count"`
}

type MemberJoin struct {
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Badges   []string `json:"badges,omitempty"`
}

type Stats struct {
	CurrentViewers string `json:"current_viewers"`
	TotalViewers   string `json:"total_viewers"`
}

// Event is one classified feed item. Exactly one variant pointer is set for
// the matching Kind; KindUnknown carries the raw payload instead.
type Event struct {
	ID   EventID   `json:"id"`
	Room RoomID    `json:"room,omitempty"`
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`

	Chat       *Chat           `json:"chat,omitempty"`
	Gift       *Gift           `json:"gift,omitempty"`
	Like       *Like           `json:"like,omitempty"`
	MemberJoin *MemberJoin     `json:"member_join,omitempty"`
	Stats      *Stats          `json:"stats,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// NewEvent creates an Event of the given kind with a fresh ID and timestamp.
// The caller fills in the matching variant.
func NewEvent(kind Kind) Event {
	return Event{
		ID:   NewEventID(),
		Kind: kind,
		At:   time.Now(),
	}
}

// Line renders the event as a single human-readable line, the format used
// when no sink is attached and output goes straight to a text stream.
func (e Event) Line() string {
	switch e.Kind {
	case KindChat:
		if e.Chat != nil {
			return fmt.Sprintf("[chat] %s: %s", e.Chat.UserName, e.Chat.Content)
		}
	case KindGift:
		if e.Gift != nil {
			return fmt.Sprintf("[gift] %s -> %s x%d", e.Gift.UserName, e.Gift.GiftName, e.Gift.Count)
		}
	case KindLike:
		if e.Like != nil {
			return fmt.Sprintf("[like] %s x%d", e.Like.UserName, e.Like.Count)
		}
	case KindMemberJoin:
		if e.MemberJoin != nil {
			return fmt.Sprintf("[join] %s %v", e.MemberJoin.UserName, e.MemberJoin.Badges)
		}
	case KindStats:
		if e.Stats != nil {
			return fmt.Sprintf("[stats] current=%s total=%s", e.Stats.CurrentViewers, e.Stats.TotalViewers)
		}
	case KindUnknown:
		return fmt.Sprintf("[unknown] %s", string(e.Raw))
	}
	return fmt.Sprintf("[%s]", e.Kind)
}
