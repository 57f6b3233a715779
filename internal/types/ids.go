// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type RoomID string
type EventID string

func NewEventID() EventID {
	return EventID(uuid.New().String())
}
