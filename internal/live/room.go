// internal/live/room.go
package live

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/user/danmaku/internal/types"
)

var liveIDPattern = regexp.MustCompile(`liveId=(\d+)`)

// ParseRoomID accepts either a bare room id or a room page URL
// (https://tbzb.taobao.com/live?liveId=...) and returns the room id.
func ParseRoomID(input string) (types.RoomID, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty room identifier")
	}
	if strings.Contains(input, "taobao.com") {
		m := liveIDPattern.FindStringSubmatch(input)
		if m == nil {
			return "", fmt.Errorf("no liveId parameter in url %q", input)
		}
		return types.RoomID(m[1]), nil
	}
	return types.RoomID(input), nil
}
