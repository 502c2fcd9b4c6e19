package redis

import (
	"fmt"

	"github.com/davincicode/client-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "dvc"

// userKey returns the Redis key for a User
func userKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// nicknameIndexKey returns the Redis key for the nickname -> user_id index
func nicknameIndexKey(nickname string) string {
	return fmt.Sprintf("%s:idx:nickname:%s", keyPrefix, nickname)
}

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// waitingRoomsIndexKey returns the Redis key for the SET of waiting room codes
func waitingRoomsIndexKey() string {
	return fmt.Sprintf("%s:idx:waiting_rooms", keyPrefix)
}

// gameKey returns the Redis key for a GameSession
func gameKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, code)
}
