// Package storage defines persistence for users, rooms, and game sessions.
// The memory implementation backs tests and single-process servers; the
// redis implementation is for anything longer-lived.
package storage

import (
	"context"

	"github.com/davincicode/client-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.ParticipantID) (*model.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*model.User, error)
	DeleteUser(ctx context.Context, id model.ParticipantID) error

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	ListWaitingRooms(ctx context.Context) ([]*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error

	// Game operations, keyed by the owning room's code
	SaveGame(ctx context.Context, game *model.GameSession) error
	GetGame(ctx context.Context, code model.RoomCode) (*model.GameSession, error)
	DeleteGame(ctx context.Context, code model.RoomCode) error
}
