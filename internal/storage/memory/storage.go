package memory

import (
	"context"
	"sync"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.ParticipantID]*model.User
	nicknameIndex map[string]model.ParticipantID
	rooms         map[model.RoomCode]*model.Room
	games         map[model.RoomCode]*model.GameSession
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.ParticipantID]*model.User),
		nicknameIndex: make(map[string]model.ParticipantID),
		rooms:         make(map[model.RoomCode]*model.Room),
		games:         make(map[model.RoomCode]*model.GameSession),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[user.ID]; ok && prev.Nickname != user.Nickname {
		delete(s.nicknameIndex, prev.Nickname)
	}
	s.users[user.ID] = user
	s.nicknameIndex[user.Nickname] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.ParticipantID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nicknameIndex[nickname]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		delete(s.nicknameIndex, user.Nickname)
	}
	delete(s.users, id)
	return nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.RoomCode] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) ListWaitingRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rooms []*model.Room
	for _, room := range s.rooms {
		if room.Status == model.RoomStatusWaiting {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.RoomCode] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, code model.RoomCode) (*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[code]
	if !ok {
		return nil, model.ErrNoGame
	}
	return game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, code)
	return nil
}
