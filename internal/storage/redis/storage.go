package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + nickname index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, s.cfg.UserTTL)
	pipe.Set(ctx, nicknameIndexKey(user.Nickname), string(user.ID), s.cfg.UserTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.ParticipantID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	id, err := s.client.Get(ctx, nicknameIndexKey(nickname)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.ParticipantID(id))
}

func (s *Storage) DeleteUser(ctx context.Context, id model.ParticipantID) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, userKey(id))
	pipe.Del(ctx, nicknameIndexKey(user.Nickname))
	_, err = pipe.Exec(ctx)
	return err
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// The waiting-rooms index tracks only rooms open for a guest
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.RoomCode), data, s.cfg.RoomTTL)
	if room.Status == model.RoomStatusWaiting {
		pipe.SAdd(ctx, waitingRoomsIndexKey(), string(room.RoomCode))
	} else {
		pipe.SRem(ctx, waitingRoomsIndexKey(), string(room.RoomCode))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) ListWaitingRooms(ctx context.Context) ([]*model.Room, error) {
	codes, err := s.client.SMembers(ctx, waitingRoomsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	var rooms []*model.Room
	for _, code := range codes {
		room, err := s.GetRoom(ctx, model.RoomCode(code))
		if err != nil {
			if errors.Is(err, model.ErrRoomNotFound) {
				// Room expired out from under the index; repair it
				s.client.SRem(ctx, waitingRoomsIndexKey(), code)
				continue
			}
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(code))
	pipe.SRem(ctx, waitingRoomsIndexKey(), string(code))
	_, err := pipe.Exec(ctx)
	return err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameSession) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, gameKey(game.RoomCode), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetGame(ctx context.Context, code model.RoomCode) (*model.GameSession, error) {
	data, err := s.client.Get(ctx, gameKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoGame
		}
		return nil, err
	}

	var game model.GameSession
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, code model.RoomCode) error {
	return s.client.Del(ctx, gameKey(code)).Err()
}
