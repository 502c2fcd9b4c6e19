package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/davincicode/client-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.UserTTL = time.Hour
	cfg.RoomTTL = time.Hour
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{ID: "u1", Nickname: "alice"}

	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	retrieved, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(user.ID, retrieved.ID)
	s.Equal(user.Nickname, retrieved.Nickname)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByNickname() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, &model.User{ID: "u1", Nickname: "alice"}))

	retrieved, err := s.storage.GetUserByNickname(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("u1"), retrieved.ID)

	_, err = s.storage.GetUserByNickname(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestDeleteUserRemovesNicknameIndex() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, &model.User{ID: "u1", Nickname: "alice"}))
	s.Require().NoError(s.storage.DeleteUser(s.ctx, "u1"))

	_, err := s.storage.GetUser(s.ctx, "u1")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByNickname(s.ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestUserTTLApplied() {
	s.Require().NoError(s.storage.SaveUser(s.ctx, &model.User{ID: "u1", Nickname: "alice"}))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetUser(s.ctx, "u1")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		ID:           "r1",
		Title:        "come play",
		RoomCode:     "ABC123",
		Status:       model.RoomStatusWaiting,
		HostID:       "u1",
		HostNickname: "alice",
	}

	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(room.Title, retrieved.Title)
	s.Equal(room.HostID, retrieved.HostID)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestListWaitingRoomsTracksStatus() {
	waiting := &model.Room{ID: "r1", RoomCode: "AAA111", Status: model.RoomStatusWaiting, HostID: "u1"}
	playing := &model.Room{ID: "r2", RoomCode: "BBB222", Status: model.RoomStatusPlaying, HostID: "u2"}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, waiting))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, playing))

	rooms, err := s.storage.ListWaitingRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomCode("AAA111"), rooms[0].RoomCode)

	// Status transition must drop the room from the index
	waiting.Status = model.RoomStatusPlaying
	s.Require().NoError(s.storage.SaveRoom(s.ctx, waiting))

	rooms, err = s.storage.ListWaitingRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestListWaitingRoomsRepairsExpiredEntries() {
	room := &model.Room{ID: "r1", RoomCode: "AAA111", Status: model.RoomStatusWaiting, HostID: "u1"}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	// The room value expires but the set index has no TTL
	s.mini.FastForward(2 * time.Hour)

	rooms, err := s.storage.ListWaitingRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestDeleteRoom() {
	room := &model.Room{ID: "r1", RoomCode: "AAA111", Status: model.RoomStatusWaiting, HostID: "u1"}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "AAA111"))

	_, err := s.storage.GetRoom(s.ctx, "AAA111")
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.ListWaitingRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.GameSession{
		RoomCode:      "ABC123",
		CurrentTurnID: "u1",
		Cards: []model.Card{
			{ID: 1, Number: 4, Color: model.ColorWhite, Status: model.CardClose, OwnerID: "u1"},
		},
		Deck: []model.Card{
			{ID: 2, Number: 7, Color: model.ColorBlack, Status: model.CardClose},
		},
	}

	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	retrieved, err := s.storage.GetGame(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(game.CurrentTurnID, retrieved.CurrentTurnID)
	s.Len(retrieved.Cards, 1)
	s.Len(retrieved.Deck, 1)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrNoGame)
}

func (s *StorageSuite) TestDeleteGame() {
	game := &model.GameSession{RoomCode: "ABC123", CurrentTurnID: "u1"}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	s.Require().NoError(s.storage.DeleteGame(s.ctx, "ABC123"))

	_, err := s.storage.GetGame(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrNoGame)
}
