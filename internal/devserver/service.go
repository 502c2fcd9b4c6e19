package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davincicode/client-go/internal/dependencies/clock"
	"github.com/davincicode/client-go/internal/dependencies/random"
	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
	"github.com/davincicode/client-go/internal/storage"
)

const (
	roomCodeLength   = 6
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// DefaultResetDelay is how long an ended game stays on screen before
	// the room flips back to WAITING
	DefaultResetDelay = 5 * time.Second
)

// ServiceConfig wires a Service
type ServiceConfig struct {
	Storage storage.Storage
	Hubs    *HubManager
	Clock   clock.Clock
	Random  random.Random
	Logger  *slog.Logger

	// ResetDelay overrides DefaultResetDelay when positive
	ResetDelay time.Duration
}

// Service implements the room and game operations, persisting through
// storage and fanning state changes out over the SSE hubs.
type Service struct {
	store      storage.Storage
	hubs       *HubManager
	clock      clock.Clock
	rng        random.Random
	logger     *slog.Logger
	resetDelay time.Duration

	// One coarse lock serializes all room/game mutation. Two players per
	// room keeps contention irrelevant.
	mu          sync.Mutex
	resetTimers map[model.RoomCode]*time.Timer
}

// NewService creates the game service
func NewService(cfg ServiceConfig) *Service {
	delay := cfg.ResetDelay
	if delay <= 0 {
		delay = DefaultResetDelay
	}
	return &Service{
		store:       cfg.Storage,
		hubs:        cfg.Hubs,
		clock:       cfg.Clock,
		rng:         cfg.Random,
		logger:      cfg.Logger.With(slog.String("component", "service")),
		resetDelay:  delay,
		resetTimers: make(map[model.RoomCode]*time.Timer),
	}
}

// Close cancels any pending auto-reset timers
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, timer := range s.resetTimers {
		timer.Stop()
		delete(s.resetTimers, code)
	}
}

// Register creates a new user with a unique nickname
func (s *Service) Register(ctx context.Context, nickname string) (*model.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname must not be empty", model.ErrInvalidRequest)
	}

	if _, err := s.store.GetUserByNickname(ctx, nickname); err == nil {
		return nil, model.ErrNicknameTaken
	}

	user := &model.User{
		ID:       model.ParticipantID(uuid.NewString()),
		Nickname: nickname,
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	s.logger.Info("user registered", slog.String("user_id", string(user.ID)), slog.String("nickname", nickname))
	return user, nil
}

// CreateRoom opens a new room with the caller as host
func (s *Service) CreateRoom(ctx context.Context, title string, userID model.ParticipantID) (*model.Room, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s's room", user.Nickname)
	}

	now := s.clock.Now()
	room := &model.Room{
		ID:           uuid.NewString(),
		Title:        title,
		RoomCode:     model.RoomCode(s.rng.String(roomCodeLength, roomCodeAlphabet)),
		Status:       model.RoomStatusWaiting,
		HostID:       user.ID,
		HostNickname: user.Nickname,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}

	s.hubs.Broadcast(topicRoom, room.RoomCode, protocol.RoomCreated{Room: *room})
	s.logger.Info("room created",
		slog.String("room", string(room.RoomCode)),
		slog.String("host", user.Nickname),
	)
	return room, nil
}

// GetRoom returns the room snapshot
func (s *Service) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return s.store.GetRoom(ctx, code)
}

// ListWaitingRooms returns rooms open for a guest
func (s *Service) ListWaitingRooms(ctx context.Context) ([]*model.Room, error) {
	return s.store.ListWaitingRooms(ctx)
}

// Join seats the caller as guest
func (s *Service) Join(ctx context.Context, code model.RoomCode, userID model.ParticipantID) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if room.IsParticipant(userID) {
		return nil, model.ErrAlreadyInRoom
	}
	if room.Status != model.RoomStatusWaiting {
		return nil, model.ErrGameInProgress
	}
	if room.HasGuest() {
		return nil, model.ErrRoomFull
	}

	room.GuestID = user.ID
	room.GuestNickname = user.Nickname
	room.UpdatedAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}

	s.hubs.Broadcast(topicRoom, code, protocol.RoomUpdated{Room: *room})
	s.logger.Info("guest joined", slog.String("room", string(code)), slog.String("guest", user.Nickname))
	return room, nil
}

// Leave removes the caller from the room. A live game is abandoned; a host
// leaving dissolves the room entirely.
func (s *Service) Leave(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	role, ok := room.RoleOf(userID)
	if !ok {
		return model.ErrNotInRoom
	}

	if room.Status != model.RoomStatusWaiting {
		if err := s.store.DeleteGame(ctx, code); err != nil {
			return fmt.Errorf("deleting game: %w", err)
		}
		s.hubs.Broadcast(topicGame, code, protocol.GameReset{Reason: "opponent left"})
	}
	s.cancelReset(code)

	if role == model.RoleHost {
		if err := s.store.DeleteRoom(ctx, code); err != nil {
			return fmt.Errorf("deleting room: %w", err)
		}
		s.hubs.Broadcast(topicRoom, code, protocol.RoomDeleted{})
		// Give the deletion event time to fan out before the hubs go away
		time.AfterFunc(time.Second, func() { s.hubs.CloseRoom(code) })
		s.logger.Info("room dissolved", slog.String("room", string(code)))
		return nil
	}

	room.GuestID = ""
	room.GuestNickname = ""
	room.Status = model.RoomStatusWaiting
	room.WinnerNickname = ""
	room.UpdatedAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return fmt.Errorf("saving room: %w", err)
	}

	s.hubs.Broadcast(topicRoom, code, protocol.RoomUpdated{Room: *room})
	s.logger.Info("guest left", slog.String("room", string(code)))
	return nil
}

// Start deals a new game; host only, and only with both seats taken
func (s *Service) Start(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if room.HostID != userID {
		return model.ErrNotHost
	}
	if !room.HasGuest() {
		return model.ErrNeedGuest
	}
	if room.Status == model.RoomStatusPlaying {
		return model.ErrGameInProgress
	}
	s.cancelReset(code)

	game := dealGame(code, room.HostID, room.GuestID, s.rng, s.clock.Now())
	if err := s.store.SaveGame(ctx, game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}

	room.Status = model.RoomStatusPlaying
	room.WinnerNickname = ""
	room.UpdatedAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return fmt.Errorf("saving room: %w", err)
	}

	s.hubs.Broadcast(topicRoom, code, protocol.RoomUpdated{Room: *room})
	s.hubs.Broadcast(topicGame, code, protocol.GameStarted{
		Cards:         game.Cards,
		CurrentTurnID: game.CurrentTurnID,
	})
	s.logger.Info("game started", slog.String("room", string(code)))
	return nil
}

// Draw takes a card of the requested color for the caller
func (s *Service) Draw(ctx context.Context, code model.RoomCode, userID model.ParticipantID, color model.CardColor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := s.playingGame(ctx, code)
	if err != nil {
		return err
	}

	result, err := applyDraw(game, userID, color)
	if err != nil {
		// Draw rejections that depend on hidden deck composition are also
		// announced on the stream so the player's UI can show them.
		if errors.Is(err, model.ErrColorExhausted) || errors.Is(err, model.ErrDeckEmpty) {
			s.hubs.Broadcast(topicGame, code, protocol.DrawFailed{
				Reason:        drawFailureReason(err, color),
				ParticipantID: userID,
			})
		}
		return err
	}

	game.UpdatedAt = s.clock.Now()
	if err := s.store.SaveGame(ctx, game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}

	s.hubs.Broadcast(topicGame, code, protocol.CardDrawn{
		Card:          result.Card,
		ParticipantID: userID,
		DeckEmpty:     result.DeckEmpty,
	})
	return nil
}

func drawFailureReason(err error, color model.CardColor) string {
	if errors.Is(err, model.ErrColorExhausted) {
		return fmt.Sprintf("no %s cards left in the deck", strings.ToLower(string(color)))
	}
	return "the deck is empty"
}

// Guess resolves a guess against an opponent card
func (s *Service) Guess(ctx context.Context, code model.RoomCode, userID model.ParticipantID, targetCardID, number int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	game, err := s.playingGame(ctx, code)
	if err != nil {
		return err
	}
	opponentID, ok := room.Opponent(userID)
	if !ok {
		return model.ErrNotInRoom
	}

	target := game.CardByID(targetCardID)
	result, err := applyGuess(game, userID, opponentID, targetCardID, number)
	if err != nil {
		return err
	}

	game.UpdatedAt = s.clock.Now()
	if err := s.store.SaveGame(ctx, game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}

	opened := protocol.CardOpened{
		OpenedCards:   result.Opened,
		NextTurnID:    result.NextTurnID,
		Correct:       result.Correct,
		GuessedNumber: number,
		OwnerNickname: room.NicknameOf(target.OwnerID),
		GuesserID:     userID,
	}
	if len(result.Opened) > 0 {
		opened.CardID = result.Opened[0].ID
	}
	s.hubs.Broadcast(topicGame, code, opened)

	if result.Winner != "" {
		s.endGame(ctx, room, result.Winner)
	}
	return nil
}

// Pass ends the caller's turn after a correct guess
func (s *Service) Pass(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	game, err := s.playingGame(ctx, code)
	if err != nil {
		return err
	}
	opponentID, ok := room.Opponent(userID)
	if !ok {
		return model.ErrNotInRoom
	}

	if err := applyPass(game, userID, opponentID); err != nil {
		return err
	}

	game.UpdatedAt = s.clock.Now()
	if err := s.store.SaveGame(ctx, game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}

	s.hubs.Broadcast(topicGame, code, protocol.TurnChanged{NextTurnID: game.CurrentTurnID})
	return nil
}

// playingGame loads the game for a room, requiring PLAYING status
func (s *Service) playingGame(ctx context.Context, code model.RoomCode) (*model.GameSession, error) {
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status == model.RoomStatusEnded {
		return nil, model.ErrGameEnded
	}
	if room.Status != model.RoomStatusPlaying {
		return nil, model.ErrNoGame
	}
	return s.store.GetGame(ctx, code)
}

// endGame freezes the room in ENDED and schedules the automatic reset back
// to WAITING. Caller holds s.mu.
func (s *Service) endGame(ctx context.Context, room *model.Room, winner model.ParticipantID) {
	room.Status = model.RoomStatusEnded
	room.WinnerNickname = room.NicknameOf(winner)
	room.UpdatedAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		s.logger.Error("saving ended room", slog.String("error", err.Error()))
		return
	}

	code := room.RoomCode
	s.hubs.Broadcast(topicGame, code, protocol.GameEnded{WinnerNickname: room.WinnerNickname})
	s.hubs.Broadcast(topicRoom, code, protocol.RoomUpdated{Room: *room})
	s.logger.Info("game ended",
		slog.String("room", string(code)),
		slog.String("winner", room.WinnerNickname),
	)

	s.cancelReset(code)
	s.resetTimers[code] = time.AfterFunc(s.resetDelay, func() {
		s.resetRoom(code)
	})
}

// resetRoom flips an ended room back to WAITING once the display delay has
// passed, mirroring the countdown clients run locally
func (s *Service) resetRoom(code model.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resetTimers, code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return
	}
	if room.Status != model.RoomStatusEnded {
		return
	}

	if err := s.store.DeleteGame(ctx, code); err != nil {
		s.logger.Error("deleting finished game", slog.String("error", err.Error()))
	}

	room.Status = model.RoomStatusWaiting
	room.WinnerNickname = ""
	room.UpdatedAt = s.clock.Now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		s.logger.Error("resetting room", slog.String("error", err.Error()))
		return
	}

	s.hubs.Broadcast(topicGame, code, protocol.GameReset{Reason: "new round"})
	s.hubs.Broadcast(topicRoom, code, protocol.RoomUpdated{Room: *room})
	s.logger.Info("room reset", slog.String("room", string(code)))
}

// cancelReset stops a pending auto-reset timer. Caller holds s.mu.
func (s *Service) cancelReset(code model.RoomCode) {
	if timer, ok := s.resetTimers[code]; ok {
		timer.Stop()
		delete(s.resetTimers, code)
	}
}
