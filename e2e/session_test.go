package e2e_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davincicode/client-go/internal/client"
	"github.com/davincicode/client-go/internal/dependencies/clock"
	"github.com/davincicode/client-go/internal/dependencies/random"
	"github.com/davincicode/client-go/internal/devserver"
	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/session"
	"github.com/davincicode/client-go/internal/storage/memory"
	"github.com/davincicode/client-go/internal/stream"
	"github.com/davincicode/client-go/internal/testutil"
)

const (
	waitTimeout  = 5 * time.Second
	pollInterval = 10 * time.Millisecond
)

// startServer runs a full in-memory game server and returns a client for it
func startServer(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()

	logger := testutil.NopLogger()
	hubs := devserver.NewHubManager(logger)
	svc := devserver.NewService(devserver.ServiceConfig{
		Storage:    memory.New(),
		Hubs:       hubs,
		Clock:      clock.New(),
		Random:     random.New(),
		Logger:     logger,
		ResetDelay: 100 * time.Millisecond,
	})
	t.Cleanup(svc.Close)

	server := httptest.NewServer(devserver.NewRouter(svc, hubs, logger))
	t.Cleanup(server.Close)

	return server, client.NewClient(server.URL)
}

// player is one connected participant driven through a session manager
type player struct {
	id     model.ParticipantID
	mgr    *session.Manager
	cancel context.CancelFunc

	done    chan error
	runErr  error
	stopped bool
}

// waitDone blocks until the manager's Run returns, caching the result so the
// test and the cleanup can both ask for it
func (p *player) waitDone(t *testing.T) error {
	t.Helper()
	if p.stopped {
		return p.runErr
	}
	select {
	case err := <-p.done:
		p.runErr = err
		p.stopped = true
		return err
	case <-time.After(waitTimeout):
		t.Fatal("session did not stop")
		return nil
	}
}

func connect(t *testing.T, api *client.Client, code model.RoomCode, userID model.ParticipantID) *player {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	mgr := session.NewManager(session.ManagerConfig{
		RoomCode: code,
		SelfID:   userID,
		API:      api,
		Dial: func(ctx context.Context) (session.Subscription, error) {
			return stream.Dial(ctx, api.StreamClient(), api.ServerURL(), code, testutil.NopLogger())
		},
		Clock:  clock.New(),
		Logger: testutil.NopLogger(),
	})

	p := &player{id: userID, mgr: mgr, cancel: cancel, done: make(chan error, 1)}
	go func() { p.done <- mgr.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		p.waitDone(t)
	})

	select {
	case <-mgr.Ready():
	case err := <-p.done:
		t.Fatalf("session ended before ready: %v", err)
	case <-time.After(waitTimeout):
		t.Fatal("session never became ready")
	}
	return p
}

func (p *player) waitFor(t *testing.T, desc string, pred func(session.SessionState) bool) session.SessionState {
	t.Helper()
	require.Eventually(t, func() bool {
		s := p.mgr.State()
		return pred(s)
	}, waitTimeout, pollInterval, desc)
	return p.mgr.State()
}

func firstClosed(cards []model.Card) (model.Card, bool) {
	for _, c := range cards {
		if !c.IsOpen() {
			return c, true
		}
	}
	return model.Card{}, false
}

// drawAny draws whichever color is still available
func drawAny(ctx context.Context, p *player) error {
	err := p.mgr.Draw(ctx, model.ColorWhite)
	if errors.Is(err, model.ErrColorExhausted) {
		return p.mgr.Draw(ctx, model.ColorBlack)
	}
	return err
}

func TestFullGameSession(t *testing.T) {
	_, api := startServer(t)
	ctx := context.Background()

	host, err := api.Register(ctx, "alice")
	require.NoError(t, err)
	guest, err := api.Register(ctx, "bob")
	require.NoError(t, err)

	room, err := api.CreateRoom(ctx, "", host.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice's room", room.Title)

	hostP := connect(t, api, room.RoomCode, host.ID)
	// The guest has no seat yet; connecting joins them automatically
	guestP := connect(t, api, room.RoomCode, guest.ID)

	hostP.waitFor(t, "host sees guest join", func(s session.SessionState) bool {
		return s.Room.HasGuest()
	})

	// Deal; host always takes the first turn
	require.NoError(t, hostP.mgr.StartGame(ctx))
	hs := hostP.waitFor(t, "host sees game start", func(s session.SessionState) bool {
		return s.Phase == session.PhasePlaying
	})
	gs := guestP.waitFor(t, "guest sees game start", func(s session.SessionState) bool {
		return s.Phase == session.PhasePlaying
	})
	assert.Equal(t, host.ID, hs.CurrentTurnID)
	assert.Equal(t, host.ID, gs.CurrentTurnID)
	assert.Len(t, hs.MyHand(), 4)
	assert.Len(t, hs.OpponentHand(), 4)
	assert.True(t, hs.IsMyTurn())
	assert.False(t, gs.IsMyTurn())

	// Guest cannot act out of turn; the gate rejects locally
	require.ErrorIs(t, guestP.mgr.Draw(ctx, model.ColorWhite), model.ErrNotYourTurn)

	// Host draws, then lands a guess that is correct by construction
	require.NoError(t, drawAny(ctx, hostP))
	hs = hostP.waitFor(t, "host sees own draw", func(s session.SessionState) bool {
		return s.Turn.HasDrawn
	})
	assert.Len(t, hs.MyHand(), 5)

	target, ok := firstClosed(hs.OpponentHand())
	require.True(t, ok)
	require.NoError(t, hostP.mgr.Guess(ctx, target.ID, target.Number, target.Color))
	hs = hostP.waitFor(t, "host sees correct guess", func(s session.SessionState) bool {
		return s.LastOutcome != nil && s.LastOutcome.CardID == target.ID
	})
	require.True(t, hs.LastOutcome.Correct)
	assert.Equal(t, "bob", hs.LastOutcome.OwnerNickname)
	assert.True(t, hs.IsMyTurn(), "a correct guess keeps the turn")
	assert.True(t, hs.Cards[target.ID].IsOpen())

	// A correct guess unlocks passing
	require.NoError(t, hostP.mgr.PassTurn(ctx))
	gs = guestP.waitFor(t, "guest gets the turn", func(s session.SessionState) bool {
		return s.IsMyTurn()
	})

	// Guest draws and misses on purpose; the miss reveals one of their own
	// cards and hands the turn back
	require.NoError(t, drawAny(ctx, guestP))
	gs = guestP.waitFor(t, "guest sees own draw", func(s session.SessionState) bool {
		return s.Turn.HasDrawn
	})
	wrongTarget, ok := firstClosed(gs.OpponentHand())
	require.True(t, ok)
	wrongNumber := (wrongTarget.Number + 1) % (model.MaxCardNumber + 1)
	require.NoError(t, guestP.mgr.Guess(ctx, wrongTarget.ID, wrongNumber, wrongTarget.Color))

	gs = guestP.waitFor(t, "guest sees wrong guess", func(s session.SessionState) bool {
		return s.LastOutcome != nil && !s.LastOutcome.Correct
	})
	assert.False(t, gs.Cards[wrongTarget.ID].IsOpen(), "a miss must not reveal the target")

	hs = hostP.waitFor(t, "turn returns to host", func(s session.SessionState) bool {
		return s.IsMyTurn()
	})
	openGuestCards := 0
	for _, c := range hs.OpponentHand() {
		if c.IsOpen() {
			openGuestCards++
		}
	}
	assert.Equal(t, 2, openGuestCards, "one opened by the guess, one as the miss penalty")

	// Host runs the table: the dealt numbers are known, so every guess lands
	for i := 0; i < 10; i++ {
		hs = hostP.mgr.State()
		if hs.Phase != session.PhasePlaying {
			break
		}
		require.True(t, hs.IsMyTurn())
		if hs.CheckDraw() == nil {
			require.NoError(t, drawAny(ctx, hostP))
			hostP.waitFor(t, "draw applied", func(s session.SessionState) bool {
				return s.Turn.HasDrawn
			})
		}
		next, ok := firstClosed(hostP.mgr.State().OpponentHand())
		require.True(t, ok)
		require.NoError(t, hostP.mgr.Guess(ctx, next.ID, next.Number, next.Color))
		hostP.waitFor(t, "guess applied", func(s session.SessionState) bool {
			return s.Cards[next.ID].IsOpen() || s.Phase != session.PhasePlaying
		})
	}

	hs = hostP.waitFor(t, "host sees the win", func(s session.SessionState) bool {
		return s.Phase == session.PhaseEnded
	})
	assert.Equal(t, "alice", hs.WinnerNickname)
	gs = guestP.waitFor(t, "guest sees the loss", func(s session.SessionState) bool {
		return s.Phase == session.PhaseEnded
	})
	assert.Equal(t, "alice", gs.WinnerNickname)

	// The server flips the room back to WAITING for a rematch
	hostP.waitFor(t, "host sees the reset", func(s session.SessionState) bool {
		return s.Phase == session.PhaseWaiting && len(s.Cards) == 0
	})
	guestP.waitFor(t, "guest sees the reset", func(s session.SessionState) bool {
		return s.Phase == session.PhaseWaiting && len(s.Cards) == 0
	})
}

func TestHostLeavingDissolvesTheRoom(t *testing.T) {
	_, api := startServer(t)
	ctx := context.Background()

	host, err := api.Register(ctx, "alice")
	require.NoError(t, err)
	guest, err := api.Register(ctx, "bob")
	require.NoError(t, err)

	room, err := api.CreateRoom(ctx, "short-lived", host.ID)
	require.NoError(t, err)

	hostP := connect(t, api, room.RoomCode, host.ID)
	guestP := connect(t, api, room.RoomCode, guest.ID)

	hostP.waitFor(t, "host sees guest join", func(s session.SessionState) bool {
		return s.Room.HasGuest()
	})

	// Tearing the host session down sends its leave, which deletes the room
	hostP.cancel()
	require.ErrorIs(t, hostP.waitDone(t), context.Canceled)
	require.NoError(t, guestP.waitDone(t), "room deletion is a clean session end")
}

func TestSecondGuestIsRejected(t *testing.T) {
	_, api := startServer(t)
	ctx := context.Background()

	host, err := api.Register(ctx, "alice")
	require.NoError(t, err)
	guest, err := api.Register(ctx, "bob")
	require.NoError(t, err)
	late, err := api.Register(ctx, "carol")
	require.NoError(t, err)

	room, err := api.CreateRoom(ctx, "", host.ID)
	require.NoError(t, err)
	connect(t, api, room.RoomCode, host.ID)
	connect(t, api, room.RoomCode, guest.ID)

	_, err = api.LoadSnapshot(ctx, room.RoomCode, late.ID)
	require.ErrorIs(t, err, model.ErrRoomFull)
}
