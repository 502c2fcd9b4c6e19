package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/davincicode/client-go/internal/dependencies/clock"
	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
	"github.com/davincicode/client-go/internal/stream"
)

// ErrStreamClosed is returned by Run when the server ends the event stream
// while the session is still live. The caller may build a fresh manager to
// reconnect; this one is fully torn down.
var ErrStreamClosed = errors.New("event stream closed")

// API is the slice of the HTTP client the manager needs
type API interface {
	LoadSnapshot(ctx context.Context, code model.RoomCode, userID model.ParticipantID) (model.Room, error)
	StartGame(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error
	Draw(ctx context.Context, code model.RoomCode, userID model.ParticipantID, color model.CardColor) error
	Guess(ctx context.Context, code model.RoomCode, userID model.ParticipantID, targetCardID, number int, color model.CardColor) error
	PassTurn(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error
	Leave(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error
}

// Subscription is the live event feed the manager drains
type Subscription interface {
	Messages() <-chan stream.Message
	Close()
	Err() error
}

// DialFunc establishes the subscription for the session's room
type DialFunc func(ctx context.Context) (Subscription, error)

// ManagerConfig wires a Manager
type ManagerConfig struct {
	RoomCode model.RoomCode
	SelfID   model.ParticipantID
	API      API
	Dial     DialFunc
	Clock    clock.Clock
	Logger   *slog.Logger

	// OnUpdate, if set, is called with a state copy after every change.
	// It runs on the manager's loop goroutine and must not block.
	OnUpdate func(SessionState)
}

// Manager owns the lifecycle of one live session: it subscribes before
// loading the snapshot, buffers events that arrive in between, replays them
// through the reconciler, and then pumps the stream until the session ends.
// A manager is single-use; after Run returns everything is torn down and a
// reconnect means building a new one.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	mu      sync.Mutex
	rec     *Reconciler
	started bool

	ready chan struct{}
}

// NewManager creates a manager for one room session
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg: cfg,
		logger: cfg.Logger.With(
			slog.String("component", "session"),
			slog.String("room", string(cfg.RoomCode)),
		),
		ready: make(chan struct{}),
	}
}

// Ready is closed once the snapshot is installed and buffered events have
// been replayed; State and the command methods are meaningful after that.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// State returns a copy of the current session state. Before Ready it
// returns the zero state.
func (m *Manager) State() SessionState {
	m.mu.Lock()
	rec := m.rec
	m.mu.Unlock()
	if rec == nil {
		return SessionState{}
	}
	return rec.State()
}

// Run drives the session until the room is deleted, the stream drops, or
// ctx is cancelled. On every exit path the subscription is closed, the
// reconciler is disposed, and a best-effort leave is sent.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("session manager is single-use")
	}
	m.started = true
	m.mu.Unlock()

	// Subscribe first: events that race the snapshot fetch are buffered,
	// not lost.
	sub, err := m.cfg.Dial(ctx)
	if err != nil {
		return fmt.Errorf("subscribing: %w", err)
	}
	defer sub.Close()
	defer m.leave()

	rec, err := m.awaitSnapshot(ctx, sub)
	if err != nil {
		return err
	}
	defer rec.Close()

	m.mu.Lock()
	m.rec = rec
	m.mu.Unlock()
	close(m.ready)
	m.notify(rec)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if rec.Tick() {
				m.notify(rec)
			}
		case msg, ok := <-sub.Messages():
			if !ok {
				if err := sub.Err(); err != nil {
					return fmt.Errorf("%w: %w", ErrStreamClosed, err)
				}
				return ErrStreamClosed
			}
			if m.apply(rec, msg) == EffectSessionEnded {
				m.logger.Info("room deleted, session over")
				return nil
			}
		}
	}
}

type snapshotResult struct {
	room model.Room
	err  error
}

// awaitSnapshot loads the room snapshot while the subscription is already
// live, buffering anything that arrives in the meantime, then replays the
// buffer in arrival order.
func (m *Manager) awaitSnapshot(ctx context.Context, sub Subscription) (*Reconciler, error) {
	resultCh := make(chan snapshotResult, 1)
	go func() {
		room, err := m.cfg.API.LoadSnapshot(ctx, m.cfg.RoomCode, m.cfg.SelfID)
		resultCh <- snapshotResult{room: room, err: err}
	}()

	var pending []stream.Message
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				if err := sub.Err(); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrStreamClosed, err)
				}
				return nil, ErrStreamClosed
			}
			pending = append(pending, msg)
		case res := <-resultCh:
			if res.err != nil {
				return nil, fmt.Errorf("loading snapshot: %w", res.err)
			}
			rec := NewReconciler(m.cfg.SelfID, res.room, m.cfg.Clock, m.logger)
			if len(pending) > 0 {
				m.logger.Debug("replaying buffered events", slog.Int("count", len(pending)))
			}
			for _, msg := range pending {
				if m.apply(rec, msg) == EffectSessionEnded {
					rec.Close()
					return nil, fmt.Errorf("room %s no longer exists: %w", m.cfg.RoomCode, model.ErrRoomNotFound)
				}
			}
			return rec, nil
		}
	}
}

// apply decodes one raw message and feeds it to the reconciler. Messages
// that fail to decode are dropped with a log line; an unrecognized or
// malformed event must never take the session down.
func (m *Manager) apply(rec *Reconciler, msg stream.Message) Effect {
	ev, err := protocol.Decode(msg.Data)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, protocol.ErrUnknownKind) {
			level = slog.LevelDebug
		}
		m.logger.Log(context.Background(), level, "dropping event",
			slog.String("topic", string(msg.Topic)),
			slog.String("error", err.Error()),
		)
		return EffectNone
	}

	effect := rec.Apply(ev)
	m.notify(rec)
	return effect
}

func (m *Manager) notify(rec *Reconciler) {
	if m.cfg.OnUpdate != nil {
		m.cfg.OnUpdate(rec.State())
	}
}

// leave is best-effort: the server also reaps abandoned seats, so failures
// only get logged
func (m *Manager) leave() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.cfg.API.Leave(ctx, m.cfg.RoomCode, m.cfg.SelfID); err != nil {
		m.logger.Debug("leave failed", slog.String("error", err.Error()))
	}
}

// gated wraps a command with its gate check so illegal submissions are
// rejected locally with the same sentinel the server would use
func (m *Manager) gated(check func(SessionState) error, send func() error) error {
	m.mu.Lock()
	rec := m.rec
	m.mu.Unlock()
	if rec == nil {
		return model.ErrNoGame
	}
	if err := check(rec.State()); err != nil {
		return err
	}
	return send()
}

// StartGame asks the server to deal; only sensible for the host in WAITING
func (m *Manager) StartGame(ctx context.Context) error {
	return m.cfg.API.StartGame(ctx, m.cfg.RoomCode, m.cfg.SelfID)
}

// Draw submits a draw command if the gate allows it
func (m *Manager) Draw(ctx context.Context, color model.CardColor) error {
	return m.gated(
		func(s SessionState) error { return s.CheckDraw() },
		func() error { return m.cfg.API.Draw(ctx, m.cfg.RoomCode, m.cfg.SelfID, color) },
	)
}

// Guess submits a guess command if the gate allows it
func (m *Manager) Guess(ctx context.Context, targetCardID, number int, color model.CardColor) error {
	return m.gated(
		func(s SessionState) error { return s.CheckGuess(targetCardID, number) },
		func() error {
			return m.cfg.API.Guess(ctx, m.cfg.RoomCode, m.cfg.SelfID, targetCardID, number, color)
		},
	)
}

// PassTurn submits a pass command if the gate allows it
func (m *Manager) PassTurn(ctx context.Context) error {
	return m.gated(
		func(s SessionState) error { return s.CheckPass() },
		func() error { return m.cfg.API.PassTurn(ctx, m.cfg.RoomCode, m.cfg.SelfID) },
	)
}
