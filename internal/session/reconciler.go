package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/davincicode/client-go/internal/dependencies/clock"
	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
)

const (
	// ResetTicks is the number of countdown ticks between GAME_ENDED and the
	// local auto-reset back to WAITING
	ResetTicks = 5

	// TickInterval is the duration of one countdown tick
	TickInterval = time.Second
)

// Effect tells the caller what a state transition requires beyond the state
// change itself.
type Effect int

const (
	// EffectNone requires nothing from the caller
	EffectNone Effect = iota

	// EffectSessionEnded means the room is gone; the caller must tear the
	// session down and navigate away
	EffectSessionEnded
)

// Reconciler owns all mutation of a session's state. Events are applied one
// at a time in arrival order; every recognized kind has a defined effect and
// unknown references degrade to partial application, never a failure.
type Reconciler struct {
	mu      sync.Mutex
	state   SessionState
	clock   clock.Clock
	logger  *slog.Logger
	active  bool
	resetAt time.Time // zero while no end-of-game countdown is armed
}

// NewReconciler installs the snapshot as initial state
func NewReconciler(selfID model.ParticipantID, snapshot model.Room, clk clock.Clock, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		state: SessionState{
			SelfID: selfID,
			Room:   snapshot,
			Phase:  phaseFromStatus(snapshot.Status),
			Cards:  make(map[int]model.Card),
		},
		clock:  clk,
		logger: logger.With(slog.String("component", "reconciler"), slog.String("room", string(snapshot.RoomCode))),
		active: true,
	}
}

// State returns an independent copy of the current session state
func (r *Reconciler) State() SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Close marks the reconciler as disposed. Later applies and ticks are no-ops,
// so a stale subscription can never mutate a discarded session.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}

// Apply advances the state by exactly one decoded event
func (r *Reconciler) Apply(ev protocol.Event) Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return EffectNone
	}

	switch ev := ev.(type) {
	case protocol.RoomCreated:
		r.applyRoom(ev.Room)
	case protocol.RoomUpdated:
		r.applyRoom(ev.Room)
	case protocol.RoomDeleted:
		r.resetAt = time.Time{}
		return EffectSessionEnded
	case protocol.GameStarted:
		r.applyGameStarted(ev)
	case protocol.CardDrawn:
		r.applyCardDrawn(ev)
	case protocol.DrawFailed:
		if ev.ParticipantID == "" || ev.ParticipantID == r.state.SelfID {
			r.state.Notice = ev.Reason
		}
	case protocol.CardOpened:
		r.applyCardOpened(ev)
	case protocol.TurnChanged:
		r.advanceTurn(ev.NextTurnID, true)
	case protocol.GameEnded:
		r.state.Phase = PhaseEnded
		r.state.WinnerNickname = ev.WinnerNickname
		r.state.Room.Status = model.RoomStatusEnded
		r.state.Room.WinnerNickname = ev.WinnerNickname
		r.resetAt = r.clock.Now().Add(ResetTicks * TickInterval)
	case protocol.GameReset:
		r.resetGame()
	default:
		// Decoded events are a closed set; anything else is a decoder bug,
		// but per the no-crash rule it is still just dropped.
		r.logger.Warn("unhandled event kind", slog.String("kind", string(ev.Kind())))
	}
	return EffectNone
}

// Tick advances the end-of-game countdown and reports whether the state
// changed. The lifecycle manager calls it once per TickInterval; once the
// deadline passes, the session resets to WAITING exactly as a GAME_RESET
// would, with no server round-trip.
func (r *Reconciler) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active || r.resetAt.IsZero() || r.state.Phase != PhaseEnded {
		return false
	}
	if r.clock.Now().Before(r.resetAt) {
		return false
	}
	r.resetGame()
	return true
}

func (r *Reconciler) applyRoom(room model.Room) {
	prior := r.state.Phase
	r.state.Room = room

	phase := phaseFromStatus(room.Status)
	// A room update from the other topic can trail the game stream; never
	// let a stale WAITING projection discard a game we are already playing.
	if phase == PhaseWaiting && prior == PhasePlaying && len(r.state.Cards) > 0 {
		r.state.Room.Status = model.RoomStatusPlaying
		return
	}
	r.state.Phase = phase
	if phase == PhasePlaying {
		r.resetAt = time.Time{}
	}
}

func (r *Reconciler) applyGameStarted(ev protocol.GameStarted) {
	cards := make(map[int]model.Card, len(ev.Cards))
	for _, c := range ev.Cards {
		cards[c.ID] = c
	}
	r.state.Cards = cards
	r.state.CurrentTurnID = ev.CurrentTurnID
	r.state.DeckEmpty = false
	r.state.Turn = TurnActionState{}
	r.state.LastOutcome = nil
	r.state.Notice = ""
	r.state.WinnerNickname = ""
	r.state.Phase = PhasePlaying
	r.state.Room.Status = model.RoomStatusPlaying
	r.state.Room.WinnerNickname = ""
	r.resetAt = time.Time{}
}

func (r *Reconciler) applyCardDrawn(ev protocol.CardDrawn) {
	r.state.Notice = ""
	r.state.Cards[ev.Card.ID] = ev.Card
	if ev.ParticipantID == r.state.SelfID {
		r.state.Turn.HasDrawn = true
	}
	if ev.DeckEmpty {
		// Monotonic until the next GAME_STARTED
		r.state.DeckEmpty = true
		if r.state.IsMyTurn() {
			r.state.Turn.HasDrawn = true
		}
	}
}

func (r *Reconciler) applyCardOpened(ev protocol.CardOpened) {
	// Capture the holder before the turn advance: it is the fallback guesser
	// attribution when the event does not carry guesserId.
	guesser := ev.GuesserID
	if guesser == "" {
		guesser = r.state.CurrentTurnID
	}

	r.openCard(ev.CardID)
	for _, c := range ev.OpenedCards {
		c.Status = model.CardOpen
		r.state.Cards[c.ID] = c
	}

	if guesser == r.state.SelfID {
		r.state.Turn.HasGuessed = true
		r.state.LastOutcome = &GuessOutcome{
			Correct:       ev.Correct,
			CardID:        ev.CardID,
			GuessedNumber: ev.GuessedNumber,
			OwnerNickname: ev.OwnerNickname,
		}
	}

	// A correct guess keeps the turn (and the per-turn flags, so pass stays
	// available); otherwise this is a turn change like any other.
	r.advanceTurn(ev.NextTurnID, false)
}

func (r *Reconciler) openCard(id int) {
	if id == 0 {
		return
	}
	c, ok := r.state.Cards[id]
	if !ok {
		// Likely a lost GAME_STARTED or CARD_DRAWN; apply the event's other
		// effects and keep going.
		r.logger.Warn("event referenced unknown card", slog.Int("card_id", id))
		return
	}
	c.Status = model.CardOpen
	r.state.Cards[id] = c
}

// advanceTurn moves the turn and resets the per-turn flags when the holder
// actually changes (or unconditionally for an explicit TURN_CHANGED). If the
// deck is empty when the turn lands on us, the draw step is auto-satisfied.
func (r *Reconciler) advanceTurn(next model.ParticipantID, force bool) {
	changed := next != r.state.CurrentTurnID
	r.state.CurrentTurnID = next
	if force || changed {
		r.state.Turn = TurnActionState{}
	}
	if r.state.DeckEmpty && r.state.IsMyTurn() {
		r.state.Turn.HasDrawn = true
	}
}

func (r *Reconciler) resetGame() {
	r.state.Cards = make(map[int]model.Card)
	r.state.CurrentTurnID = ""
	r.state.DeckEmpty = false
	r.state.Turn = TurnActionState{}
	r.state.LastOutcome = nil
	r.state.Notice = ""
	r.state.WinnerNickname = ""
	r.state.Phase = PhaseWaiting
	r.state.Room.Status = model.RoomStatusWaiting
	r.state.Room.WinnerNickname = ""
	r.resetAt = time.Time{}
}
