// Package session holds the client-side view of one room: the reconciler
// that folds the snapshot and the live event stream into a consistent
// SessionState, the action gate over that state, and the lifecycle manager
// that owns the subscription.
package session

import (
	"maps"

	"github.com/davincicode/client-go/internal/model"
)

// Phase is the client's view of where the game stands
type Phase string

const (
	PhaseWaiting Phase = "WAITING"
	PhasePlaying Phase = "PLAYING"
	PhaseEnded   Phase = "ENDED"
)

func phaseFromStatus(status model.RoomStatus) Phase {
	switch status {
	case model.RoomStatusPlaying:
		return PhasePlaying
	case model.RoomStatusEnded:
		return PhaseEnded
	default:
		return PhaseWaiting
	}
}

// TurnActionState tracks what the local participant has done this turn.
// It is derived state, reset whenever the turn holder changes.
type TurnActionState struct {
	HasDrawn   bool
	HasGuessed bool
}

// GuessOutcome records the result of the local participant's most recent
// guess. It is never populated from an opponent's guess.
type GuessOutcome struct {
	Correct       bool
	CardID        int
	GuessedNumber int
	OwnerNickname string
}

// SessionState is the single consistent view the reconciler maintains:
// room membership, turn ownership, every known card, and the game phase.
type SessionState struct {
	SelfID model.ParticipantID
	Room   model.Room
	Phase  Phase

	Cards         map[int]model.Card
	CurrentTurnID model.ParticipantID
	DeckEmpty     bool

	Turn           TurnActionState
	LastOutcome    *GuessOutcome
	Notice         string // transient message from a rejected draw
	WinnerNickname string
}

// MyHand returns the local participant's cards in display order
func (s SessionState) MyHand() []model.Card {
	return s.handOf(s.SelfID)
}

// OpponentHand returns the opponent's cards in display order
func (s SessionState) OpponentHand() []model.Card {
	var cards []model.Card
	for _, c := range s.Cards {
		if c.OwnerID != "" && c.OwnerID != s.SelfID {
			cards = append(cards, c)
		}
	}
	return model.SortCards(cards)
}

func (s SessionState) handOf(id model.ParticipantID) []model.Card {
	var cards []model.Card
	for _, c := range s.Cards {
		if c.OwnerID == id {
			cards = append(cards, c)
		}
	}
	return model.SortCards(cards)
}

// IsMyTurn reports whether the local participant holds the turn
func (s SessionState) IsMyTurn() bool {
	return s.CurrentTurnID != "" && s.CurrentTurnID == s.SelfID
}

// clone returns an independent copy safe to hand outside the reconciler
func (s *SessionState) clone() SessionState {
	out := *s
	out.Cards = maps.Clone(s.Cards)
	if s.LastOutcome != nil {
		outcome := *s.LastOutcome
		out.LastOutcome = &outcome
	}
	return out
}
