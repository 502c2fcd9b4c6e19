// Package protocol defines the wire envelope shared by the room and game
// topics, the closed set of inbound events, and the outbound command payloads.
package protocol

import (
	"encoding/json"

	"github.com/davincicode/client-go/internal/model"
)

// EventKind identifies the type of an inbound event
type EventKind string

const (
	// Room-topic events
	EventRoomCreated EventKind = "ROOM_CREATED"
	EventRoomUpdated EventKind = "ROOM_UPDATED"
	EventRoomDeleted EventKind = "ROOM_DELETED"

	// Game-topic events
	EventGameStarted EventKind = "GAME_STARTED"
	EventCardDrawn   EventKind = "CARD_DRAWN"
	EventDrawFailed  EventKind = "DRAW_FAILED"
	EventCardOpened  EventKind = "CARD_OPENED"
	EventTurnChanged EventKind = "TURN_CHANGED"
	EventGameEnded   EventKind = "GAME_ENDED"
	EventGameReset   EventKind = "GAME_RESET"
)

// Envelope is the raw wire shape of every broadcast message. Servers have
// historically used "type" on the room topic and "action" on the game topic;
// "kind" is the current field. EventKind returns whichever is set.
type Envelope struct {
	Kind    string          `json:"kind,omitempty"`
	Type    string          `json:"type,omitempty"`
	Action  string          `json:"action,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventKind returns the discriminator, preferring the modern field name
func (e Envelope) EventKind() string {
	switch {
	case e.Kind != "":
		return e.Kind
	case e.Type != "":
		return e.Type
	default:
		return e.Action
	}
}

// Event is a decoded inbound event. The set of implementations is closed;
// unknown kinds never reach this type.
type Event interface {
	Kind() EventKind
}

// RoomCreated carries the full room projection for a newly created room
type RoomCreated struct {
	Room model.Room
}

func (RoomCreated) Kind() EventKind { return EventRoomCreated }

// RoomUpdated carries the full room projection after a membership change
type RoomUpdated struct {
	Room model.Room
}

func (RoomUpdated) Kind() EventKind { return EventRoomUpdated }

// RoomDeleted signals that the room no longer exists; the session must end
type RoomDeleted struct{}

func (RoomDeleted) Kind() EventKind { return EventRoomDeleted }

// GameStarted carries the freshly dealt cards and the opening turn holder
type GameStarted struct {
	Cards         []model.Card        `json:"cards"`
	CurrentTurnID model.ParticipantID `json:"currentTurnUserId"`
}

func (GameStarted) Kind() EventKind { return EventGameStarted }

// CardDrawn reports a successful draw by either participant
type CardDrawn struct {
	Card          model.Card          `json:"card"`
	ParticipantID model.ParticipantID `json:"userId"`
	DeckEmpty     bool                `json:"deckEmpty"`
}

func (CardDrawn) Kind() EventKind { return EventCardDrawn }

// DrawFailed reports a rejected draw. ParticipantID may be empty on older
// servers that broadcast the failure without attribution.
type DrawFailed struct {
	Reason        string              `json:"reason"`
	ParticipantID model.ParticipantID `json:"userId,omitempty"`
}

func (DrawFailed) Kind() EventKind { return EventDrawFailed }

// CardOpened reports the outcome of a guess: which card(s) were revealed,
// whether the guess was correct, and who holds the next turn. GuesserID is
// present on current servers; older ones omit it and the reconciler falls
// back to the turn holder captured before the turn advance.
type CardOpened struct {
	CardID        int                 `json:"cardId"`
	OpenedCards   []model.Card        `json:"openedCards,omitempty"`
	NextTurnID    model.ParticipantID `json:"nextTurnUserId"`
	Correct       bool                `json:"correct"`
	GuessedNumber int                 `json:"guessedNumber"`
	OwnerNickname string              `json:"ownerNickname,omitempty"`
	GuesserID     model.ParticipantID `json:"guesserId,omitempty"`
}

func (CardOpened) Kind() EventKind { return EventCardOpened }

// TurnChanged advances the turn without revealing any card (a pass)
type TurnChanged struct {
	NextTurnID model.ParticipantID `json:"nextTurnUserId"`
}

func (TurnChanged) Kind() EventKind { return EventTurnChanged }

// GameEnded announces the winner and freezes the board
type GameEnded struct {
	WinnerNickname string `json:"winnerNickname"`
}

func (GameEnded) Kind() EventKind { return EventGameEnded }

// GameReset discards the game session and returns the room to WAITING
type GameReset struct {
	Reason string `json:"reason,omitempty"`
}

func (GameReset) Kind() EventKind { return EventGameReset }
