package protocol

import "github.com/davincicode/client-go/internal/model"

// Outbound command payloads. These are posted to the server's action
// endpoints; the field names are part of the wire contract.

// JoinCommand seats a user in a room as guest
type JoinCommand struct {
	RoomCode model.RoomCode      `json:"roomCode"`
	UserID   model.ParticipantID `json:"userId"`
}

// LeaveCommand removes a user from a room; callers treat failure as best-effort
type LeaveCommand struct {
	RoomCode model.RoomCode      `json:"roomCode"`
	UserID   model.ParticipantID `json:"userId"`
}

// StartCommand begins a game; only the host may issue it
type StartCommand struct {
	RoomCode model.RoomCode      `json:"roomCode"`
	UserID   model.ParticipantID `json:"userId"`
}

// DrawCommand requests a card of the given color from the deck
type DrawCommand struct {
	RoomCode model.RoomCode      `json:"roomCode"`
	UserID   model.ParticipantID `json:"userId"`
	Color    model.CardColor     `json:"color"`
}

// GuessCommand guesses the number of one of the opponent's closed cards
type GuessCommand struct {
	RoomCode      model.RoomCode      `json:"roomCode"`
	UserID        model.ParticipantID `json:"userId"`
	TargetCardID  int                 `json:"targetCardId"`
	GuessedNumber int                 `json:"guessedNumber"`
	GuessedColor  model.CardColor     `json:"guessedColor,omitempty"`
}

// PassCommand ends the turn after at least one successful guess
type PassCommand struct {
	RoomCode model.RoomCode      `json:"roomCode"`
	UserID   model.ParticipantID `json:"userId"`
}
