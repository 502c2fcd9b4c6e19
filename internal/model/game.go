package model

import "time"

// GameSession is the server-side state of a live game bound to a room while
// its status is PLAYING. Cards holds every dealt card; Deck holds the undealt
// remainder in draw order.
type GameSession struct {
	RoomCode      RoomCode      `json:"roomCode"`
	Cards         []Card        `json:"cards"`
	Deck          []Card        `json:"deck"`
	CurrentTurnID ParticipantID `json:"currentTurnUserId"`

	// Per-turn action flags, reset whenever the turn holder changes
	TurnHasDrawn   bool `json:"turnHasDrawn"`
	TurnHasGuessed bool `json:"turnHasGuessed"`

	// LastDrawnCardID tracks each participant's most recently drawn,
	// still-closed card: the one revealed on a wrong guess.
	LastDrawnCardID map[ParticipantID]int `json:"lastDrawnCardId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeckEmpty reports whether no undealt cards remain
func (g *GameSession) DeckEmpty() bool {
	return len(g.Deck) == 0
}

// CardByID returns a pointer into Cards for the given id
func (g *GameSession) CardByID(id int) *Card {
	for i := range g.Cards {
		if g.Cards[i].ID == id {
			return &g.Cards[i]
		}
	}
	return nil
}

// HandOf returns the dealt cards owned by the given participant
func (g *GameSession) HandOf(id ParticipantID) []Card {
	var hand []Card
	for _, c := range g.Cards {
		if c.OwnerID == id {
			hand = append(hand, c)
		}
	}
	return hand
}

// AllOpen reports whether every card owned by the participant is revealed.
// A participant with a fully open hand has lost.
func (g *GameSession) AllOpen(id ParticipantID) bool {
	owned := false
	for _, c := range g.Cards {
		if c.OwnerID != id {
			continue
		}
		owned = true
		if !c.IsOpen() {
			return false
		}
	}
	return owned
}
