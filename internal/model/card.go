package model

import "slices"

// CardColor is one of the two card backs
type CardColor string

const (
	ColorWhite CardColor = "WHITE"
	ColorBlack CardColor = "BLACK"
)

// CardStatus tracks whether a card has been revealed. A card only ever moves
// CLOSE -> OPEN within a game.
type CardStatus string

const (
	CardOpen  CardStatus = "OPEN"
	CardClose CardStatus = "CLOSE"
)

const (
	// MinCardNumber and MaxCardNumber bound the printed card values
	MinCardNumber = 0
	MaxCardNumber = 11
)

// Card is a single numbered tile. OwnerID is empty while the card sits in the
// undealt deck; once dealt the owner never changes.
type Card struct {
	ID      int           `json:"id"`
	Number  int           `json:"number"`
	Color   CardColor     `json:"color"`
	Status  CardStatus    `json:"status"`
	OwnerID ParticipantID `json:"userId,omitempty"`
}

// IsOpen reports whether the card has been revealed
func (c Card) IsOpen() bool {
	return c.Status == CardOpen
}

// CompareCards orders cards by ascending number, with WHITE before BLACK on
// equal numbers. This is the display order for every hand.
func CompareCards(a, b Card) int {
	if a.Number != b.Number {
		return a.Number - b.Number
	}
	if a.Color == b.Color {
		return 0
	}
	if a.Color == ColorWhite {
		return -1
	}
	return 1
}

// SortCards returns a new slice sorted in display order. The sort is stable,
// so sorting an already-sorted hand is a no-op.
func SortCards(cards []Card) []Card {
	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, CompareCards)
	return sorted
}
