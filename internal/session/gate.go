package session

import "github.com/davincicode/client-go/internal/model"

// The action gate: pure predicates over SessionState that decide which
// commands the local participant may legally submit right now. Commands
// failing their check are rejected with a domain sentinel before any
// network call.

// CheckDraw reports why drawing a card is currently illegal, or nil
func (s SessionState) CheckDraw() error {
	if s.Phase != PhasePlaying {
		return model.ErrNoGame
	}
	if !s.IsMyTurn() {
		return model.ErrNotYourTurn
	}
	if s.Turn.HasDrawn {
		return model.ErrMustGuessFirst
	}
	if s.DeckEmpty {
		return model.ErrDeckEmpty
	}
	return nil
}

// CheckGuess reports why guessing the given card is currently illegal, or
// nil. The draw step is satisfied either by an actual draw or implicitly
// once the deck is empty.
func (s SessionState) CheckGuess(targetCardID, number int) error {
	if s.Phase != PhasePlaying {
		return model.ErrNoGame
	}
	if !s.IsMyTurn() {
		return model.ErrNotYourTurn
	}
	if !s.Turn.HasDrawn {
		return model.ErrMustDrawFirst
	}
	if number < model.MinCardNumber || number > model.MaxCardNumber {
		return model.ErrInvalidNumber
	}
	card, ok := s.Cards[targetCardID]
	if !ok {
		return model.ErrCardNotFound
	}
	if card.OwnerID == s.SelfID {
		return model.ErrOwnCard
	}
	if card.Status == model.CardOpen {
		return model.ErrCardOpen
	}
	return nil
}

// CheckPass reports why ending the turn is currently illegal, or nil.
// Passing is only offered after at least one guess this turn.
func (s SessionState) CheckPass() error {
	if s.Phase != PhasePlaying {
		return model.ErrNoGame
	}
	if !s.IsMyTurn() {
		return model.ErrNotYourTurn
	}
	if !s.Turn.HasDrawn {
		return model.ErrMustDrawFirst
	}
	if !s.Turn.HasGuessed {
		return model.ErrMustGuessFirst
	}
	return nil
}

// CanDraw reports whether drawing a card is currently legal
func (s SessionState) CanDraw() bool {
	return s.CheckDraw() == nil
}

// CanGuess reports whether the guess step itself is open, independent of
// any particular target card
func (s SessionState) CanGuess() bool {
	return s.Phase == PhasePlaying && s.IsMyTurn() && s.Turn.HasDrawn
}

// CanPass reports whether ending the turn is currently legal
func (s SessionState) CanPass() bool {
	return s.CheckPass() == nil
}
