package devserver

import (
	"time"

	"github.com/davincicode/client-go/internal/dependencies/random"
	"github.com/davincicode/client-go/internal/model"
)

// The rules engine: pure transitions over a GameSession. Validation failures
// come back as model sentinels so the API layer can map them onto wire codes.

const handSize = 4

// newDeck builds the full shuffled deck: one card of each color for every
// number, 24 in total
func newDeck(rng random.Random) []model.Card {
	var deck []model.Card
	id := 1
	for n := model.MinCardNumber; n <= model.MaxCardNumber; n++ {
		for _, color := range []model.CardColor{model.ColorWhite, model.ColorBlack} {
			deck = append(deck, model.Card{
				ID:     id,
				Number: n,
				Color:  color,
				Status: model.CardClose,
			})
			id++
		}
	}

	// Fisher-Yates
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// dealGame shuffles a fresh deck and deals the opening hands. The host
// always takes the first turn of a new game.
func dealGame(code model.RoomCode, hostID, guestID model.ParticipantID, rng random.Random, now time.Time) *model.GameSession {
	deck := newDeck(rng)

	game := &model.GameSession{
		RoomCode:        code,
		CurrentTurnID:   hostID,
		LastDrawnCardID: make(map[model.ParticipantID]int),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, owner := range []model.ParticipantID{hostID, guestID} {
		for i := 0; i < handSize; i++ {
			card := deck[0]
			deck = deck[1:]
			card.OwnerID = owner
			game.Cards = append(game.Cards, card)
		}
	}
	game.Deck = deck
	return game
}

type drawResult struct {
	Card      model.Card
	DeckEmpty bool
}

// applyDraw takes the next deck card of the requested color into the
// caller's hand
func applyDraw(g *model.GameSession, userID model.ParticipantID, color model.CardColor) (drawResult, error) {
	if g.CurrentTurnID != userID {
		return drawResult{}, model.ErrNotYourTurn
	}
	if g.TurnHasDrawn {
		return drawResult{}, model.ErrMustGuessFirst
	}
	if g.DeckEmpty() {
		return drawResult{}, model.ErrDeckEmpty
	}

	idx := -1
	for i, c := range g.Deck {
		if c.Color == color {
			idx = i
			break
		}
	}
	if idx < 0 {
		return drawResult{}, model.ErrColorExhausted
	}

	card := g.Deck[idx]
	g.Deck = append(g.Deck[:idx], g.Deck[idx+1:]...)
	card.OwnerID = userID
	g.Cards = append(g.Cards, card)
	g.LastDrawnCardID[userID] = card.ID
	g.TurnHasDrawn = true

	return drawResult{Card: card, DeckEmpty: g.DeckEmpty()}, nil
}

type guessResult struct {
	// Opened lists every card revealed by this guess: the target on a hit,
	// the guesser's penalty card on a miss
	Opened []model.Card

	Correct    bool
	NextTurnID model.ParticipantID

	// Winner is set when this guess decided the game
	Winner model.ParticipantID
}

// applyGuess resolves one guess against an opponent card. A hit opens the
// target and keeps the turn; a miss opens the guesser's most recently drawn
// closed card and hands the turn over.
func applyGuess(g *model.GameSession, userID, opponentID model.ParticipantID, targetID, number int) (guessResult, error) {
	if g.CurrentTurnID != userID {
		return guessResult{}, model.ErrNotYourTurn
	}
	if !g.TurnHasDrawn && !g.DeckEmpty() {
		return guessResult{}, model.ErrMustDrawFirst
	}
	if number < model.MinCardNumber || number > model.MaxCardNumber {
		return guessResult{}, model.ErrInvalidNumber
	}

	target := g.CardByID(targetID)
	if target == nil {
		return guessResult{}, model.ErrCardNotFound
	}
	if target.OwnerID == userID {
		return guessResult{}, model.ErrOwnCard
	}
	if target.IsOpen() {
		return guessResult{}, model.ErrCardOpen
	}

	if target.Number == number {
		target.Status = model.CardOpen
		g.TurnHasGuessed = true

		result := guessResult{
			Opened:     []model.Card{*target},
			Correct:    true,
			NextTurnID: userID,
		}
		if g.AllOpen(opponentID) {
			result.Winner = userID
		}
		return result, nil
	}

	// Miss: reveal the guesser's own drawn card and pass the turn
	result := guessResult{NextTurnID: opponentID}
	if penalty := penaltyCard(g, userID); penalty != nil {
		penalty.Status = model.CardOpen
		result.Opened = []model.Card{*penalty}
		if g.AllOpen(userID) {
			result.Winner = opponentID
		}
	}
	g.CurrentTurnID = opponentID
	g.TurnHasDrawn = false
	g.TurnHasGuessed = false
	return result, nil
}

// penaltyCard picks the card a wrong guess forces open: the most recently
// drawn card if it is still closed, otherwise the lowest closed card in
// hand. Nil when the whole hand is already open.
func penaltyCard(g *model.GameSession, userID model.ParticipantID) *model.Card {
	if id, ok := g.LastDrawnCardID[userID]; ok {
		if card := g.CardByID(id); card != nil && !card.IsOpen() {
			return card
		}
	}

	var lowest *model.Card
	for i := range g.Cards {
		c := &g.Cards[i]
		if c.OwnerID != userID || c.IsOpen() {
			continue
		}
		if lowest == nil || model.CompareCards(*c, *lowest) < 0 {
			lowest = c
		}
	}
	return lowest
}

// applyPass ends the turn voluntarily after at least one correct guess
func applyPass(g *model.GameSession, userID, opponentID model.ParticipantID) error {
	if g.CurrentTurnID != userID {
		return model.ErrNotYourTurn
	}
	if !g.TurnHasDrawn && !g.DeckEmpty() {
		return model.ErrMustDrawFirst
	}
	if !g.TurnHasGuessed {
		return model.ErrMustGuessFirst
	}

	g.CurrentTurnID = opponentID
	g.TurnHasDrawn = false
	g.TurnHasGuessed = false
	return nil
}
