package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davincicode/client-go/internal/dependencies/mocks"
	"github.com/davincicode/client-go/internal/model"
)

const (
	hostID  = model.ParticipantID("host-1")
	guestID = model.ParticipantID("guest-1")
)

func testGame() *model.GameSession {
	return &model.GameSession{
		RoomCode:      "ABC123",
		CurrentTurnID: hostID,
		Cards: []model.Card{
			{ID: 1, Number: 2, Color: model.ColorWhite, Status: model.CardClose, OwnerID: hostID},
			{ID: 2, Number: 5, Color: model.ColorBlack, Status: model.CardClose, OwnerID: hostID},
			{ID: 3, Number: 3, Color: model.ColorBlack, Status: model.CardClose, OwnerID: guestID},
			{ID: 4, Number: 8, Color: model.ColorWhite, Status: model.CardClose, OwnerID: guestID},
		},
		Deck: []model.Card{
			{ID: 5, Number: 6, Color: model.ColorWhite, Status: model.CardClose},
			{ID: 6, Number: 9, Color: model.ColorBlack, Status: model.CardClose},
		},
		LastDrawnCardID: make(map[model.ParticipantID]int),
	}
}

func TestDealGame(t *testing.T) {
	rng := mocks.NewMockRandom()
	rng.QueueIntn(3, 7, 1, 0, 5, 2, 9, 4, 6, 8, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 1, 2)

	game := dealGame("ABC123", hostID, guestID, rng, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, model.RoomCode("ABC123"), game.RoomCode)
	assert.Equal(t, hostID, game.CurrentTurnID, "host opens the game")
	assert.Len(t, game.HandOf(hostID), 4)
	assert.Len(t, game.HandOf(guestID), 4)
	assert.Len(t, game.Deck, 16)

	seen := make(map[int]bool)
	for _, c := range append(append([]model.Card{}, game.Cards...), game.Deck...) {
		assert.False(t, seen[c.ID], "duplicate card id %d", c.ID)
		seen[c.ID] = true
		assert.Equal(t, model.CardClose, c.Status)
	}
	assert.Len(t, seen, 24)

	for _, c := range game.Deck {
		assert.Empty(t, c.OwnerID, "deck cards must be unowned")
	}
}

func TestApplyDraw(t *testing.T) {
	game := testGame()

	result, err := applyDraw(game, hostID, model.ColorBlack)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Card.ID)
	assert.Equal(t, hostID, result.Card.OwnerID)
	assert.False(t, result.DeckEmpty)
	assert.True(t, game.TurnHasDrawn)
	assert.Equal(t, 6, game.LastDrawnCardID[hostID])
	assert.Len(t, game.Deck, 1)
	assert.Len(t, game.HandOf(hostID), 3)
}

func TestApplyDrawReportsDeckEmpty(t *testing.T) {
	game := testGame()
	game.Deck = game.Deck[:1]

	result, err := applyDraw(game, hostID, model.ColorWhite)
	require.NoError(t, err)
	assert.True(t, result.DeckEmpty)
}

func TestApplyDrawRejections(t *testing.T) {
	t.Run("not your turn", func(t *testing.T) {
		game := testGame()
		_, err := applyDraw(game, guestID, model.ColorWhite)
		assert.ErrorIs(t, err, model.ErrNotYourTurn)
	})

	t.Run("second draw in one turn", func(t *testing.T) {
		game := testGame()
		_, err := applyDraw(game, hostID, model.ColorWhite)
		require.NoError(t, err)
		_, err = applyDraw(game, hostID, model.ColorBlack)
		assert.ErrorIs(t, err, model.ErrMustGuessFirst)
	})

	t.Run("deck empty", func(t *testing.T) {
		game := testGame()
		game.Deck = nil
		_, err := applyDraw(game, hostID, model.ColorWhite)
		assert.ErrorIs(t, err, model.ErrDeckEmpty)
	})

	t.Run("color exhausted", func(t *testing.T) {
		game := testGame()
		game.Deck = game.Deck[:1] // only the white card remains
		_, err := applyDraw(game, hostID, model.ColorBlack)
		assert.ErrorIs(t, err, model.ErrColorExhausted)
		assert.False(t, game.TurnHasDrawn, "failed draw must not consume the draw step")
	})
}

func TestApplyGuessCorrectKeepsTurn(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true

	result, err := applyGuess(game, hostID, guestID, 3, 3)
	require.NoError(t, err)

	assert.True(t, result.Correct)
	assert.Equal(t, hostID, result.NextTurnID)
	assert.Empty(t, result.Winner)
	require.Len(t, result.Opened, 1)
	assert.Equal(t, 3, result.Opened[0].ID)
	assert.True(t, game.CardByID(3).IsOpen())
	assert.True(t, game.TurnHasGuessed)
	assert.Equal(t, hostID, game.CurrentTurnID)
}

func TestApplyGuessWrongRevealsDrawnCardAndPassesTurn(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true
	game.LastDrawnCardID[hostID] = 2

	result, err := applyGuess(game, hostID, guestID, 3, 9)
	require.NoError(t, err)

	assert.False(t, result.Correct)
	assert.Equal(t, guestID, result.NextTurnID)
	require.Len(t, result.Opened, 1)
	assert.Equal(t, 2, result.Opened[0].ID, "the guesser's drawn card is the penalty")
	assert.True(t, game.CardByID(2).IsOpen())
	assert.False(t, game.CardByID(3).IsOpen(), "the target stays hidden on a miss")
	assert.Equal(t, guestID, game.CurrentTurnID)
	assert.False(t, game.TurnHasDrawn)
	assert.False(t, game.TurnHasGuessed)
}

func TestApplyGuessWrongFallsBackToLowestClosedCard(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true
	// No drawn card recorded: the lowest closed card in hand is revealed

	result, err := applyGuess(game, hostID, guestID, 3, 9)
	require.NoError(t, err)

	require.Len(t, result.Opened, 1)
	assert.Equal(t, 1, result.Opened[0].ID)
}

func TestApplyGuessWinsOnLastOpponentCard(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true
	game.CardByID(4).Status = model.CardOpen

	result, err := applyGuess(game, hostID, guestID, 3, 3)
	require.NoError(t, err)

	assert.True(t, result.Correct)
	assert.Equal(t, hostID, result.Winner)
}

func TestApplyGuessWrongCanLoseTheGame(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true
	game.CardByID(2).Status = model.CardOpen
	game.LastDrawnCardID[hostID] = 1

	// The penalty reveal opens the host's last closed card
	result, err := applyGuess(game, hostID, guestID, 3, 9)
	require.NoError(t, err)

	assert.Equal(t, guestID, result.Winner)
}

func TestApplyGuessDeckEmptySkipsDrawRequirement(t *testing.T) {
	game := testGame()
	game.Deck = nil

	_, err := applyGuess(game, hostID, guestID, 3, 3)
	assert.NoError(t, err)
}

func TestApplyGuessRejections(t *testing.T) {
	cases := map[string]struct {
		mutate func(*model.GameSession)
		user   model.ParticipantID
		target int
		number int
		want   error
	}{
		"not your turn":      {user: guestID, target: 1, number: 2, want: model.ErrNotYourTurn},
		"no draw yet":        {mutate: func(g *model.GameSession) { g.TurnHasDrawn = false }, user: hostID, target: 3, number: 3, want: model.ErrMustDrawFirst},
		"number too high":    {user: hostID, target: 3, number: 12, want: model.ErrInvalidNumber},
		"number negative":    {user: hostID, target: 3, number: -1, want: model.ErrInvalidNumber},
		"unknown card":       {user: hostID, target: 99, number: 3, want: model.ErrCardNotFound},
		"own card":           {user: hostID, target: 1, number: 2, want: model.ErrOwnCard},
		"already open":       {mutate: func(g *model.GameSession) { g.CardByID(3).Status = model.CardOpen }, user: hostID, target: 3, number: 3, want: model.ErrCardOpen},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			game := testGame()
			game.TurnHasDrawn = true
			if tc.mutate != nil {
				tc.mutate(game)
			}
			_, err := applyGuess(game, tc.user, guestID, tc.target, tc.number)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestApplyPass(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true
	game.TurnHasGuessed = true

	require.NoError(t, applyPass(game, hostID, guestID))
	assert.Equal(t, guestID, game.CurrentTurnID)
	assert.False(t, game.TurnHasDrawn)
	assert.False(t, game.TurnHasGuessed)
}

func TestApplyPassRequiresGuess(t *testing.T) {
	game := testGame()
	game.TurnHasDrawn = true

	assert.ErrorIs(t, applyPass(game, hostID, guestID), model.ErrMustGuessFirst)
}

func TestApplyPassRequiresTurn(t *testing.T) {
	game := testGame()
	assert.ErrorIs(t, applyPass(game, guestID, hostID), model.ErrNotYourTurn)
}
