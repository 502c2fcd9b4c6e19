package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davincicode/client-go/internal/model"
)

func TestDecodeRoomUpdated(t *testing.T) {
	raw := []byte(`{"kind":"ROOM_UPDATED","payload":{"id":"r1","title":"my room","roomCode":"ABC123","status":"WAITING","hostId":"u1","hostNickname":"alice"}}`)

	ev, err := Decode(raw)
	require.NoError(t, err)

	updated, ok := ev.(RoomUpdated)
	require.True(t, ok)
	assert.Equal(t, model.RoomCode("ABC123"), updated.Room.RoomCode)
	assert.Equal(t, model.RoomStatusWaiting, updated.Room.Status)
	assert.Equal(t, model.ParticipantID("u1"), updated.Room.HostID)
}

func TestDecodeAcceptsLegacyDiscriminators(t *testing.T) {
	// Room topic historically used "type", game topic used "action"
	byType := []byte(`{"type":"ROOM_DELETED"}`)
	ev, err := Decode(byType)
	require.NoError(t, err)
	assert.Equal(t, EventRoomDeleted, ev.Kind())

	byAction := []byte(`{"action":"GAME_ENDED","payload":{"winnerNickname":"bob"}}`)
	ev, err = Decode(byAction)
	require.NoError(t, err)
	ended, ok := ev.(GameEnded)
	require.True(t, ok)
	assert.Equal(t, "bob", ended.WinnerNickname)
}

func TestDecodeGameStarted(t *testing.T) {
	raw := []byte(`{"kind":"GAME_STARTED","payload":{"cards":[{"id":1,"number":3,"color":"WHITE","status":"CLOSE","userId":"u1"}],"currentTurnUserId":"u1"}}`)

	ev, err := Decode(raw)
	require.NoError(t, err)

	started, ok := ev.(GameStarted)
	require.True(t, ok)
	require.Len(t, started.Cards, 1)
	assert.Equal(t, model.ParticipantID("u1"), started.CurrentTurnID)
	assert.Equal(t, model.ColorWhite, started.Cards[0].Color)
}

func TestDecodeCardOpened(t *testing.T) {
	raw := []byte(`{"kind":"CARD_OPENED","payload":{"cardId":42,"nextTurnUserId":"u2","correct":false,"guessedNumber":7,"ownerNickname":"bob","guesserId":"u1"}}`)

	ev, err := Decode(raw)
	require.NoError(t, err)

	opened, ok := ev.(CardOpened)
	require.True(t, ok)
	assert.Equal(t, 42, opened.CardID)
	assert.Equal(t, model.ParticipantID("u2"), opened.NextTurnID)
	assert.Equal(t, model.ParticipantID("u1"), opened.GuesserID)
	assert.False(t, opened.Correct)
	assert.Equal(t, 7, opened.GuessedNumber)
}

func TestDecodeUnknownKind(t *testing.T) {
	raw := []byte(`{"kind":"SOMETHING_NEW","payload":{"x":1}}`)

	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecodeMalformedPayloadIsRecoverable(t *testing.T) {
	cases := map[string][]byte{
		"not json":             []byte(`{{{`),
		"missing kind":         []byte(`{"payload":{}}`),
		"wrong payload type":   []byte(`{"kind":"GAME_STARTED","payload":"nope"}`),
		"empty cards":          []byte(`{"kind":"GAME_STARTED","payload":{"cards":[]}}`),
		"drawn without card":   []byte(`{"kind":"CARD_DRAWN","payload":{"userId":"u1"}}`),
		"turn without holder":  []byte(`{"kind":"TURN_CHANGED","payload":{}}`),
		"opened without turn":  []byte(`{"kind":"CARD_OPENED","payload":{"cardId":1}}`),
		"room without code":    []byte(`{"kind":"ROOM_UPDATED","payload":{"id":"x"}}`),
		"created without code": []byte(`{"kind":"ROOM_CREATED","payload":{}}`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ev, err := Decode(raw)
			assert.Error(t, err)
			assert.Nil(t, ev)
			assert.NotErrorIs(t, err, ErrUnknownKind)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := CardDrawn{
		Card:          model.Card{ID: 9, Number: 4, Color: model.ColorBlack, Status: model.CardClose, OwnerID: "u2"},
		ParticipantID: "u2",
		DeckEmpty:     true,
	}

	raw, err := Encode(original)
	require.NoError(t, err)

	ev, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, original, ev)
}
