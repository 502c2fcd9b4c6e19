package protocol

import "github.com/davincicode/client-go/internal/model"

// Error codes carried in API error responses. The server maps its domain
// errors onto these; the client maps them back so callers can use errors.Is
// against the model sentinels regardless of transport.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeNicknameTaken  = "NICKNAME_TAKEN"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomFull       = "ROOM_FULL"
	CodeAlreadyInRoom  = "ALREADY_IN_ROOM"
	CodeNotInRoom      = "NOT_IN_ROOM"
	CodeNotHost        = "NOT_HOST"
	CodeGameInProgress = "GAME_IN_PROGRESS"
	CodeNoGame         = "NO_GAME_IN_PROGRESS"
	CodeNeedGuest      = "NEED_GUEST"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeCardNotFound   = "CARD_NOT_FOUND"
	CodeCardOpen       = "CARD_ALREADY_OPEN"
	CodeOwnCard        = "OWN_CARD"
	CodeDeckEmpty      = "DECK_EMPTY"
	CodeColorExhausted = "COLOR_EXHAUSTED"
	CodeMustDrawFirst  = "MUST_DRAW_FIRST"
	CodeMustGuessFirst = "MUST_GUESS_FIRST"
	CodeInvalidNumber  = "INVALID_NUMBER"
	CodeGameEnded      = "GAME_ENDED"
	CodeInternalError  = "INTERNAL_ERROR"
)

var codeToError = map[string]error{
	CodeInvalidRequest: model.ErrInvalidRequest,
	CodeUserNotFound:   model.ErrUserNotFound,
	CodeNicknameTaken:  model.ErrNicknameTaken,
	CodeRoomNotFound:   model.ErrRoomNotFound,
	CodeRoomFull:       model.ErrRoomFull,
	CodeAlreadyInRoom:  model.ErrAlreadyInRoom,
	CodeNotInRoom:      model.ErrNotInRoom,
	CodeNotHost:        model.ErrNotHost,
	CodeGameInProgress: model.ErrGameInProgress,
	CodeNoGame:         model.ErrNoGame,
	CodeNeedGuest:      model.ErrNeedGuest,
	CodeNotYourTurn:    model.ErrNotYourTurn,
	CodeCardNotFound:   model.ErrCardNotFound,
	CodeCardOpen:       model.ErrCardOpen,
	CodeOwnCard:        model.ErrOwnCard,
	CodeDeckEmpty:      model.ErrDeckEmpty,
	CodeColorExhausted: model.ErrColorExhausted,
	CodeMustDrawFirst:  model.ErrMustDrawFirst,
	CodeMustGuessFirst: model.ErrMustGuessFirst,
	CodeInvalidNumber:  model.ErrInvalidNumber,
	CodeGameEnded:      model.ErrGameEnded,
}

// ErrorForCode returns the domain sentinel for an API error code, or nil
// when the code has no domain equivalent
func ErrorForCode(code string) error {
	return codeToError[code]
}
