package devserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
)

// apiError is the wire shape of an error response
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// writeError maps a domain error onto its HTTP status and wire code
func writeError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: err.Error()}})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, protocol.CodeInvalidRequest
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, protocol.CodeUserNotFound
	case errors.Is(err, model.ErrNicknameTaken):
		return http.StatusConflict, protocol.CodeNicknameTaken
	case errors.Is(err, model.ErrRoomNotFound):
		return http.StatusNotFound, protocol.CodeRoomNotFound
	case errors.Is(err, model.ErrRoomFull):
		return http.StatusConflict, protocol.CodeRoomFull
	case errors.Is(err, model.ErrAlreadyInRoom):
		return http.StatusConflict, protocol.CodeAlreadyInRoom
	case errors.Is(err, model.ErrNotInRoom):
		return http.StatusForbidden, protocol.CodeNotInRoom
	case errors.Is(err, model.ErrNotHost):
		return http.StatusForbidden, protocol.CodeNotHost
	case errors.Is(err, model.ErrGameInProgress):
		return http.StatusConflict, protocol.CodeGameInProgress
	case errors.Is(err, model.ErrNoGame):
		return http.StatusConflict, protocol.CodeNoGame
	case errors.Is(err, model.ErrNeedGuest):
		return http.StatusConflict, protocol.CodeNeedGuest
	case errors.Is(err, model.ErrNotYourTurn):
		return http.StatusConflict, protocol.CodeNotYourTurn
	case errors.Is(err, model.ErrCardNotFound):
		return http.StatusNotFound, protocol.CodeCardNotFound
	case errors.Is(err, model.ErrCardOpen):
		return http.StatusConflict, protocol.CodeCardOpen
	case errors.Is(err, model.ErrOwnCard):
		return http.StatusConflict, protocol.CodeOwnCard
	case errors.Is(err, model.ErrDeckEmpty):
		return http.StatusConflict, protocol.CodeDeckEmpty
	case errors.Is(err, model.ErrColorExhausted):
		return http.StatusConflict, protocol.CodeColorExhausted
	case errors.Is(err, model.ErrMustDrawFirst):
		return http.StatusConflict, protocol.CodeMustDrawFirst
	case errors.Is(err, model.ErrMustGuessFirst):
		return http.StatusConflict, protocol.CodeMustGuessFirst
	case errors.Is(err, model.ErrInvalidNumber):
		return http.StatusBadRequest, protocol.CodeInvalidNumber
	case errors.Is(err, model.ErrGameEnded):
		return http.StatusConflict, protocol.CodeGameEnded
	default:
		return http.StatusInternalServerError, protocol.CodeInternalError
	}
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
