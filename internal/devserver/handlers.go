package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
)

// handlers binds the service to the HTTP surface
type handlers struct {
	svc  *Service
	hubs *HubManager
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	return nil
}

func roomCode(r *http.Request) model.RoomCode {
	return model.RoomCode(mux.Vars(r)["code"])
}

// register handles POST /users/register
func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// listWaitingRooms handles GET /rooms/waiting
func (h *handlers) listWaitingRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.ListWaitingRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// createRoom handles POST /rooms/create
func (h *handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string              `json:"title"`
		UserID model.ParticipantID `json:"userId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	room, err := h.svc.CreateRoom(r.Context(), req.Title, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// getRoom handles GET /rooms/{code}
func (h *handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.svc.GetRoom(r.Context(), roomCode(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// join handles POST /rooms/{code}/join
func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.JoinCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}

	room, err := h.svc.Join(r.Context(), roomCode(r), cmd.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// leave handles POST /rooms/{code}/leave
func (h *handlers) leave(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.LeaveCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Leave(r.Context(), roomCode(r), cmd.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// start handles POST /rooms/{code}/start
func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.StartCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Start(r.Context(), roomCode(r), cmd.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// draw handles POST /rooms/{code}/draw
func (h *handlers) draw(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.DrawCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}
	if cmd.Color != model.ColorWhite && cmd.Color != model.ColorBlack {
		writeError(w, fmt.Errorf("%w: unknown color %q", model.ErrInvalidRequest, cmd.Color))
		return
	}

	if err := h.svc.Draw(r.Context(), roomCode(r), cmd.UserID, cmd.Color); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// guess handles POST /rooms/{code}/guess
func (h *handlers) guess(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.GuessCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Guess(r.Context(), roomCode(r), cmd.UserID, cmd.TargetCardID, cmd.GuessedNumber); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pass handles POST /rooms/{code}/pass
func (h *handlers) pass(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.PassCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Pass(r.Context(), roomCode(r), cmd.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// roomEvents handles GET /rooms/{code}/events
func (h *handlers) roomEvents(w http.ResponseWriter, r *http.Request) {
	h.hubs.ServeSSE(w, r, topicRoom, roomCode(r))
}

// gameEvents handles GET /games/{code}/events
func (h *handlers) gameEvents(w http.ResponseWriter, r *http.Request) {
	h.hubs.ServeSSE(w, r, topicGame, roomCode(r))
}

// health handles GET /health
func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
