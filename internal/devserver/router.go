package devserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/davincicode/client-go/internal/middleware"
)

// NewRouter builds the HTTP surface: the REST command endpoints the client
// posts to, and the two SSE topics it subscribes to
func NewRouter(svc *Service, hubs *HubManager, logger *slog.Logger) http.Handler {
	h := &handlers{svc: svc, hubs: hubs}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger, panicHandler))
	r.Use(middleware.Logging(logger))

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	r.HandleFunc("/users/register", h.register).Methods(http.MethodPost)

	r.HandleFunc("/rooms/waiting", h.listWaitingRooms).Methods(http.MethodGet)
	r.HandleFunc("/rooms/create", h.createRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}", h.getRoom).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{code}/join", h.join).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}/leave", h.leave).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}/start", h.start).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}/draw", h.draw).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}/guess", h.guess).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{code}/pass", h.pass).Methods(http.MethodPost)

	// Event streams
	r.HandleFunc("/rooms/{code}/events", h.roomEvents).Methods(http.MethodGet)
	r.HandleFunc("/games/{code}/events", h.gameEvents).Methods(http.MethodGet)

	return r
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: apiError{Code: "INTERNAL_ERROR", Message: "internal server error"},
	})
}
