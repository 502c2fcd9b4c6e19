// Package devserver is a self-contained game server for local play and
// end-to-end testing: the full room/game rules engine over pluggable
// storage, with the two SSE topics the client subscribes to.
package devserver

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
)

// topic names one of the two event streams a room exposes
type topic string

const (
	topicRoom topic = "room"
	topicGame topic = "game"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// hub fans one room topic out to its connected SSE clients
type hub struct {
	key    hubKey
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*hubClient]bool

	register   chan *hubClient
	unregister chan *hubClient
	broadcast  chan []byte
	done       chan struct{}
}

type hubKey struct {
	topic topic
	code  model.RoomCode
}

type hubClient struct {
	send chan []byte
}

func newHub(key hubKey, logger *slog.Logger) *hub {
	return &hub{
		key: key,
		logger: logger.With(
			slog.String("topic", string(key.topic)),
			slog.String("room", string(key.code)),
		),
		clients:    make(map[*hubClient]bool),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

func (h *hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("sse client registered", slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("sse client unregistered", slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.logger.Warn("sse message dropped, client buffer full")
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *hub) close() {
	close(h.done)
}

// HubManager owns the hubs for every room topic pair
type HubManager struct {
	mu     sync.Mutex
	hubs   map[hubKey]*hub
	logger *slog.Logger
}

// NewHubManager creates a HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[hubKey]*hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

func (m *HubManager) getOrCreate(key hubKey) *hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hubs[key]; ok {
		return h
	}
	h := newHub(key, m.logger)
	m.hubs[key] = h
	go h.run()
	return h
}

// Broadcast encodes the event and sends it to every subscriber of the
// room's topic. Encoding failures only get logged; a broadcast must never
// fail a request.
func (m *HubManager) Broadcast(t topic, code model.RoomCode, ev protocol.Event) {
	data, err := protocol.Encode(ev)
	if err != nil {
		m.logger.Error("encoding broadcast event",
			slog.String("kind", string(ev.Kind())),
			slog.String("error", err.Error()),
		)
		return
	}

	h := m.getOrCreate(hubKey{topic: t, code: code})
	select {
	case h.broadcast <- formatSSEMessage("message", string(data)):
	default:
		h.logger.Warn("sse broadcast dropped, hub buffer full")
	}
}

// CloseRoom shuts down both hubs of a room, disconnecting all clients
func (m *HubManager) CloseRoom(code model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range []topic{topicRoom, topicGame} {
		key := hubKey{topic: t, code: code}
		if h, ok := m.hubs[key]; ok {
			h.close()
			delete(m.hubs, key)
		}
	}
}

// ServeSSE handles one SSE subscriber connection
func (m *HubManager) ServeSSE(w http.ResponseWriter, r *http.Request, t topic, code model.RoomCode) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	h := m.getOrCreate(hubKey{topic: t, code: code})
	client := &hubClient{send: make(chan []byte, sendBufferSize)}
	h.register <- client
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage formats an SSE message, prefixing every data line
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}
