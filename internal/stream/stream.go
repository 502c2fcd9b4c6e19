// Package stream consumes the server's event streams. A Subscription owns
// exactly one pair of SSE connections (room topic + game topic) and merges
// them into a single ordered channel of raw messages for the session layer
// to decode and apply.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/davincicode/client-go/internal/model"
)

// Topic identifies which stream a message arrived on
type Topic string

const (
	// TopicRoom carries room lifecycle events (created, updated, deleted)
	TopicRoom Topic = "room"

	// TopicGame carries in-game events (start, draw, guess, turn, end)
	TopicGame Topic = "game"
)

// Message is one raw SSE event, not yet decoded
type Message struct {
	Topic Topic
	Event string
	Data  []byte
}

// Subscription is a live connection to both topics of one room. Messages
// from both connections are merged into a single channel in arrival order.
// Closing the subscription tears down both connections; the channel closes
// once both readers have drained.
type Subscription struct {
	messages chan Message
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *slog.Logger

	mu  sync.Mutex
	err error
}

// Dial connects to the room and game event streams for the given room.
// Both connections must be established before any message is delivered; if
// either fails, the other is torn down and the dial fails as a whole.
func Dial(ctx context.Context, httpClient *http.Client, serverURL string, code model.RoomCode, logger *slog.Logger) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	base := strings.TrimSuffix(serverURL, "/")
	endpoints := map[Topic]string{
		TopicRoom: fmt.Sprintf("%s/rooms/%s/events", base, code),
		TopicGame: fmt.Sprintf("%s/games/%s/events", base, code),
	}

	sub := &Subscription{
		messages: make(chan Message, 16),
		cancel:   cancel,
		logger:   logger.With(slog.String("component", "stream"), slog.String("room", string(code))),
	}

	bodies := make(map[Topic]*http.Response, len(endpoints))
	for topic, url := range endpoints {
		resp, err := open(ctx, httpClient, url)
		if err != nil {
			for _, r := range bodies {
				_ = r.Body.Close()
			}
			cancel()
			return nil, fmt.Errorf("subscribing to %s topic: %w", topic, err)
		}
		bodies[topic] = resp
	}

	for topic, resp := range bodies {
		sub.wg.Add(1)
		go sub.read(ctx, topic, resp)
	}
	go func() {
		sub.wg.Wait()
		close(sub.messages)
	}()

	return sub, nil
}

func open(ctx context.Context, httpClient *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return resp, nil
}

// Messages returns the merged event channel. It closes when the
// subscription is closed or both upstream connections end.
func (s *Subscription) Messages() <-chan Message {
	return s.messages
}

// Err reports the first reader error, if any, once Messages has closed.
// A deliberate Close never produces an error.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down both connections and blocks until the readers exit
func (s *Subscription) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Subscription) read(ctx context.Context, topic Topic, resp *http.Response) {
	defer s.wg.Done()
	defer func() { _ = resp.Body.Close() }()

	scanner := bufio.NewScanner(resp.Body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case strings.HasPrefix(line, ":"):
			// Comment line, used by the server as a keepalive
		case line == "":
			// The server greets each connection with a "connected" event;
			// it carries no game data.
			if len(dataLines) > 0 && currentEvent != "connected" {
				msg := Message{
					Topic: topic,
					Event: currentEvent,
					Data:  []byte(strings.Join(dataLines, "\n")),
				}
				select {
				case s.messages <- msg:
				case <-ctx.Done():
					return
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("stream reader failed", slog.String("topic", string(topic)), slog.String("error", err.Error()))
		s.mu.Lock()
		if s.err == nil {
			s.err = fmt.Errorf("%s stream: %w", topic, err)
		}
		s.mu.Unlock()
	}
	// One topic ending takes the whole subscription down so the session
	// never runs half-subscribed.
	s.cancel()
}
