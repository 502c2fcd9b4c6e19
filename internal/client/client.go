// Package client is the HTTP API client: room discovery, the session
// snapshot, and the command endpoints. It maps API error codes back onto the
// model sentinels so callers never see transport details.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davincicode/client-go/internal/model"
	"github.com/davincicode/client-go/internal/protocol"
)

// Client is an HTTP client for the game API
type Client struct {
	serverURL  string
	httpClient *http.Client
	// streamClient has no timeout; SSE connections stay open indefinitely
	streamClient *http.Client
}

// NewClient creates a client for the given server
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// ServerURL returns the base URL the client talks to
func (c *Client) ServerURL() string {
	return c.serverURL
}

// StreamClient returns the timeout-free HTTP client used for event streams
func (c *Client) StreamClient() *http.Client {
	return c.streamClient
}

// APIError is an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap exposes the domain sentinel behind the wire code, so
// errors.Is(err, model.ErrRoomFull) works on API errors.
func (e *APIError) Unwrap() error {
	return protocol.ErrorForCode(e.Code)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Health checks the server's health endpoint
func (c *Client) Health(ctx context.Context) (string, error) {
	var result struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &result); err != nil {
		return "", err
	}
	return result.Status, nil
}

// Register creates a user and returns its server-assigned identity
func (c *Client) Register(ctx context.Context, nickname string) (model.User, error) {
	var user model.User
	err := c.post(ctx, "/users/register", map[string]string{"nickname": nickname}, &user)
	return user, err
}

// ListWaitingRooms returns rooms currently open for a guest
func (c *Client) ListWaitingRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := c.get(ctx, "/rooms/waiting", &rooms)
	return rooms, err
}

// CreateRoom creates a room with the caller as host
func (c *Client) CreateRoom(ctx context.Context, title string, userID model.ParticipantID) (model.Room, error) {
	var room model.Room
	err := c.post(ctx, "/rooms/create", map[string]any{"title": title, "userId": userID}, &room)
	return room, err
}

// FetchRoom returns the room snapshot for a code
func (c *Client) FetchRoom(ctx context.Context, code model.RoomCode) (model.Room, error) {
	var room model.Room
	err := c.get(ctx, fmt.Sprintf("/rooms/%s", code), &room)
	return room, err
}

// Join adds the caller to the room as guest
func (c *Client) Join(ctx context.Context, code model.RoomCode, userID model.ParticipantID) (model.Room, error) {
	var room model.Room
	err := c.post(ctx, fmt.Sprintf("/rooms/%s/join", code), protocol.JoinCommand{
		RoomCode: code,
		UserID:   userID,
	}, &room)
	return room, err
}

// Leave removes the caller from the room
func (c *Client) Leave(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/leave", code), protocol.LeaveCommand{
		RoomCode: code,
		UserID:   userID,
	}, nil)
}

// StartGame asks the server to deal a new game; host only
func (c *Client) StartGame(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/start", code), protocol.StartCommand{
		RoomCode: code,
		UserID:   userID,
	}, nil)
}

// Draw requests a card of the given color from the deck
func (c *Client) Draw(ctx context.Context, code model.RoomCode, userID model.ParticipantID, color model.CardColor) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/draw", code), protocol.DrawCommand{
		RoomCode: code,
		UserID:   userID,
		Color:    color,
	}, nil)
}

// Guess submits a guess against an opponent card
func (c *Client) Guess(ctx context.Context, code model.RoomCode, userID model.ParticipantID, targetCardID, number int, color model.CardColor) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/guess", code), protocol.GuessCommand{
		RoomCode:      code,
		UserID:        userID,
		TargetCardID:  targetCardID,
		GuessedNumber: number,
		GuessedColor:  color,
	}, nil)
}

// PassTurn ends the caller's turn after a correct guess
func (c *Client) PassTurn(ctx context.Context, code model.RoomCode, userID model.ParticipantID) error {
	return c.post(ctx, fmt.Sprintf("/rooms/%s/pass", code), protocol.PassCommand{
		RoomCode: code,
		UserID:   userID,
	}, nil)
}

// LoadSnapshot resolves the authoritative room state to seed a session.
// A caller who is not yet a participant is joined as guest when a seat is
// free; a full room they are not part of is an error.
func (c *Client) LoadSnapshot(ctx context.Context, code model.RoomCode, userID model.ParticipantID) (model.Room, error) {
	room, err := c.FetchRoom(ctx, code)
	if err != nil {
		return model.Room{}, err
	}

	if room.IsParticipant(userID) {
		return room, nil
	}
	if room.HasGuest() {
		return model.Room{}, fmt.Errorf("room %s: %w", code, model.ErrRoomFull)
	}

	joined, err := c.Join(ctx, code, userID)
	if err != nil {
		return model.Room{}, fmt.Errorf("joining room %s: %w", code, err)
	}
	return joined, nil
}
