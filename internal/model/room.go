package model

import "time"

// RoomCode is the human-readable identifier used to join rooms
type RoomCode string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "WAITING" // waiting for a guest or a new game
	RoomStatusPlaying RoomStatus = "PLAYING" // game in progress
	RoomStatusEnded   RoomStatus = "ENDED"   // game finished, about to auto-reset
)

// Room pairs at most two participants around a game. The wire shape is flat
// (hostId/hostNickname rather than nested objects) to match the server's JSON.
type Room struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	RoomCode       RoomCode      `json:"roomCode"`
	Status         RoomStatus    `json:"status"`
	HostID         ParticipantID `json:"hostId"`
	HostNickname   string        `json:"hostNickname"`
	GuestID        ParticipantID `json:"guestId,omitempty"`
	GuestNickname  string        `json:"guestNickname,omitempty"`
	WinnerNickname string        `json:"winnerNickname,omitempty"`
	CreatedAt      time.Time     `json:"createdAt,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt,omitempty"`
}

// HasGuest reports whether the guest seat is occupied
func (r *Room) HasGuest() bool {
	return r.GuestID != ""
}

// IsParticipant reports whether the given user holds either seat
func (r *Room) IsParticipant(id ParticipantID) bool {
	return id != "" && (r.HostID == id || r.GuestID == id)
}

// RoleOf returns the seat held by the given user
func (r *Room) RoleOf(id ParticipantID) (Role, bool) {
	switch {
	case id == "":
		return "", false
	case r.HostID == id:
		return RoleHost, true
	case r.GuestID == id:
		return RoleGuest, true
	default:
		return "", false
	}
}

// Opponent returns the participant seated opposite the given user
func (r *Room) Opponent(id ParticipantID) (ParticipantID, bool) {
	switch {
	case r.HostID == id && r.GuestID != "":
		return r.GuestID, true
	case r.GuestID == id:
		return r.HostID, true
	default:
		return "", false
	}
}

// NicknameOf returns the nickname for either seat holder
func (r *Room) NicknameOf(id ParticipantID) string {
	switch id {
	case r.HostID:
		return r.HostNickname
	case r.GuestID:
		return r.GuestNickname
	default:
		return ""
	}
}
