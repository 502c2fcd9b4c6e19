package model

// ParticipantID identifies a registered user across rooms and games
type ParticipantID string

// Role distinguishes the room creator from the second player
type Role string

const (
	RoleHost  Role = "HOST"
	RoleGuest Role = "GUEST"
)

// Participant represents a user occupying one of a room's two seats.
// A participant's role is fixed for the lifetime of their session in the room.
type Participant struct {
	ID       ParticipantID `json:"id"`
	Nickname string        `json:"nickname"`
	Role     Role          `json:"role"`
}

// User is a registered identity before it is seated in a room
type User struct {
	ID       ParticipantID `json:"id"`
	Nickname string        `json:"nickname"`
}
