package model

import "errors"

// Common errors used across the application
var (
	// ErrInvalidRequest covers malformed or incomplete command input
	ErrInvalidRequest = errors.New("invalid request")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrNicknameTaken = errors.New("nickname already taken")

	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyInRoom  = errors.New("participant is already in room")
	ErrNotInRoom      = errors.New("participant is not in room")
	ErrNotHost        = errors.New("participant is not the host")
	ErrGameInProgress = errors.New("game is in progress")
	ErrNoGame         = errors.New("no game in progress")
	ErrNeedGuest      = errors.New("a guest must join before starting")

	// Game errors
	ErrNotYourTurn    = errors.New("not this participant's turn")
	ErrCardNotFound   = errors.New("card not found")
	ErrCardOpen       = errors.New("card is already open")
	ErrOwnCard        = errors.New("cannot guess your own card")
	ErrDeckEmpty      = errors.New("no cards left in the deck")
	ErrColorExhausted = errors.New("no cards of that color left")
	ErrMustDrawFirst  = errors.New("must draw a card before guessing")
	ErrMustGuessFirst = errors.New("must guess at least once before passing")
	ErrInvalidNumber  = errors.New("guessed number out of range")
	ErrGameEnded      = errors.New("game has already ended")
)
