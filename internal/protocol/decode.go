package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind marks an event kind outside the closed set. Callers drop
	// the message and continue; new server-side kinds must never be fatal.
	ErrUnknownKind = errors.New("unknown event kind")

	// ErrBadPayload marks a recognized kind whose payload failed to decode or
	// validate. Callers drop the message and continue.
	ErrBadPayload = errors.New("malformed event payload")
)

// Decode parses a raw broadcast message into a typed event. It fails closed:
// any message that cannot be decoded into the known set yields an error and
// no event, never a panic or a partially filled event.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope decodes an already-parsed envelope
func DecodeEnvelope(env Envelope) (Event, error) {
	kind := EventKind(env.EventKind())
	if kind == "" {
		return nil, fmt.Errorf("%w: missing discriminator", ErrBadPayload)
	}

	switch kind {
	case EventRoomCreated:
		ev := RoomCreated{}
		if err := unmarshalPayload(env.Payload, &ev.Room); err != nil {
			return nil, err
		}
		if ev.Room.RoomCode == "" {
			return nil, fmt.Errorf("%w: %s without room code", ErrBadPayload, kind)
		}
		return ev, nil

	case EventRoomUpdated:
		ev := RoomUpdated{}
		if err := unmarshalPayload(env.Payload, &ev.Room); err != nil {
			return nil, err
		}
		if ev.Room.RoomCode == "" {
			return nil, fmt.Errorf("%w: %s without room code", ErrBadPayload, kind)
		}
		return ev, nil

	case EventRoomDeleted:
		return RoomDeleted{}, nil

	case EventGameStarted:
		ev := GameStarted{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		if len(ev.Cards) == 0 {
			return nil, fmt.Errorf("%w: %s without cards", ErrBadPayload, kind)
		}
		return ev, nil

	case EventCardDrawn:
		ev := CardDrawn{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		if ev.Card.ID == 0 || ev.ParticipantID == "" {
			return nil, fmt.Errorf("%w: %s missing card or participant", ErrBadPayload, kind)
		}
		return ev, nil

	case EventDrawFailed:
		ev := DrawFailed{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case EventCardOpened:
		ev := CardOpened{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		if ev.NextTurnID == "" {
			return nil, fmt.Errorf("%w: %s without next turn holder", ErrBadPayload, kind)
		}
		return ev, nil

	case EventTurnChanged:
		ev := TurnChanged{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		if ev.NextTurnID == "" {
			return nil, fmt.Errorf("%w: %s without next turn holder", ErrBadPayload, kind)
		}
		return ev, nil

	case EventGameEnded:
		ev := GameEnded{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case EventGameReset:
		ev := GameReset{}
		if err := unmarshalPayload(env.Payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func unmarshalPayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrBadPayload)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return nil
}

// Encode wraps a typed event in the wire envelope. Used by the dev server
// and by tests feeding raw messages through the full decode path.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: string(ev.Kind()), Payload: payload})
}
