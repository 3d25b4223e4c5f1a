package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyPayload is returned for a zero-length frame.
	ErrEmptyPayload = errors.New("protocol: empty payload")
	// ErrUnknownType is returned for a discriminant outside the known set.
	ErrUnknownType = errors.New("protocol: unknown message type")
	// ErrMissingType is returned when the "type" field is absent.
	ErrMissingType = errors.New("protocol: missing message type")
)

// envelope is the discriminator shared by every message.
type envelope struct {
	Type string `json:"type"`
}

func peekType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("protocol: decode envelope: %w", err)
	}
	if env.Type == "" {
		return "", ErrMissingType
	}
	return env.Type, nil
}

func decodeMessage[T ServerMessage](typ string, data []byte) (ServerMessage, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", typ, err)
	}
	return out, nil
}

func decodeUpdate[T Update](typ string, data []byte) (Update, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", typ, err)
	}
	return out, nil
}

// Decode parses one inbound frame into its ServerMessage variant.
//
// The message is nil whenever the frame as a whole is unusable. A gameUpdates
// batch with malformed items still decodes: the result holds every item that
// parsed, and the returned error joins one error per dropped item.
func Decode(data []byte) (ServerMessage, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypePlayerAssignment:
		return decodeMessage[PlayerAssignment](typ, data)
	case TypeInitialState:
		return decodeMessage[InitialState](typ, data)
	case TypeGameUpdates:
		return decodeBatch(data)
	case TypeGameOver:
		return decodeMessage[GameOver](typ, data)
	case TypeLobbyState:
		return decodeMessage[LobbyState](typ, data)
	case TypeCountdown:
		return decodeMessage[Countdown](typ, data)
	case TypeGameStart:
		return GameStart{}, nil
	case TypeRoomCreated:
		return decodeMessage[RoomCreated](typ, data)
	case TypeRoomJoined:
		return decodeMessage[RoomJoined](typ, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func decodeBatch(data []byte) (ServerMessage, error) {
	var raw struct {
		Updates []json.RawMessage `json:"updates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", TypeGameUpdates, err)
	}

	batch := GameUpdates{Updates: make([]Update, 0, len(raw.Updates))}
	var errs []error
	for i, item := range raw.Updates {
		u, err := DecodeUpdate(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("update %d: %w", i, err))
			continue
		}
		batch.Updates = append(batch.Updates, u)
	}
	return batch, errors.Join(errs...)
}

// DecodeUpdate parses one atomic update.
func DecodeUpdate(data []byte) (Update, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypePlayerJoined:
		return decodeUpdate[PlayerJoined](typ, data)
	case TypePlayerLeft:
		return decodeUpdate[PlayerLeft](typ, data)
	case TypeScoreUpdate:
		return decodeUpdate[ScoreChanged](typ, data)
	case TypePaddlePositionUpdate:
		return decodeUpdate[PaddleMoved](typ, data)
	case TypeBallSpawned:
		return decodeUpdate[BallSpawned](typ, data)
	case TypeBallRemoved:
		return decodeUpdate[BallRemoved](typ, data)
	case TypeBallPositionUpdate:
		return decodeUpdate[BallMoved](typ, data)
	case TypeBallOwnershipChange:
		return decodeUpdate[BallOwnershipChanged](typ, data)
	case TypeFullGridUpdate:
		return decodeUpdate[GridReplaced](typ, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// Encode serializes an outbound message as a flat JSON object with its
// "type" discriminant.
func Encode(m ClientMessage) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("protocol: encode nil message")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.clientMessage(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.clientMessage(), err)
	}
	typ, err := json.Marshal(m.clientMessage())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}
