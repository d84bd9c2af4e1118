package network

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/wfunc/tetris/game"
)

// MessageType identifies the kind of message sent over the wire.
type MessageType string

const (
	MsgConnect     MessageType = "connect"
	MsgConnected   MessageType = "connected"
	MsgStateUpdate MessageType = "state_update"
	MsgGameOver    MessageType = "game_over"
	MsgDisconnect  MessageType = "disconnect"
	MsgPing        MessageType = "ping"
	MsgPong        MessageType = "pong"
)

// MaxFrameSize caps a single frame's payload. A length prefix beyond it is
// treated as a corrupt stream rather than an allocation request.
const MaxFrameSize = 1 << 20

// GameMessage is the self-describing wire record. PlayerID is assigned by
// the server and absent on the very first connect. Timestamp is advisory
// only; nothing orders on it.
type GameMessage struct {
	Type      MessageType     `json:"type"`
	PlayerID  string          `json:"player_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp float64         `json:"timestamp"`
}

// ConnectPayload carries the display name on a connect request.
type ConnectPayload struct {
	PlayerName string `json:"player_name"`
}

// StatePayload wraps one player's full snapshot.
type StatePayload struct {
	State game.Snapshot `json:"state"`
}

// GameOverPayload carries a final score.
type GameOverPayload struct {
	Score int `json:"score"`
}

func newMessage(msgType MessageType, playerID string, data interface{}) (*GameMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &GameMessage{
		Type:      msgType,
		PlayerID:  playerID,
		Data:      raw,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}, nil
}

// NewConnectMessage builds the handshake request. No player id yet; the
// server assigns one in the reply.
func NewConnectMessage(playerName string) *GameMessage {
	msg, _ := newMessage(MsgConnect, "", ConnectPayload{PlayerName: playerName})
	return msg
}

// NewConnectedMessage builds the handshake reply carrying the assigned id.
func NewConnectedMessage(playerID string) *GameMessage {
	msg, _ := newMessage(MsgConnected, playerID, struct{}{})
	return msg
}

// NewStateUpdateMessage wraps a snapshot for the wire.
func NewStateUpdateMessage(playerID string, state game.Snapshot) (*GameMessage, error) {
	return newMessage(MsgStateUpdate, playerID, StatePayload{State: state})
}

// NewGameOverMessage reports a finished playthrough.
func NewGameOverMessage(playerID string, score int) *GameMessage {
	msg, _ := newMessage(MsgGameOver, playerID, GameOverPayload{Score: score})
	return msg
}

// NewPongMessage answers a ping.
func NewPongMessage(playerID string) *GameMessage {
	msg, _ := newMessage(MsgPong, playerID, struct{}{})
	return msg
}

// Connect decodes a connect payload.
func (m *GameMessage) Connect() (ConnectPayload, error) {
	var p ConnectPayload
	err := json.Unmarshal(m.Data, &p)
	return p, err
}

// State decodes a state_update payload.
func (m *GameMessage) State() (StatePayload, error) {
	var p StatePayload
	err := json.Unmarshal(m.Data, &p)
	return p, err
}

// GameOverScore decodes a game_over payload.
func (m *GameMessage) GameOverScore() (GameOverPayload, error) {
	var p GameOverPayload
	err := json.Unmarshal(m.Data, &p)
	return p, err
}

// Encode serializes the message as a 4-byte big-endian length prefix
// followed by the UTF-8 JSON payload.
func (m *GameMessage) Encode() ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(payload)))
	copy(frame[4:], payload)
	return frame, nil
}

// ReadMessage reads exactly one frame from r. A short read (peer closed
// mid-frame) or a malformed payload is an error; there is nothing to
// retry, the connection is done.
func ReadMessage(r io.Reader) (*GameMessage, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("frame length %d exceeds limit", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	var msg GameMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &msg, nil
}
