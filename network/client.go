package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/logger"
)

var (
	// ErrNotConnected is returned when sending without an established
	// connection.
	ErrNotConnected = errors.New("client is not connected")
	// ErrHandshakeRejected is returned when the server's first reply is
	// not a connected message.
	ErrHandshakeRejected = errors.New("server rejected handshake")
)

// GameClient is the outbound peer: it performs the connect handshake,
// pushes local snapshots, and caches the most recent opponent snapshot
// received from the relay (last write wins, no history).
type GameClient struct {
	mutex sync.RWMutex

	conn      Connection
	playerID  string
	connected bool

	opponentID    string
	opponentState *game.Snapshot

	done chan struct{}
}

func NewGameClient() *GameClient {
	return &GameClient{}
}

// Connect dials the server, sends a connect request and blocks for exactly
// one reply. Any reply other than connected is a connection failure. On
// success the background receive loop starts.
func (c *GameClient) Connect(host string, port int, playerName string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.connected {
		return errors.New("client is already connected")
	}

	raw, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 5*time.Second)
	if err != nil {
		return err
	}
	conn := NewTCPConnection(raw)

	if err := conn.Send(NewConnectMessage(playerName)); err != nil {
		conn.Close()
		return err
	}

	reply, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return err
	}
	if reply.Type != MsgConnected {
		conn.Close()
		return ErrHandshakeRejected
	}

	c.conn = conn
	c.playerID = reply.PlayerID
	c.connected = true
	c.done = make(chan struct{})

	go c.receiveLoop(conn, c.done)

	logger.Log.Infof("Connected to server as %s", c.playerID)
	return nil
}

// receiveLoop decodes messages until the first read or decode failure,
// which is terminal for the connection.
func (c *GameClient) receiveLoop(conn Connection, done chan struct{}) {
	defer close(done)

	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.handleMessage(msg)
	}

	c.mutex.Lock()
	c.connected = false
	c.mutex.Unlock()
	logger.Log.Info("Disconnected from server")
}

func (c *GameClient) handleMessage(msg *GameMessage) {
	switch msg.Type {
	case MsgStateUpdate:
		payload, err := msg.State()
		if err != nil {
			logger.Log.Warnf("Dropping malformed state update from %s: %v", msg.PlayerID, err)
			return
		}
		c.mutex.Lock()
		c.opponentID = msg.PlayerID
		c.opponentState = &payload.State
		c.mutex.Unlock()
	case MsgGameOver:
		payload, err := msg.GameOverScore()
		if err != nil {
			return
		}
		logger.Log.Infof("Opponent %s game over, final score %d", msg.PlayerID, payload.Score)
	case MsgPing:
		c.mutex.RLock()
		conn := c.conn
		id := c.playerID
		c.mutex.RUnlock()
		if conn != nil {
			_ = conn.Send(NewPongMessage(id))
		}
	}
}

func (c *GameClient) send(msg *GameMessage) error {
	c.mutex.RLock()
	conn := c.conn
	connected := c.connected
	c.mutex.RUnlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	if err := conn.Send(msg); err != nil {
		c.mutex.Lock()
		c.connected = false
		c.mutex.Unlock()
		return err
	}
	return nil
}

// SendStateUpdate pushes the local snapshot to the relay.
func (c *GameClient) SendStateUpdate(state game.Snapshot) error {
	msg, err := NewStateUpdateMessage(c.PlayerID(), state)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// SendGameOver reports the local final score.
func (c *GameClient) SendGameOver(score int) error {
	return c.send(NewGameOverMessage(c.PlayerID(), score))
}

// OpponentState returns the sender id and snapshot of the most recent
// relayed update, or ("", nil) before the first one arrives.
func (c *GameClient) OpponentState() (string, *game.Snapshot) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.opponentID, c.opponentState
}

// PlayerID returns the server-assigned identity.
func (c *GameClient) PlayerID() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.playerID
}

// Connected reports whether the receive loop is still alive.
func (c *GameClient) Connected() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.connected
}

// Disconnect closes the connection and waits for the receive loop to
// finish. Safe to call more than once.
func (c *GameClient) Disconnect() {
	c.mutex.Lock()
	conn := c.conn
	done := c.done
	c.conn = nil
	c.connected = false
	c.mutex.Unlock()

	if conn != nil {
		conn.Close()
	}
	if done != nil {
		<-done
	}
}
