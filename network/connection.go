package network

import (
	"net"
	"sync"
)

// Connection is one framed message stream. Send is safe for concurrent
// use; ReadMessage is not and belongs to a single reader goroutine.
// Closing the connection unblocks a pending ReadMessage.
type Connection interface {
	Send(msg *GameMessage) error
	ReadMessage() (*GameMessage, error)
	Close() error
	RemoteAddr() net.Addr
}

// TCPConnection frames GameMessages over a raw TCP stream.
type TCPConnection struct {
	conn      net.Conn
	sendMutex sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func NewTCPConnection(conn net.Conn) *TCPConnection {
	return &TCPConnection{conn: conn}
}

func (c *TCPConnection) Send(msg *GameMessage) error {
	frame, err := msg.Encode()
	if err != nil {
		return err
	}

	// One frame per Write call, serialized so concurrent senders cannot
	// interleave bytes.
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	_, err = c.conn.Write(frame)
	return err
}

func (c *TCPConnection) ReadMessage() (*GameMessage, error) {
	return ReadMessage(c.conn)
}

func (c *TCPConnection) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *TCPConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
