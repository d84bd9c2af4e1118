package broadcast

import (
	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/network"
	"github.com/wfunc/tetris/session"
)

// Broadcaster fans a message out to registered peers.
type Broadcaster interface {
	// RelayToOthers delivers msg to every peer except the sender.
	RelayToOthers(senderID string, msg *network.GameMessage) error
	// BroadcastToAll delivers msg to every peer.
	BroadcastToAll(msg *network.GameMessage) error
}

// SessionBroadcaster relays over the session registry. A failed send is
// logged and skipped; the reader goroutine of the failing connection will
// notice the broken socket and deregister it.
type SessionBroadcaster struct {
	sessions *session.Manager
}

func NewSessionBroadcaster(sessions *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessions: sessions}
}

func (b *SessionBroadcaster) RelayToOthers(senderID string, msg *network.GameMessage) error {
	for _, s := range b.sessions.All() {
		if s.PlayerID == senderID {
			continue
		}
		if err := s.Send(msg); err != nil {
			logger.Log.Warnf("Relay to %s failed: %v", s.PlayerID, err)
		}
	}
	return nil
}

func (b *SessionBroadcaster) BroadcastToAll(msg *network.GameMessage) error {
	for _, s := range b.sessions.All() {
		if err := s.Send(msg); err != nil {
			logger.Log.Warnf("Broadcast to %s failed: %v", s.PlayerID, err)
		}
	}
	return nil
}
