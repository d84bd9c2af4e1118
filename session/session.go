package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/network"
)

// ErrSessionNotFound is returned when looking up an unregistered peer.
var ErrSessionNotFound = errors.New("session not found")

// Session is one registered peer: its server-assigned identity, its
// connection, and the last snapshot it reported.
type Session struct {
	PlayerID   string
	Name       string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	lastState *game.Snapshot
	mutex     sync.RWMutex
}

func NewSession(playerID, name string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		PlayerID:   playerID,
		Name:       name,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// SetLastState records the peer's most recent snapshot.
func (s *Session) SetLastState(state *game.Snapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastState = state
	s.LastActive = time.Now()
}

// LastState returns the most recent snapshot, or nil before the first one.
func (s *Session) LastState() *game.Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastState
}

func (s *Session) Send(msg *network.GameMessage) error {
	return s.Conn.Send(msg)
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager is the connection registry, the only shared record of who is
// connected. It replaces any process-wide player table.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.PlayerID] = session
}

func (m *Manager) Remove(playerID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, playerID)
}

func (m *Manager) Get(playerID string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[playerID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a point-in-time copy of every registered session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// PlayerIDs returns the ids of every registered session.
func (m *Manager) PlayerIDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
