package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/wfunc/tetris/broadcast"
	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/monitor"
	"github.com/wfunc/tetris/network"
	"github.com/wfunc/tetris/services"
	"github.com/wfunc/tetris/session"
)

// GameServer accepts peer connections, gates them on a connect handshake,
// and relays every state update to all other registered peers. It owns no
// game logic; it only mirrors snapshots.
type GameServer struct {
	addr        string
	listener    net.Listener
	sessions    *session.Manager
	broadcaster broadcast.Broadcaster
	scores      *services.ScoreService
	mon         *monitor.Monitor
	spectators  *SpectatorHub

	nextPlayerID int64
	idMutex      sync.Mutex

	// Every accepted connection, including those still waiting for their
	// handshake frame. Stop closes them all to unblock pending reads.
	conns      map[network.Connection]struct{}
	connsMutex sync.Mutex

	shutdownChan chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewGameServer wires the relay. scores and mon may be nil; the server
// then runs without persistence or metrics.
func NewGameServer(addr string, scores *services.ScoreService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:         addr,
		sessions:     session.NewManager(),
		scores:       scores,
		mon:          mon,
		conns:        make(map[network.Connection]struct{}),
		shutdownChan: make(chan struct{}),
	}
	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessions)
	return s
}

// SetSpectatorHub attaches an optional read-only snapshot feed. Must be
// called before Start.
func (s *GameServer) SetSpectatorHub(hub *SpectatorHub) {
	s.spectators = hub
}

// Start binds the listener and launches the accept loop. It does not
// block.
func (s *GameServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	logger.Log.Infof("Game server listening on %s", listener.Addr())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *GameServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// PlayerCount returns the number of registered peers.
func (s *GameServer) PlayerCount() int {
	return s.sessions.Count()
}

// Sessions exposes the registry for the admin RPC endpoint.
func (s *GameServer) Sessions() *session.Manager {
	return s.sessions
}

func (s *GameServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownChan:
				return
			default:
			}
			// The listener is gone either way; accept errors on a live
			// TCP listener are not recoverable here.
			logger.Log.Errorf("Accept failed: %v", err)
			return
		}

		c := network.NewTCPConnection(conn)
		s.trackConn(c)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrackConn(c)
			s.handleConnection(c)
		}()
	}
}

func (s *GameServer) trackConn(conn network.Connection) {
	s.connsMutex.Lock()
	s.conns[conn] = struct{}{}
	s.connsMutex.Unlock()
}

func (s *GameServer) untrackConn(conn network.Connection) {
	s.connsMutex.Lock()
	delete(s.conns, conn)
	s.connsMutex.Unlock()
}

func (s *GameServer) nextID() string {
	s.idMutex.Lock()
	defer s.idMutex.Unlock()
	s.nextPlayerID++
	return fmt.Sprintf("player_%d", s.nextPlayerID)
}

// handleConnection gates the handshake then pumps messages until the
// connection dies. The first frame must be a connect request; anything
// else closes the socket without a reply.
func (s *GameServer) handleConnection(conn network.Connection) {
	first, err := conn.ReadMessage()
	if err != nil || first.Type != network.MsgConnect {
		conn.Close()
		return
	}

	payload, err := first.Connect()
	if err != nil {
		conn.Close()
		return
	}

	playerID := s.nextID()
	sess := session.NewSession(playerID, payload.PlayerName, conn)
	s.sessions.Add(sess)
	s.mon.PeerConnected()

	defer func() {
		s.sessions.Remove(playerID)
		s.mon.PeerDisconnected()
		conn.Close()
		logger.Log.Infof("Player %s disconnected", playerID)
	}()

	if err := conn.Send(network.NewConnectedMessage(playerID)); err != nil {
		logger.Log.Warnf("Handshake reply to %s failed: %v", playerID, err)
		return
	}

	logger.Log.Infof("Player %s (%s) connected from %s", playerID, payload.PlayerName, conn.RemoteAddr())

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		msg, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.mon.DecodeFailure()
				logger.Log.Warnf("Read from %s failed: %v", playerID, err)
			}
			return
		}

		if err := s.handleMessage(sess, msg); err != nil {
			s.mon.DecodeFailure()
			logger.Log.Warnf("Message from %s: %v", playerID, err)
			return
		}
	}
}

// handleMessage dispatches one decoded frame. A malformed payload is
// connection-ending; an unknown kind is ignored.
func (s *GameServer) handleMessage(sess *session.Session, msg *network.GameMessage) error {
	switch msg.Type {
	case network.MsgStateUpdate:
		payload, err := msg.State()
		if err != nil {
			return fmt.Errorf("malformed state update: %w", err)
		}
		sess.SetLastState(&payload.State)

		start := time.Now()
		out, err := network.NewStateUpdateMessage(sess.PlayerID, payload.State)
		if err != nil {
			return err
		}
		s.broadcaster.RelayToOthers(sess.PlayerID, out)
		s.mon.MessageRelayed(len(out.Data), time.Since(start))

		if s.spectators != nil {
			s.spectators.BroadcastSnapshot(sess.PlayerID, payload.State)
		}

	case network.MsgGameOver:
		payload, err := msg.GameOverScore()
		if err != nil {
			return fmt.Errorf("malformed game over: %w", err)
		}
		logger.Log.Infof("Player %s game over, final score %d", sess.PlayerID, payload.Score)
		s.mon.GameFinished()
		if s.scores != nil {
			state := sess.LastState()
			if err := s.scores.RecordFinalScore(sess, payload.Score, state); err != nil {
				logger.Log.Errorf("Persisting final score for %s: %v", sess.PlayerID, err)
			}
		}

	case network.MsgPing:
		if err := sess.Send(network.NewPongMessage(sess.PlayerID)); err != nil {
			logger.Log.Warnf("Pong to %s failed: %v", sess.PlayerID, err)
		}

	default:
		logger.Log.Infof("Ignoring message type %q from %s", msg.Type, sess.PlayerID)
	}
	return nil
}

// Stop closes the listener and every registered connection, then waits
// for the workers to drain. Safe to call from any goroutine, more than
// once.
func (s *GameServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdownChan)
		if s.listener != nil {
			s.listener.Close()
		}
		// Closing the connections unblocks every worker's pending read,
		// registered or still mid-handshake.
		s.connsMutex.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.connsMutex.Unlock()
	})
	s.wg.Wait()
}
