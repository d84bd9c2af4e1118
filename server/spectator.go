package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/logger"
)

// spectatorWriteWait bounds a single watcher write. A watcher that cannot
// drain its socket within it is evicted instead of stalling the relay.
const spectatorWriteWait = 5 * time.Second

// SpectatorHub pushes every relayed snapshot to read-only websocket
// watchers. Spectators never influence the relay; a failed or timed-out
// write just evicts the watcher.
type SpectatorHub struct {
	upgrader   websocket.Upgrader
	spectators map[string]*websocket.Conn
	mutex      sync.Mutex
	httpServer *http.Server
}

// spectatorFrame is the JSON document pushed to watchers.
type spectatorFrame struct {
	PlayerID  string        `json:"player_id"`
	State     game.Snapshot `json:"state"`
	Timestamp float64       `json:"timestamp"`
}

func NewSpectatorHub() *SpectatorHub {
	return &SpectatorHub{
		spectators: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start serves the /watch endpoint on its own address. It does not block.
func (h *SpectatorHub) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", h.HandleWatch)
	h.httpServer = &http.Server{Addr: addr, Handler: mux}

	logger.Log.Infof("Spectator feed listening on %s", addr)
	go func() {
		if err := h.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorf("Spectator server: %v", err)
		}
	}()
}

// HandleWatch upgrades one watcher connection and registers it.
func (h *SpectatorHub) HandleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("Spectator upgrade failed: %v", err)
		return
	}

	id := uuid.New().String()
	h.mutex.Lock()
	h.spectators[id] = conn
	h.mutex.Unlock()

	logger.Log.Infof("Spectator %s joined from %s", id, conn.RemoteAddr())

	// Watchers send nothing meaningful; the read pump only notices the
	// close and services control frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.remove(id)
	}()
}

func (h *SpectatorHub) remove(id string) {
	h.mutex.Lock()
	conn, exists := h.spectators[id]
	delete(h.spectators, id)
	h.mutex.Unlock()

	if exists {
		conn.Close()
		logger.Log.Infof("Spectator %s left", id)
	}
}

// BroadcastSnapshot pushes one relayed snapshot to every watcher.
func (h *SpectatorHub) BroadcastSnapshot(playerID string, state game.Snapshot) {
	frame := spectatorFrame{
		PlayerID:  playerID,
		State:     state,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.spectators {
		conn.SetWriteDeadline(time.Now().Add(spectatorWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			conn.Close()
			delete(h.spectators, id)
		}
	}
}

// SpectatorCount returns the number of registered watchers.
func (h *SpectatorHub) SpectatorCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.spectators)
}

// Close shuts the HTTP server and drops every watcher.
func (h *SpectatorHub) Close() {
	if h.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.httpServer.Shutdown(ctx)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, conn := range h.spectators {
		conn.Close()
		delete(h.spectators, id)
	}
}
