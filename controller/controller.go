package controller

import (
	"sync"
	"time"

	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/network"
	"github.com/wfunc/tetris/timer"
)

const (
	// TickInterval drives the simulation clock.
	TickInterval = time.Second / 60
	// SendInterval is the outbound snapshot cadence.
	SendInterval = 100 * time.Millisecond

	timerResolution = 5 * time.Millisecond
)

// Controller owns one Engine and, optionally, one GameClient. It is the
// single logical thread of control over the engine: the tick timer, the
// snapshot timer and the input facade all serialize on one mutex, so
// network workers never touch engine state directly.
type Controller struct {
	mutex  sync.Mutex
	engine *game.Engine
	client *network.GameClient

	timers       *timer.Manager
	tickTimerID  int64
	sendTimerID  int64
	gameOverSent bool
	started      bool
}

// NewController wraps an engine. client may be nil for local play.
func NewController(engine *game.Engine, client *network.GameClient) *Controller {
	return &Controller{
		engine: engine,
		client: client,
	}
}

// Start schedules the 60 Hz engine tick and the 10 Hz snapshot send.
func (c *Controller) Start() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.started {
		return
	}
	c.started = true

	c.timers = timer.NewManager(timerResolution)
	c.tickTimerID = c.timers.AddTimer(TickInterval, TickInterval, c.tick)
	c.sendTimerID = c.timers.AddTimer(SendInterval, SendInterval, c.sendSnapshot)
}

// Stop halts both cadences. Idempotent.
func (c *Controller) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.started {
		return
	}
	c.started = false
	c.timers.Stop()
}

func (c *Controller) tick() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.engine.Update()

	if c.engine.GameOver && !c.gameOverSent && c.client != nil && c.client.Connected() {
		if err := c.client.SendGameOver(c.engine.Score); err != nil {
			logger.Log.Warnf("Sending game over failed: %v", err)
		}
		c.gameOverSent = true
	}
}

// sendSnapshot mirrors the local state to the relay. A send failure only
// degrades to single-player; the simulation keeps running.
func (c *Controller) sendSnapshot() {
	if c.client == nil || !c.client.Connected() {
		return
	}

	c.mutex.Lock()
	snapshot := c.engine.Snapshot()
	c.mutex.Unlock()

	if err := c.client.SendStateUpdate(snapshot); err != nil {
		logger.Log.Warnf("Snapshot send failed, continuing locally: %v", err)
	}
}

// Input facade: raw input events map 1:1 onto these calls and never
// bypass the engine's rules.

func (c *Controller) MoveLeft() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.MoveLeft()
}

func (c *Controller) MoveRight() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.MoveRight()
}

func (c *Controller) MoveDown() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.MoveDown()
}

func (c *Controller) RotateClockwise() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.RotateClockwise()
}

func (c *Controller) RotateCounterClockwise() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.RotateCounterClockwise()
}

func (c *Controller) HardDrop() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.HardDrop()
}

func (c *Controller) Hold() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.Hold()
}

func (c *Controller) TogglePause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.engine.TogglePause()
}

// Reset starts a fresh playthrough and re-arms the game-over report.
func (c *Controller) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.engine.Reset()
	c.gameOverSent = false
}

// Snapshot returns the local state for rendering. The renderer must not
// mutate it; it receives a deep copy.
func (c *Controller) Snapshot() game.Snapshot {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.Snapshot()
}

// GameOver reports whether the local playthrough has ended.
func (c *Controller) GameOver() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.engine.GameOver
}

// OpponentState returns the latest mirrored opponent snapshot, if any.
func (c *Controller) OpponentState() (string, *game.Snapshot) {
	if c.client == nil {
		return "", nil
	}
	return c.client.OpponentState()
}
