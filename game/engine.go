package game

import (
	"math/rand"
	"time"
)

// Timing and scoring rules.
const (
	// LockDelay is the grace period after a piece can no longer descend
	// before it fuses to the board.
	LockDelay = 500 * time.Millisecond

	initialDropInterval = 1 * time.Second
	dropSpeedupPerLevel = 100 * time.Millisecond
	minimumDropInterval = 100 * time.Millisecond
	comboBonusPerLevel  = 50
	linesPerLevel       = 10
	queueMinLength      = 2
)

// scoreValues is the base award for clearing n lines in one lock.
var scoreValues = map[int]int{
	1: 100,
	2: 300,
	3: 500,
	4: 800,
}

// Engine is the aggregate root of one playthrough: it owns the board, the
// active piece, the queue and all counters, and enforces every game rule.
// It must only ever be driven from one logical thread of control; callers
// that share it across goroutines serialize access themselves.
type Engine struct {
	Board *Board

	CurrentPiece *Piece
	PieceX       int
	PieceY       int
	NextPieces   []Piece
	HoldPiece    *Piece
	CanHold      bool

	Score        int
	LinesCleared int
	Level        int
	Combo        int

	GameOver bool
	Paused   bool

	lastDrop  time.Time
	lockTimer *time.Time

	rng *rand.Rand
	now func() time.Time
}

// NewEngine creates a fresh game and spawns the first piece.
func NewEngine() *Engine {
	return NewEngineWithSeed(time.Now().UnixNano())
}

// NewEngineWithSeed creates a game with a deterministic piece sequence.
func NewEngineWithSeed(seed int64) *Engine {
	e := &Engine{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
	e.init()
	return e
}

func (e *Engine) init() {
	e.Board = NewBoard()
	e.Score = 0
	e.LinesCleared = 0
	e.Level = 1
	e.Combo = 0
	e.GameOver = false
	e.Paused = false
	e.CurrentPiece = nil
	e.NextPieces = nil
	e.HoldPiece = nil
	e.CanHold = true
	e.lastDrop = e.now()
	e.lockTimer = nil

	e.fillPieceQueue()
	e.spawnPiece()
}

// Reset discards the current playthrough and starts a new one. The piece
// sequence continues from the same RNG.
func (e *Engine) Reset() {
	e.init()
}

func (e *Engine) fillPieceQueue() {
	for len(e.NextPieces) < queueMinLength {
		kind := Kinds[e.rng.Intn(len(Kinds))]
		e.NextPieces = append(e.NextPieces, NewPiece(kind))
	}
}

// spawnPiece pops the queue head as the active piece, centered at the top
// row. If the spawn position is already blocked the game is over.
func (e *Engine) spawnPiece() {
	if len(e.NextPieces) == 0 {
		e.fillPieceQueue()
	}

	piece := e.NextPieces[0]
	e.NextPieces = e.NextPieces[1:]
	e.fillPieceQueue()

	e.CurrentPiece = &piece
	e.PieceX = BoardWidth/2 - 2
	e.PieceY = 0

	if !e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX, e.PieceY) {
		e.GameOver = true
	}

	e.CanHold = true
	e.lockTimer = nil
}

func (e *Engine) actionsBlocked() bool {
	return e.GameOver || e.Paused || e.CurrentPiece == nil
}

// MoveLeft shifts the active piece one column left. Rejection is a normal
// outcome, not an error.
func (e *Engine) MoveLeft() bool {
	if e.actionsBlocked() {
		return false
	}
	if e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX-1, e.PieceY) {
		e.PieceX--
		return true
	}
	return false
}

// MoveRight shifts the active piece one column right.
func (e *Engine) MoveRight() bool {
	if e.actionsBlocked() {
		return false
	}
	if e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX+1, e.PieceY) {
		e.PieceX++
		return true
	}
	return false
}

// MoveDown performs a soft drop. A successful descent clears any pending
// lock timer; a failed one starts it.
func (e *Engine) MoveDown() bool {
	if e.actionsBlocked() {
		return false
	}
	if e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX, e.PieceY+1) {
		e.PieceY++
		e.lockTimer = nil
		return true
	}
	if e.lockTimer == nil {
		t := e.now()
		e.lockTimer = &t
	}
	return false
}

// RotateClockwise rotates the active piece, probing wall-kick offsets when
// the in-place rotation does not fit. On total failure the rotation is
// reverted and false returned.
func (e *Engine) RotateClockwise() bool {
	if e.actionsBlocked() {
		return false
	}
	e.CurrentPiece.RotateClockwise()
	if !e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX, e.PieceY) {
		if !e.tryWallKicks() {
			e.CurrentPiece.RotateCounterClockwise()
			return false
		}
	}
	return true
}

// RotateCounterClockwise is the mirror of RotateClockwise.
func (e *Engine) RotateCounterClockwise() bool {
	if e.actionsBlocked() {
		return false
	}
	e.CurrentPiece.RotateCounterClockwise()
	if !e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX, e.PieceY) {
		if !e.tryWallKicks() {
			e.CurrentPiece.RotateClockwise()
			return false
		}
	}
	return true
}

// kickOffsets are probed in order against the new rotation; the first
// valid offset wins.
var kickOffsets = [][2]int{{1, 0}, {-1, 0}, {0, -1}, {2, 0}, {-2, 0}}

func (e *Engine) tryWallKicks() bool {
	for _, off := range kickOffsets {
		if e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX+off[0], e.PieceY+off[1]) {
			e.PieceX += off[0]
			e.PieceY += off[1]
			return true
		}
	}
	return false
}

// HardDrop advances the piece to the lowest valid row and locks it
// immediately, bypassing the lock delay. Returns the distance dropped.
func (e *Engine) HardDrop() int {
	if e.actionsBlocked() {
		return 0
	}
	distance := 0
	for e.Board.IsValidPosition(*e.CurrentPiece, e.PieceX, e.PieceY+1) {
		e.PieceY++
		distance++
	}
	e.lockPiece()
	return distance
}

// Hold stashes the active piece. The first hold spawns the next queued
// piece; later holds swap with the stashed one. Both sides of a swap are
// rebuilt at rotation 0 and the swapped-in piece re-centers at the spawn
// position. Holding is allowed once per spawn.
func (e *Engine) Hold() bool {
	if e.actionsBlocked() || !e.CanHold {
		return false
	}

	if e.HoldPiece == nil {
		held := NewPiece(e.CurrentPiece.Kind)
		e.HoldPiece = &held
		e.spawnPiece()
	} else {
		swappedIn := NewPiece(e.HoldPiece.Kind)
		held := NewPiece(e.CurrentPiece.Kind)
		e.HoldPiece = &held
		e.CurrentPiece = &swappedIn
		e.PieceX = BoardWidth/2 - 2
		e.PieceY = 0
	}

	e.CanHold = false
	return true
}

// lockPiece fuses the active piece to the board, scores any cleared
// lines, then either ends the game or spawns the next piece.
func (e *Engine) lockPiece() {
	e.Board.Place(*e.CurrentPiece, e.PieceX, e.PieceY)

	lines := e.Board.ClearLines()
	if lines > 0 {
		e.applyScore(lines)
		e.Combo++
	} else {
		e.Combo = 0
	}

	if e.Board.IsGameOver() {
		e.GameOver = true
	} else {
		e.spawnPiece()
	}
}

// applyScore awards (base + combo*50) * level using the combo count from
// before this lock, then recomputes the level. Counters never decrease.
func (e *Engine) applyScore(lines int) {
	base := scoreValues[lines]
	e.Score += (base + e.Combo*comboBonusPerLevel) * e.Level
	e.LinesCleared += lines

	if newLevel := e.LinesCleared/linesPerLevel + 1; newLevel > e.Level {
		e.Level = newLevel
	}
}

// DropInterval returns the current gravity interval, floored so it never
// reaches zero at high levels.
func (e *Engine) DropInterval() time.Duration {
	interval := initialDropInterval - time.Duration(e.Level-1)*dropSpeedupPerLevel
	if interval < minimumDropInterval {
		return minimumDropInterval
	}
	return interval
}

// Update advances timers: it fires a pending lock once the piece has
// rested for LockDelay, otherwise applies gravity when the drop interval
// has elapsed. No-op while paused or after game over.
func (e *Engine) Update() {
	if e.GameOver || e.Paused {
		return
	}

	now := e.now()

	if e.lockTimer != nil {
		if now.Sub(*e.lockTimer) >= LockDelay {
			e.lockPiece()
			return
		}
	}

	if now.Sub(e.lastDrop) >= e.DropInterval() {
		e.MoveDown()
		e.lastDrop = now
	}
}

// GhostY returns the row the active piece would land on if hard dropped,
// for preview rendering.
func (e *Engine) GhostY() int {
	if e.CurrentPiece == nil {
		return 0
	}
	return e.Board.DropPosition(*e.CurrentPiece, e.PieceX, e.PieceY)
}

// TogglePause flips the pause flag. Pause has no effect once the game is
// over.
func (e *Engine) TogglePause() {
	if !e.GameOver {
		e.Paused = !e.Paused
	}
}

// PieceState describes the falling piece inside a snapshot.
type PieceState struct {
	Type     string `json:"type"`
	Rotation int    `json:"rotation"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// Snapshot is the fully serialized visible state of one playthrough, as
// mirrored to peers.
type Snapshot struct {
	Board        [][]string `json:"board"`
	Score        int        `json:"score"`
	LinesCleared int        `json:"lines_cleared"`
	Level        int        `json:"level"`
	GameOver     bool       `json:"game_over"`
	CurrentPiece PieceState `json:"current_piece"`
	NextPieces   []string   `json:"next_pieces"`
	HoldPiece    *string    `json:"hold_piece"`
}

// Snapshot captures the current state for the wire.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Board:        e.Board.Snapshot(),
		Score:        e.Score,
		LinesCleared: e.LinesCleared,
		Level:        e.Level,
		GameOver:     e.GameOver,
		NextPieces:   make([]string, 0, len(e.NextPieces)),
	}

	if e.CurrentPiece != nil {
		s.CurrentPiece = PieceState{
			Type:     string(e.CurrentPiece.Kind),
			Rotation: e.CurrentPiece.Rotation,
			X:        e.PieceX,
			Y:        e.PieceY,
		}
	}
	for _, p := range e.NextPieces {
		s.NextPieces = append(s.NextPieces, string(p.Kind))
	}
	if e.HoldPiece != nil {
		kind := string(e.HoldPiece.Kind)
		s.HoldPiece = &kind
	}

	return s
}
