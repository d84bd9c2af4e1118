package game

// Board dimensions never change after construction.
const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Board is the 10x20 playfield. A cell holds a placed piece's color, or
// "" when empty. The board is mutated only by Place, ClearLines and Reset;
// it is owned by a single Engine and does no locking of its own.
type Board struct {
	grid [][]string
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// IsValidPosition reports whether piece can sit at anchor (x, y). Columns
// must stay inside [0, width) and rows below height. Rows above the top of
// the grid are allowed (pieces spawn partly off-screen) and never checked
// against occupancy.
func (b *Board) IsValidPosition(p Piece, x, y int) bool {
	for _, cell := range p.Cells() {
		row := y + cell.Row
		col := x + cell.Col

		if col < 0 || col >= BoardWidth {
			return false
		}
		if row >= BoardHeight {
			return false
		}
		if row < 0 {
			continue
		}
		if b.grid[row][col] != "" {
			return false
		}
	}
	return true
}

// Place writes the piece's color into every occupied cell that falls
// inside the grid. Cells above the top are dropped.
func (b *Board) Place(p Piece, x, y int) {
	color := p.Color()
	for _, cell := range p.Cells() {
		row := y + cell.Row
		col := x + cell.Col
		if row >= 0 && row < BoardHeight && col >= 0 && col < BoardWidth {
			b.grid[row][col] = color
		}
	}
}

// ClearLines removes every complete row in one pass, keeping the relative
// order of the surviving rows, and inserts an equal number of empty rows
// at the top. Returns the number of rows cleared.
func (b *Board) ClearLines() int {
	var complete []int
	for row := 0; row < BoardHeight; row++ {
		full := true
		for col := 0; col < BoardWidth; col++ {
			if b.grid[row][col] == "" {
				full = false
				break
			}
		}
		if full {
			complete = append(complete, row)
		}
	}

	// Remove by original index, highest first, so earlier removals do not
	// shift the rows still pending removal.
	for i := len(complete) - 1; i >= 0; i-- {
		row := complete[i]
		b.grid = append(b.grid[:row], b.grid[row+1:]...)
	}
	for range complete {
		b.grid = append([][]string{make([]string, BoardWidth)}, b.grid...)
	}

	return len(complete)
}

// IsGameOver reports whether any cell in the top two rows is occupied.
// Checked only right after a lock, not continuously.
func (b *Board) IsGameOver() bool {
	for row := 0; row < 2; row++ {
		for col := 0; col < BoardWidth; col++ {
			if b.grid[row][col] != "" {
				return true
			}
		}
	}
	return false
}

// DropPosition returns the lowest y the piece can reach from (x, y).
func (b *Board) DropPosition(p Piece, x, y int) int {
	dropY := y
	for b.IsValidPosition(p, x, dropY+1) {
		dropY++
	}
	return dropY
}

// Snapshot returns a deep copy of the grid for serialization.
func (b *Board) Snapshot() [][]string {
	grid := make([][]string, BoardHeight)
	for row := range b.grid {
		grid[row] = make([]string, BoardWidth)
		copy(grid[row], b.grid[row])
	}
	return grid
}

// Reset empties every cell.
func (b *Board) Reset() {
	b.grid = make([][]string, BoardHeight)
	for row := range b.grid {
		b.grid[row] = make([]string, BoardWidth)
	}
}
