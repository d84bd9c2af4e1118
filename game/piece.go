package game

import "fmt"

// Kind identifies one of the seven tetromino shapes.
type Kind string

const (
	KindI Kind = "I"
	KindO Kind = "O"
	KindT Kind = "T"
	KindS Kind = "S"
	KindZ Kind = "Z"
	KindJ Kind = "J"
	KindL Kind = "L"
)

// Kinds lists every spawnable piece kind.
var Kinds = []Kind{KindI, KindO, KindT, KindS, KindZ, KindJ, KindL}

// Colors maps each kind to the color written into board cells.
var Colors = map[Kind]string{
	KindI: "#00FFFF",
	KindO: "#FFFF00",
	KindT: "#800080",
	KindS: "#00FF00",
	KindZ: "#FF0000",
	KindJ: "#0000FF",
	KindL: "#FFA500",
}

type shape [4][4]uint8

// shapes holds the four rotation states of every kind inside a 4x4 frame.
// The O piece repeats a single state and never visually changes.
var shapes = map[Kind][4]shape{
	KindI: {
		{{0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}},
		{{0, 0, 0, 0}, {0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}},
	},
	KindO: {
		{{0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	},
	KindT: {
		{{0, 1, 0, 0}, {1, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {0, 1, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		{{0, 0, 0, 0}, {1, 1, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {1, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
	},
	KindS: {
		{{0, 1, 1, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 1, 0}, {0, 0, 0, 0}},
		{{0, 0, 0, 0}, {0, 1, 1, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}},
		{{1, 0, 0, 0}, {1, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
	},
	KindZ: {
		{{1, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 0, 1, 0}, {0, 1, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		{{0, 0, 0, 0}, {1, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {1, 1, 0, 0}, {1, 0, 0, 0}, {0, 0, 0, 0}},
	},
	KindJ: {
		{{1, 0, 0, 0}, {1, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 1, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		{{0, 0, 0, 0}, {1, 1, 1, 0}, {0, 0, 1, 0}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {0, 1, 0, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}},
	},
	KindL: {
		{{0, 0, 1, 0}, {1, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		{{0, 0, 0, 0}, {1, 1, 1, 0}, {1, 0, 0, 0}, {0, 0, 0, 0}},
		{{1, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
	},
}

// Cell is a (row, col) offset inside a piece's 4x4 bounding frame.
type Cell struct {
	Row int
	Col int
}

// Piece is a value object: kind plus rotation state. It carries no cell
// data of its own; occupied cells are derived from the shape table.
type Piece struct {
	Kind     Kind
	Rotation int
}

// NewPiece creates a piece in rotation state 0. An unknown kind is a
// programmer error and panics.
func NewPiece(kind Kind) Piece {
	if _, ok := shapes[kind]; !ok {
		panic(fmt.Sprintf("game: invalid piece kind %q", kind))
	}
	return Piece{Kind: kind}
}

// Color returns the cell color for this piece's kind.
func (p Piece) Color() string {
	return Colors[p.Kind]
}

// RotateClockwise advances the rotation state. Validity against the board
// is the board's job, not the piece's.
func (p *Piece) RotateClockwise() {
	p.Rotation = (p.Rotation + 1) % 4
}

// RotateCounterClockwise retreats the rotation state.
func (p *Piece) RotateCounterClockwise() {
	p.Rotation = (p.Rotation + 3) % 4
}

// Cells returns the occupied offsets for the current rotation state,
// deterministic for a given (kind, rotation).
func (p Piece) Cells() []Cell {
	s := shapes[p.Kind][p.Rotation]
	cells := make([]Cell, 0, 4)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if s[row][col] != 0 {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}
	return cells
}
