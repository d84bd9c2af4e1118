package game

import (
	"testing"
)

func fillRow(b *Board, row int) {
	for col := 0; col < BoardWidth; col++ {
		b.grid[row][col] = "#FFFFFF"
	}
}

func TestBoard_IsValidPosition(t *testing.T) {
	b := NewBoard()
	p := NewPiece(KindO) // occupies cols 1-2, rows 0-1 of its frame

	if !b.IsValidPosition(p, 4, 0) {
		t.Error("piece inside an empty board should be valid")
	}
	if !b.IsValidPosition(p, 4, -1) {
		t.Error("rows above the grid are allowed during spawn")
	}
	if b.IsValidPosition(p, -2, 0) {
		t.Error("piece crossing the left wall should be invalid")
	}
	if b.IsValidPosition(p, BoardWidth-2, 0) {
		t.Error("piece crossing the right wall should be invalid")
	}
	if b.IsValidPosition(p, 4, BoardHeight-1) {
		t.Error("piece crossing the floor should be invalid")
	}

	b.grid[1][5] = "#FF0000"
	if b.IsValidPosition(p, 4, 0) {
		t.Error("piece overlapping an occupied cell should be invalid")
	}
}

func TestBoard_PlaceDropsCellsAboveTop(t *testing.T) {
	b := NewBoard()
	p := Piece{Kind: KindI, Rotation: 1} // vertical I, col 2, rows 0-3

	b.Place(p, 0, -2)

	occupied := 0
	for row := 0; row < BoardHeight; row++ {
		for col := 0; col < BoardWidth; col++ {
			if b.grid[row][col] != "" {
				occupied++
			}
		}
	}
	if occupied != 2 {
		t.Fatalf("expected only the 2 in-bounds cells to be written, got %d", occupied)
	}
}

func TestBoard_ClearLines(t *testing.T) {
	b := NewBoard()

	fillRow(b, 0)
	fillRow(b, 5)
	fillRow(b, 19)

	// Partial rows carry markers so we can track their relative order.
	b.grid[1][3] = "#AA0001"
	b.grid[4][7] = "#AA0004"
	b.grid[18][0] = "#AA0018"

	cleared := b.ClearLines()
	if cleared != 3 {
		t.Fatalf("expected 3 cleared lines, got %d", cleared)
	}

	for row := 0; row < 3; row++ {
		for col := 0; col < BoardWidth; col++ {
			if b.grid[row][col] != "" {
				t.Fatalf("expected top 3 rows empty, found cell at (%d,%d)", row, col)
			}
		}
	}

	// Rows 1-4 slide behind the 3 inserted rows, 6-18 compact below them.
	if b.grid[3][3] != "#AA0001" {
		t.Error("row 1 marker should land on row 3")
	}
	if b.grid[6][7] != "#AA0004" {
		t.Error("row 4 marker should land on row 6")
	}
	if b.grid[19][0] != "#AA0018" {
		t.Error("row 18 marker should land on row 19")
	}
}

func TestBoard_ClearLinesNoneComplete(t *testing.T) {
	b := NewBoard()
	b.grid[10][0] = "#FF0000"

	if cleared := b.ClearLines(); cleared != 0 {
		t.Fatalf("expected 0 cleared lines, got %d", cleared)
	}
	if b.grid[10][0] != "#FF0000" {
		t.Error("partial rows must be untouched")
	}
}

func TestBoard_IsGameOver(t *testing.T) {
	b := NewBoard()
	if b.IsGameOver() {
		t.Error("empty board is not game over")
	}

	b.grid[2][4] = "#FF0000"
	if b.IsGameOver() {
		t.Error("occupancy below the top 2 rows is not game over")
	}

	b.grid[1][4] = "#FF0000"
	if !b.IsGameOver() {
		t.Error("occupancy in the top 2 rows is game over")
	}
}

func TestBoard_DropPositionLandsOnFloor(t *testing.T) {
	for _, kind := range Kinds {
		b := NewBoard()
		p := NewPiece(kind)

		x := BoardWidth/2 - 2
		landing := b.DropPosition(p, x, 0)

		lowest := 0
		for _, cell := range p.Cells() {
			if cell.Row > lowest {
				lowest = cell.Row
			}
		}

		if landing+lowest != BoardHeight-1 {
			t.Errorf("%s: lowest cell should rest on row %d, got %d", kind, BoardHeight-1, landing+lowest)
		}
	}
}

func TestBoard_Reset(t *testing.T) {
	b := NewBoard()
	fillRow(b, 10)

	b.Reset()

	for row := 0; row < BoardHeight; row++ {
		for col := 0; col < BoardWidth; col++ {
			if b.grid[row][col] != "" {
				t.Fatal("reset board must be empty")
			}
		}
	}
}
