package game

import (
	"reflect"
	"testing"
)

func TestPiece_CellsDeterministic(t *testing.T) {
	for _, kind := range Kinds {
		for rotation := 0; rotation < 4; rotation++ {
			p := Piece{Kind: kind, Rotation: rotation}

			first := p.Cells()
			second := p.Cells()

			if len(first) != 4 {
				t.Errorf("%s rotation %d: expected 4 occupied cells, got %d", kind, rotation, len(first))
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("%s rotation %d: Cells is not deterministic", kind, rotation)
			}

			for _, cell := range first {
				if cell.Row < 0 || cell.Row > 3 || cell.Col < 0 || cell.Col > 3 {
					t.Errorf("%s rotation %d: cell %v outside 4x4 frame", kind, rotation, cell)
				}
			}
		}
	}
}

func TestPiece_RotationWraps(t *testing.T) {
	p := NewPiece(KindT)

	for i := 1; i <= 4; i++ {
		p.RotateClockwise()
		if p.Rotation != i%4 {
			t.Fatalf("after %d clockwise rotations expected state %d, got %d", i, i%4, p.Rotation)
		}
	}

	p.RotateCounterClockwise()
	if p.Rotation != 3 {
		t.Fatalf("expected counter-clockwise from 0 to wrap to 3, got %d", p.Rotation)
	}
}

func TestPiece_OPieceNeverChanges(t *testing.T) {
	p := NewPiece(KindO)
	base := p.Cells()

	for i := 0; i < 3; i++ {
		p.RotateClockwise()
		if !reflect.DeepEqual(p.Cells(), base) {
			t.Fatalf("O piece cells changed in rotation state %d", p.Rotation)
		}
	}
}

func TestPiece_CopyIsIndependent(t *testing.T) {
	p := NewPiece(KindJ)
	copied := p

	copied.RotateClockwise()

	if p.Rotation != 0 {
		t.Error("rotating a copy must not affect the original")
	}
	if copied.Rotation != 1 {
		t.Error("copy did not rotate")
	}
}

func TestNewPiece_InvalidKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewPiece to panic on an unknown kind")
		}
	}()
	NewPiece(Kind("Q"))
}
