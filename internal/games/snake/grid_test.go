package snake

import (
	"errors"
	"math/rand"
	"testing"
)

func TestNewGeometry(t *testing.T) {
	tests := []struct {
		name               string
		w, h, px, py       int
		wantErr            bool
		wantCols, wantRows int
	}{
		{name: "exact fit", w: 40, h: 40, px: 10, py: 10, wantCols: 4, wantRows: 4},
		{name: "partial edge cells dropped", w: 1920, h: 1080, px: 75, py: 75, wantCols: 25, wantRows: 14},
		{name: "zero pitch x", w: 100, h: 100, px: 0, py: 10, wantErr: true},
		{name: "negative pitch y", w: 100, h: 100, px: 10, py: -1, wantErr: true},
		{name: "screen smaller than a cell", w: 5, h: 100, px: 10, py: 10, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGeometry(tc.w, tc.h, tc.px, tc.py)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Fatalf("Expected ErrInvalidGeometry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewGeometry() failed: %v", err)
			}
			if g.Cols() != tc.wantCols || g.Rows() != tc.wantRows {
				t.Errorf("Expected %dx%d grid, got %dx%d", tc.wantCols, tc.wantRows, g.Cols(), g.Rows())
			}
			if g.CellCount() != tc.wantCols*tc.wantRows {
				t.Errorf("Expected %d cells, got %d", tc.wantCols*tc.wantRows, g.CellCount())
			}
		})
	}
}

func TestGeometryInBounds(t *testing.T) {
	// 100 px wide with a 30 px pitch: three whole columns, x=90 is outside.
	g, err := NewGeometry(100, 60, 30, 30)
	if err != nil {
		t.Fatalf("NewGeometry() failed: %v", err)
	}

	tests := []struct {
		cell Cell
		want bool
	}{
		{Cell{0, 0}, true},
		{Cell{60, 30}, true},
		{Cell{90, 0}, false},
		{Cell{0, 60}, false},
		{Cell{-30, 0}, false},
		{Cell{0, -30}, false},
	}
	for _, tc := range tests {
		if got := g.InBounds(tc.cell); got != tc.want {
			t.Errorf("InBounds(%v) = %v, expected %v", tc.cell, got, tc.want)
		}
	}
}

func TestGeometryRandomCell(t *testing.T) {
	g, err := NewGeometry(50, 30, 10, 10)
	if err != nil {
		t.Fatalf("NewGeometry() failed: %v", err)
	}
	rng := rand.New(rand.NewSource(7))

	seen := make(map[Cell]bool)
	for _i := 0; _i < 2000; _i++ {
		c := g.RandomCell(rng)
		if !g.InBounds(c) {
			t.Fatalf("RandomCell() returned out of bounds cell %v", c)
		}
		if c.X%10 != 0 || c.Y%10 != 0 {
			t.Fatalf("RandomCell() returned unaligned cell %v", c)
		}
		seen[c] = true
	}
	if len(seen) != g.CellCount() {
		t.Errorf("Expected every one of %d cells to be sampled, got %d", g.CellCount(), len(seen))
	}
}

func TestGeometryStepAndIndex(t *testing.T) {
	g, err := NewGeometry(40, 40, 10, 20)
	if err != nil {
		t.Fatalf("NewGeometry() failed: %v", err)
	}

	start := g.CellAt(1, 1)
	tests := []struct {
		dir  Direction
		want Cell
	}{
		{DirUp, Cell{10, 0}},
		{DirDown, Cell{10, 40}},
		{DirLeft, Cell{0, 20}},
		{DirRight, Cell{20, 20}},
	}
	for _, tc := range tests {
		if got := g.Step(start, tc.dir); got != tc.want {
			t.Errorf("Step(%v, %v) = %v, expected %v", start, tc.dir, got, tc.want)
		}
	}

	if col, row := g.Index(Cell{-10, 20}); col != -1 || row != 1 {
		t.Errorf("Index(-10,20) = (%d,%d), expected (-1,1)", col, row)
	}
}
