package levels

import "testing"

func TestLoadLevelFromFS(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"with_extension", "pit.json", false},
		{"without_extension", "pit", false},
		{"sandbox", "sandbox", false},
		{"missing", "nope.json", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lvl, err := LoadLevelFromFS(tc.file)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tc.file)
				}
				return
			}
			if err != nil {
				t.Fatalf("load %s: %v", tc.file, err)
			}
			if lvl.Width <= 0 || lvl.Height <= 0 {
				t.Fatalf("unexpected size %dx%d", lvl.Width, lvl.Height)
			}
		})
	}
}

func TestTilemapFlipsRowsAndSkipsDecorLayers(t *testing.T) {
	lvl, err := LoadLevelFromFS("pit.json")
	if err != nil {
		t.Fatal(err)
	}
	tm := lvl.Tilemap(0, false)
	if tm.TileSize != 32 {
		t.Fatalf("expected level tile size 32, got %v", tm.TileSize)
	}

	want := [][]bool{
		{true, true, true, true},   // bottom row
		{true, false, false, true}, // middle
		{true, false, false, true}, // top; decor tile at col 2 ignored
	}
	for row, cols := range want {
		for col, solid := range cols {
			if got := tm.Solid(col, row); got != solid {
				t.Fatalf("tile (%d,%d): expected solid=%v, got %v", col, row, solid, got)
			}
		}
	}

	if got := lvl.Tilemap(16, true); got.TileSize != 16 || !got.Merge {
		t.Fatalf("override not applied: %+v", got)
	}
}

func TestEntityPosition(t *testing.T) {
	lvl, err := LoadLevelFromFS("pit.json")
	if err != nil {
		t.Fatal(err)
	}
	x, y := lvl.EntityPosition(lvl.Entities[0], 0)
	// Tile (1,1) from the top of a three-row level is the middle row.
	if x != 48 || y != 48 {
		t.Fatalf("expected (48,48), got (%v,%v)", x, y)
	}
}

func TestValidateRejectsShortLayers(t *testing.T) {
	lvl := &Level{Width: 2, Height: 2, Layers: [][]int{{1, 1, 1}}}
	if err := lvl.validate(); err == nil {
		t.Fatal("expected error for short layer")
	}
}
