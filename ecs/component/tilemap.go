package component

// Tilemap is a grid of solid cells anchored at the entity transform. Row 0 is
// the bottom row. Any non-zero tile is solid.
type Tilemap struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	TileSize float64 `yaml:"tile_size"`
	Tiles    []int   `yaml:"tiles"`
	// Merge joins runs of solid cells into larger rectangles.
	Merge bool `yaml:"merge"`
}

func (t *Tilemap) Solid(col, row int) bool {
	if t == nil || col < 0 || row < 0 || col >= t.Width || row >= t.Height {
		return false
	}
	i := row*t.Width + col
	return i < len(t.Tiles) && t.Tiles[i] != 0
}
