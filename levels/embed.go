package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/milk9111/collide2d/ecs/component"
)

//go:embed *.json
var LevelsFS embed.FS

// Level is a tile level as written by the level editor. Layers are flat
// row-major arrays with row 0 at the top.
type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  float64     `json:"tile_size,omitempty"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Entity places a prefab at a tile position (x right, y down from the top).
type Entity struct {
	Type  string         `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Props map[string]any `json:"props,omitempty"`
}

func LoadLevelFromFS(name string) (*Level, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if err := lvl.validate(); err != nil {
		return nil, fmt.Errorf("levels: %s: %w", name, err)
	}
	return &lvl, nil
}

func (l *Level) validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("layer %d has %d tiles, want %d", i, len(layer), l.Width*l.Height)
		}
	}
	return nil
}

// physicsLayer reports whether layer i collides. Levels without metadata
// treat every layer as solid.
func (l *Level) physicsLayer(i int) bool {
	if len(l.LayerMeta) == 0 {
		return true
	}
	return i < len(l.LayerMeta) && l.LayerMeta[i].Physics
}

// Tilemap flattens the physics layers into one solid grid with row 0 at the
// bottom, the way colliders expect it. tileSize overrides the level's own
// size when positive.
func (l *Level) Tilemap(tileSize float64, merge bool) *component.Tilemap {
	if l == nil {
		return nil
	}
	if tileSize <= 0 {
		tileSize = l.TileSize
	}
	tm := &component.Tilemap{
		Width:    l.Width,
		Height:   l.Height,
		TileSize: tileSize,
		Tiles:    make([]int, l.Width*l.Height),
		Merge:    merge,
	}
	for i, layer := range l.Layers {
		if !l.physicsLayer(i) {
			continue
		}
		for row := 0; row < l.Height; row++ {
			flipped := l.Height - 1 - row
			for col := 0; col < l.Width; col++ {
				if layer[row*l.Width+col] != 0 {
					tm.Tiles[flipped*l.Width+col] = 1
				}
			}
		}
	}
	return tm
}

// EntityPosition converts a level entity's tile position to world space,
// placing it at the centre of its tile.
func (l *Level) EntityPosition(e Entity, tileSize float64) (float64, float64) {
	if tileSize <= 0 {
		tileSize = l.TileSize
	}
	row := l.Height - 1 - e.Y
	return (float64(e.X) + 0.5) * tileSize, (float64(row) + 0.5) * tileSize
}
