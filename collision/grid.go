package collision

import (
	"context"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/geom"
)

type cellKey struct {
	x, y int
}

// Grid is a uniform spatial hash over shape bounding boxes. It is rebuilt
// wholesale every tick; there is no incremental update.
type Grid struct {
	// CellSize is the edge length of one cell. Zero picks a size from the
	// shapes passed to Rebuild.
	CellSize float64

	size  float64
	cells map[cellKey][]int
	ready bool
}

func NewGrid(cellSize float64) *Grid {
	return &Grid{CellSize: cellSize}
}

// Rebuild clears the grid and inserts every shape into each cell its
// bounding box overlaps.
func (g *Grid) Rebuild(shapes []*geom.Shape) {
	if g == nil {
		return
	}
	g.size = g.CellSize
	if g.size <= 0 {
		g.size = autoCellSize(shapes)
	}
	if g.cells == nil {
		g.cells = make(map[cellKey][]int)
	} else {
		clear(g.cells)
	}

	for _, s := range shapes {
		if s == nil {
			continue
		}
		x0, y0, x1, y1 := g.span(s.BB)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				k := cellKey{x, y}
				g.cells[k] = append(g.cells[k], s.ID)
			}
		}
	}
	g.ready = true
}

// Query returns the sorted, de-duplicated ids of every shape inserted into a
// cell that bb overlaps.
func (g *Grid) Query(bb cp.BB) []int {
	if g == nil || !g.ready {
		return nil
	}
	x0, y0, x1, y1 := g.span(bb)
	seen := make(map[int]struct{})
	var out []int
	add := func(ids []int) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	// Wide queries walk the occupied cells instead of the covered range.
	if area := float64(x1-x0+1) * float64(y1-y0+1); area > float64(len(g.cells)) {
		for k, ids := range g.cells {
			if k.x >= x0 && k.x <= x1 && k.y >= y0 && k.y <= y1 {
				add(ids)
			}
		}
	} else {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				add(g.cells[cellKey{x, y}])
			}
		}
	}
	slices.Sort(out)
	return out
}

// Ready reports whether at least one rebuild has completed.
func (g *Grid) Ready() bool {
	return g != nil && g.ready
}

// Size returns the cell size used by the last rebuild.
func (g *Grid) Size() float64 {
	if g == nil {
		return 0
	}
	return g.size
}

// Cells returns the number of occupied cells.
func (g *Grid) Cells() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Reset drops all content; Query returns nothing until the next Rebuild.
func (g *Grid) Reset() {
	if g == nil {
		return
	}
	clear(g.cells)
	g.ready = false
}

func (g *Grid) span(bb cp.BB) (x0, y0, x1, y1 int) {
	return cellCoord(bb.L, g.size), cellCoord(bb.B, g.size), cellCoord(bb.R, g.size), cellCoord(bb.T, g.size)
}

const maxCell = 1 << 30

func cellCoord(v, size float64) int {
	c := math.Floor(v / size)
	switch {
	case math.IsNaN(c):
		return 0
	case c > maxCell:
		return maxCell
	case c < -maxCell:
		return -maxCell
	}
	return int(c)
}

// autoCellSize picks twice the mean of the largest box extent so that a
// typical shape touches at most a handful of cells.
func autoCellSize(shapes []*geom.Shape) float64 {
	var sum float64
	var n int
	for _, s := range shapes {
		if s == nil {
			continue
		}
		sum += math.Max(s.BB.R-s.BB.L, s.BB.T-s.BB.B)
		n++
	}
	if n == 0 || sum <= 0 {
		return 1
	}
	return math.Max(1, 2*sum/float64(n))
}

// RebuildIndex implements BroadPhase on the calling goroutine.
func (g *Grid) RebuildIndex(_ context.Context, shapes []*geom.Shape) error {
	if g == nil {
		return ErrBroadPhaseUnavailable
	}
	g.Rebuild(shapes)
	return nil
}

func (g *Grid) Candidates(_ context.Context, bb cp.BB) ([]int, error) {
	if !g.Ready() {
		return nil, ErrBroadPhaseUnavailable
	}
	return g.Query(bb), nil
}
