package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/collision"
	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/component"
	"github.com/milk9111/collide2d/geom"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
	debugArrowScale     = 8
)

// DebugCamera maps world space (y up) to screen space (y down).
type DebugCamera struct {
	X, Y float64
	Zoom float64
}

func (c DebugCamera) toScreen(screen *ebiten.Image, v cp.Vector) (float32, float32) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	h := float64(screen.Bounds().Dy())
	return float32((v.X - c.X) * zoom), float32(h - (v.Y-c.Y)*zoom)
}

// DrawPhysicsDebug outlines every collected shape and marks each record's
// contact vertex with its push-out direction.
func DrawPhysicsDebug(w *ecs.World, cs *CollisionSystem, screen *ebiten.Image, cam DebugCamera) {
	if w == nil || cs == nil || screen == nil {
		return
	}
	set := cs.Shapes()
	if set == nil {
		return
	}

	d := &physicsDebugDrawer{screen: screen, cam: cam}
	for _, s := range set.Shapes {
		d.drawShape(s, shapeColor(w, set, s))
	}
	for _, rec := range cs.Records() {
		d.drawRecord(rec)
	}

	stats := cs.Stats()
	text := fmt.Sprintf("shapes: %d\ntests: %d\ncollisions: %d\nrecords: %d",
		stats.Shapes, stats.Tests, stats.Collisions, len(cs.Records()))
	if cs.Degraded() {
		text += "\nbroad phase unavailable"
	}
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

func shapeColor(w *ecs.World, set *ShapeSet, s *geom.Shape) color.Color {
	ref := set.Colliders[s.Collider]
	if !ref.Collider.Physics {
		return colornames.Gold
	}
	rb, ok := ecs.Get(w, ref.Entity, component.RigidBodyComponent.Kind())
	switch {
	case !ok:
		return colornames.Lightgrey
	case rb.Dynamic():
		return colornames.Limegreen
	default:
		return colornames.Steelblue
	}
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	cam    DebugCamera
}

func (d *physicsDebugDrawer) drawShape(s *geom.Shape, clr color.Color) {
	switch s.Kind {
	case geom.KindBall:
		d.drawCircle(s.Center, s.Radius, clr)
	case geom.KindEdge:
		d.drawLine(s.Vertices[0], s.Vertices[1], clr)
	default:
		d.drawPolygon(s.Vertices, clr)
	}
}

func (d *physicsDebugDrawer) drawRecord(rec collision.Record) {
	c := rec.Resolution.Contact
	d.drawDot(c, colornames.Red)
	tip := c.Add(rec.Resolution.Direction.Mult(math.Max(rec.Resolution.Penetration, 1) * debugArrowScale))
	d.drawLine(c, tip, colornames.Orangered)
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr color.Color) {
	x1, y1 := d.cam.toScreen(d.screen, a)
	x2, y2 := d.cam.toScreen(d.screen, b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, clr, true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr color.Color) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr color.Color) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func (d *physicsDebugDrawer) drawDot(pos cp.Vector, clr color.Color) {
	half := debugDotSize / 2.0
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, clr)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, clr)
}
