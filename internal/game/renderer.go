package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/assets"
	"streamworld/internal/engine"
	"streamworld/internal/spatial"
	"streamworld/internal/world"
)

// Renderer draws the resident window: surfaces as filled polygons with
// outlined edges and bodies as spheres. Anything outside the view frustum
// is skipped.
type Renderer struct {
	Palette    assets.Palette
	ShowWindow bool

	frustum Frustum

	// Per-frame counters
	Drawn  int
	Culled int
}

func NewRenderer(p assets.Palette) *Renderer {
	return &Renderer{Palette: p, ShowWindow: true}
}

// Draw renders w from cam. alpha is the loop's accumulator fraction; bodies
// are extrapolated along their velocity by alpha steps of dt.
func (r *Renderer) Draw(w *world.World, cam rl.Camera3D, aspect, alpha, dt float32) {
	r.frustum = ExtractFrustum(cam, aspect)
	r.Drawn, r.Culled = 0, 0

	for _, e := range w.Surfaces() {
		s := e.Surface
		if !r.frustum.ContainsAABB(s.Bounds) {
			r.Culled++
			continue
		}
		color := r.Palette.Surface
		if s.Floor {
			color = r.Palette.Floor
		}
		r.drawSurface(s, color)
		r.Drawn++
	}

	for _, e := range w.Bodies() {
		b := e.Body
		pos := b.Position
		if !b.Dead() {
			pos = rl.Vector3Add(pos, rl.Vector3Scale(b.Velocity, alpha*dt))
		}
		if !r.frustum.ContainsSphere(pos, b.Radius) {
			r.Culled++
			continue
		}
		color := r.Palette.BodyColor(e)
		if b.Dead() {
			rl.DrawSphereWires(pos, b.Radius, 8, 8, color)
		} else {
			rl.DrawSphere(pos, b.Radius, color)
		}
		r.Drawn++
	}

	if r.ShowWindow {
		r.drawWindow(w)
	}
}

// drawSurface fans the footprint into triangles. Both windings are drawn so
// the polygon shows from either side.
func (r *Renderer) drawSurface(s *engine.Surface, color rl.Color) {
	pts := s.WorldFootprint()
	if len(pts) < 3 {
		return
	}
	for i := 1; i < len(pts)-1; i++ {
		rl.DrawTriangle3D(pts[0], pts[i], pts[i+1], color)
		rl.DrawTriangle3D(pts[0], pts[i+1], pts[i], color)
	}
	for i := range pts {
		rl.DrawLine3D(pts[i], pts[(i+1)%len(pts)], r.Palette.Edge)
	}
}

// drawWindow outlines the active window just above z = 0.
func (r *Renderer) drawWindow(w *world.World) {
	win := w.Window()
	if win.Empty() {
		return
	}
	size := w.Config.ChunkSize
	lo := spatial.ChunkBounds(engine.ChunkCoord{X: win.MinX, Y: win.MinY}, size, 0.02, 0.02)
	hi := spatial.ChunkBounds(engine.ChunkCoord{X: win.MaxX - 1, Y: win.MaxY - 1}, size, 0.02, 0.02)
	corners := []rl.Vector3{
		lo.Min,
		{X: hi.Max.X, Y: lo.Min.Y, Z: lo.Min.Z},
		hi.Max,
		{X: lo.Min.X, Y: hi.Max.Y, Z: lo.Min.Z},
	}
	for i := range corners {
		rl.DrawLine3D(corners[i], corners[(i+1)%4], rl.Yellow)
	}
}
