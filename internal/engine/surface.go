package engine

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Surface is a static, finite, planar polygon. The plane is local z = 0 and
// the footprint is given in local XY. Surfaces never change after creation.
type Surface struct {
	ToWorld rl.Matrix
	ToLocal rl.Matrix

	Width     float32
	Height    float32
	Footprint []rl.Vector2

	// Normal is local +Z in world space.
	Normal rl.Vector3
	Bounds AABB

	// Floor surfaces are kept first in index cells.
	Floor bool
}

// RectFootprint is the rectangle (0,0)-(w,h).
func RectFootprint(w, h float32) []rl.Vector2 {
	return []rl.Vector2{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// NewSurface builds a surface from its local-to-world transform. A nil
// footprint means the full width x height rectangle.
func NewSurface(toWorld rl.Matrix, w, h float32, footprint []rl.Vector2) *Surface {
	if len(footprint) == 0 {
		footprint = RectFootprint(w, h)
	}
	s := &Surface{
		ToWorld:   toWorld,
		ToLocal:   rl.MatrixInvert(toWorld),
		Width:     w,
		Height:    h,
		Footprint: footprint,
	}

	origin := rl.Vector3Transform(rl.Vector3{}, toWorld)
	up := rl.Vector3Transform(rl.Vector3{Z: 1}, toWorld)
	s.Normal = rl.Vector3Normalize(rl.Vector3Subtract(up, origin))

	corners := make([]rl.Vector3, len(footprint))
	for i, p := range footprint {
		corners[i] = rl.Vector3Transform(rl.Vector3{X: p.X, Y: p.Y}, toWorld)
	}
	s.Bounds = BoundsOf(corners...)
	return s
}

// NewFloorSurface is a horizontal w x h rectangle with its minimum corner at
// origin, facing +Z.
func NewFloorSurface(origin rl.Vector3, w, h float32) *Surface {
	s := NewSurface(rl.MatrixTranslate(origin.X, origin.Y, origin.Z), w, h, nil)
	s.Floor = true
	return s
}

// NewWallSurface is a vertical length x height rectangle standing on base,
// running along heading (radians from +X in the XY plane). Its normal points
// to the left of the heading.
func NewWallSurface(base rl.Vector3, heading, length, height float32) *Surface {
	// Local X runs along the wall, local Y goes up, local Z is the normal.
	dx, dy := math32.Cos(heading), math32.Sin(heading)
	m := rl.Matrix{
		M0: dx, M4: 0, M8: -dy, M12: base.X,
		M1: dy, M5: 0, M9: dx, M13: base.Y,
		M2: 0, M6: 1, M10: 0, M14: base.Z,
		M15: 1,
	}
	return NewSurface(m, length, height, nil)
}

// Origin is the world position of the local origin.
func (s *Surface) Origin() rl.Vector3 {
	return rl.Vector3{X: s.ToWorld.M12, Y: s.ToWorld.M13, Z: s.ToWorld.M14}
}

// WorldFootprint returns the footprint corners in world space.
func (s *Surface) WorldFootprint() []rl.Vector3 {
	out := make([]rl.Vector3, len(s.Footprint))
	for i, p := range s.Footprint {
		out[i] = rl.Vector3Transform(rl.Vector3{X: p.X, Y: p.Y}, s.ToWorld)
	}
	return out
}
