package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// AABB is an axis-aligned box. Intersects treats touching faces as overlap.
type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// SphereBounds is the box of half-extent r around center.
func SphereBounds(center rl.Vector3, r float32) AABB {
	ext := rl.Vector3{X: r, Y: r, Z: r}
	return AABB{
		Min: rl.Vector3Subtract(center, ext),
		Max: rl.Vector3Add(center, ext),
	}
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points ...rl.Vector3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	b := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.Extend(p)
	}
	return b
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// ContainsPoint reports whether p is inside or on the box.
func (a AABB) ContainsPoint(p rl.Vector3) bool {
	return a.Intersects(AABB{Min: p, Max: p})
}

// Extend grows the box to include p.
func (a AABB) Extend(p rl.Vector3) AABB {
	a.Min = rl.Vector3{X: min(a.Min.X, p.X), Y: min(a.Min.Y, p.Y), Z: min(a.Min.Z, p.Z)}
	a.Max = rl.Vector3{X: max(a.Max.X, p.X), Y: max(a.Max.Y, p.Y), Z: max(a.Max.Z, p.Z)}
	return a
}

// Union returns the box covering both a and b.
func (a AABB) Union(b AABB) AABB {
	return a.Extend(b.Min).Extend(b.Max)
}
