package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// TransformPoint applies m to v, translation included.
func TransformPoint(m rl.Matrix, v rl.Vector3) rl.Vector3 {
	return rl.Vector3Transform(v, m)
}

// TransformDirection applies the rotation/scale part of m to v.
func TransformDirection(m rl.Matrix, v rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: m.M0*v.X + m.M4*v.Y + m.M8*v.Z,
		Y: m.M1*v.X + m.M5*v.Y + m.M9*v.Z,
		Z: m.M2*v.X + m.M6*v.Y + m.M10*v.Z,
	}
}

// PointInPolygon is the even-odd ray-crossing test. Points on the left and
// bottom edges of an axis-aligned rectangle count as inside, points on the
// right and top edges as outside.
func PointInPolygon(p rl.Vector2, poly []rl.Vector2) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// ClosestPointOnSegment returns the point of segment ab nearest to p.
func ClosestPointOnSegment(p, a, b rl.Vector2) rl.Vector2 {
	ab := rl.Vector2Subtract(b, a)
	lenSq := rl.Vector2DotProduct(ab, ab)
	if lenSq == 0 {
		return a
	}
	t := clamp(rl.Vector2DotProduct(rl.Vector2Subtract(p, a), ab)/lenSq, 0, 1)
	return rl.Vector2Add(a, rl.Vector2Scale(ab, t))
}

// closestOnBoundary returns the point of the polygon outline nearest to p and
// its squared distance.
func closestOnBoundary(p rl.Vector2, poly []rl.Vector2) (rl.Vector2, float32) {
	best := rl.Vector2{}
	bestSq := math32.Inf(1)
	j := len(poly) - 1
	for i := range poly {
		q := ClosestPointOnSegment(p, poly[j], poly[i])
		d := rl.Vector2Subtract(p, q)
		if sq := rl.Vector2DotProduct(d, d); sq < bestSq {
			best, bestSq = q, sq
		}
		j = i
	}
	return best, bestSq
}

// clamp restricts a value to a range
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func xy(v rl.Vector3) rl.Vector2 {
	return rl.Vector2{X: v.X, Y: v.Y}
}
