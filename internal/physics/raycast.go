package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/spatial"
)

// Raycast walks the cells under the ray and returns the closest surface or
// body hit. filter may be nil; entities it rejects are ignored.
func Raycast(g *spatial.Grid, origin, direction rl.Vector3, maxDistance float32, filter func(*engine.Entity) bool) (engine.RaycastResult, bool) {
	direction = rl.Vector3Normalize(direction)
	end := rl.Vector3Add(origin, rl.Vector3Scale(direction, maxDistance))

	closest := engine.RaycastResult{Distance: maxDistance}
	hit := false
	g.QueryRect(engine.BoundsOf(origin, end), func(e *engine.Entity) bool {
		if filter != nil && !filter(e) {
			return true
		}
		var h engine.RaycastResult
		var ok bool
		switch e.Kind {
		case engine.KindSurface:
			h, ok = raycastSurface(origin, direction, e.Surface, closest.Distance)
		case engine.KindBody:
			h, ok = raycastSphere(origin, direction, e.Body.Position, e.Body.Radius, closest.Distance)
		}
		if ok && h.Distance < closest.Distance {
			closest = h
			closest.Entity = e
			hit = true
		}
		return true
	})
	return closest, hit
}

func raycastSurface(origin, direction rl.Vector3, s *engine.Surface, maxDistance float32) (engine.RaycastResult, bool) {
	lo := TransformPoint(s.ToLocal, origin)
	ld := TransformDirection(s.ToLocal, direction)
	if ld.Z == 0 {
		return engine.RaycastResult{}, false
	}

	t := -lo.Z / ld.Z
	if t < 0 || t > maxDistance {
		return engine.RaycastResult{}, false
	}
	lp := rl.Vector3Add(lo, rl.Vector3Scale(ld, t))
	if !PointInPolygon(xy(lp), s.Footprint) {
		return engine.RaycastResult{}, false
	}

	normal := s.Normal
	if rl.Vector3DotProduct(normal, direction) > 0 {
		normal = rl.Vector3Negate(normal)
	}
	return engine.RaycastResult{
		Point:    rl.Vector3Add(origin, rl.Vector3Scale(direction, t)),
		Normal:   normal,
		Distance: t,
	}, true
}

func raycastSphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (engine.RaycastResult, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - c
	if discriminant < 0 {
		return engine.RaycastResult{}, false
	}

	root := math32.Sqrt(discriminant)
	t := -b - root
	if t < 0 {
		t = -b + root
	}
	if t < 0 || t > maxDistance {
		return engine.RaycastResult{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))

	return engine.RaycastResult{Point: point, Normal: normal, Distance: t}, true
}
