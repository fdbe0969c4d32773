package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
)

// Contact is a scheduled impact inside one sub-step.
type Contact struct {
	// TOI is measured from the start of the sub-step. It may be slightly
	// negative.
	TOI float32
	// Normal points from the other entity towards the body, in world space.
	Normal rl.Vector3
	// LocalNormal is Normal in the surface frame. Zero for body contacts.
	LocalNormal rl.Vector3
	Edge        bool
	Other       *engine.Entity
}

// SurfaceTOI finds the first time a sphere of radius r moving from start at
// vel touches s within remaining seconds. The surface is two-sided: the
// side the body starts on is the front.
func SurfaceTOI(r float32, s *engine.Surface, start, vel rl.Vector3, remaining float32, cfg Config) (Contact, bool) {
	ls := TransformPoint(s.ToLocal, start)
	vl := TransformDirection(s.ToLocal, vel)
	le := rl.Vector3Add(ls, rl.Vector3Scale(vl, remaining))

	side := sign(ls.Z)
	if ls.Z == 0 {
		side = -sign(vl.Z)
	}
	if side*le.Z >= r {
		return Contact{}, false
	}

	// Time at which the centre is r away from the plane on the front side.
	approach := side * vl.Z
	var planeTime float32
	if approach < 0 {
		planeTime = clamp((r-side*ls.Z)/approach, 0, remaining)
	}
	if !finite(planeTime) {
		return Contact{}, false
	}

	at := rl.Vector3Add(ls, rl.Vector3Scale(vl, planeTime))
	if PointInPolygon(xy(at), s.Footprint) {
		if approach >= 0 {
			return Contact{}, false
		}
		n := rl.Vector3{Z: side}
		return Contact{
			TOI:         planeTime - cfg.Epsilon,
			Normal:      rl.Vector3Normalize(TransformDirection(s.ToWorld, n)),
			LocalNormal: n,
		}, true
	}

	return edgeTOI(r, s, ls, vl, side, planeTime, remaining, cfg)
}

// touching reports whether the sphere centred at local point c overlaps the
// polygon.
func touching(r float32, s *engine.Surface, c rl.Vector3, side float32) bool {
	d := side * c.Z
	if d >= r || d <= -r {
		return false
	}
	if PointInPolygon(xy(c), s.Footprint) {
		return true
	}
	_, distSq := closestOnBoundary(xy(c), s.Footprint)
	return distSq < r*r-d*d
}

// edgeTOI brackets the first edge or vertex contact and narrows it by
// bisection. The returned time is on the non-touching side of the bracket.
func edgeTOI(r float32, s *engine.Surface, ls, vl rl.Vector3, side, planeTime, remaining float32, cfg Config) (Contact, bool) {
	at := func(t float32) rl.Vector3 {
		return rl.Vector3Add(ls, rl.Vector3Scale(vl, t))
	}

	lo := max(0, planeTime-cfg.Epsilon)
	hi := float32(-1)
	for _, t := range edgeSamples(s, ls, vl, planeTime, remaining) {
		if t > lo && t <= remaining && (hi < 0 || t < hi) && touching(r, s, at(t), side) {
			hi = t
		}
	}
	if hi < 0 {
		return Contact{}, false
	}
	if touching(r, s, at(lo), side) {
		hi = lo
	} else {
		for i := 0; i < cfg.BisectionSteps; i++ {
			mid := (lo + hi) / 2
			if touching(r, s, at(mid), side) {
				hi = mid
			} else {
				lo = mid
			}
		}
	}

	// Inbound check in the frame of the nearest edge point.
	c := at(hi)
	var n rl.Vector3
	if PointInPolygon(xy(c), s.Footprint) {
		n = rl.Vector3{Z: side}
	} else {
		q, _ := closestOnBoundary(xy(c), s.Footprint)
		n = rl.Vector3Subtract(c, rl.Vector3{X: q.X, Y: q.Y})
		if rl.Vector3Length(n) < 1e-6 {
			n = rl.Vector3{Z: side}
		}
		n = rl.Vector3Normalize(n)
	}
	if rl.Vector3DotProduct(vl, n) >= 0 {
		return Contact{}, false
	}

	return Contact{
		TOI:         lo,
		Normal:      rl.Vector3Normalize(TransformDirection(s.ToWorld, n)),
		LocalNormal: n,
		Edge:        true,
	}, true
}

// edgeSamples lists the times worth testing for a first touch: the end of
// the sweep, the plane time, the moment the centre crosses the plane, and
// the closest approach to the nearest boundary point. A sphere crossing the
// plane next to an edge can touch only in the middle of the sweep.
func edgeSamples(s *engine.Surface, ls, vl rl.Vector3, planeTime, remaining float32) []float32 {
	ts := []float32{remaining, planeTime}
	anchor := ls
	if vl.Z != 0 {
		cross := -ls.Z / vl.Z
		if finite(cross) && cross > 0 && cross < remaining {
			ts = append(ts, cross)
			anchor = rl.Vector3Add(ls, rl.Vector3Scale(vl, cross))
		}
	}
	if v2 := rl.Vector3LengthSqr(vl); v2 > 0 {
		for _, p := range []rl.Vector3{ls, anchor} {
			q, _ := closestOnBoundary(xy(p), s.Footprint)
			t := -rl.Vector3DotProduct(rl.Vector3Subtract(ls, rl.Vector3{X: q.X, Y: q.Y}), vl) / v2
			if finite(t) {
				ts = append(ts, t)
			}
		}
	}
	return ts
}

// BodyTOI approximates when a body of radius r moving at vel, ending the
// sub-step at end, first touched other. Only the moving body's speed is used
// for the closing rate. A negative result means the pair already overlaps
// and needs an immediate response.
func BodyTOI(r float32, end, vel rl.Vector3, other *engine.Body, remaining, eps float32) (float32, bool) {
	sumR := r + other.Radius
	dist := rl.Vector3Distance(end, other.Position)
	if dist >= sumR {
		return 0, false
	}
	rel := rl.Vector3Subtract(vel, other.Velocity)
	if rl.Vector3LengthSqr(rel) == 0 {
		return 0, false
	}
	speed := rl.Vector3Length(vel)
	if speed == 0 {
		return -eps, true
	}
	toi := remaining - (sumR-dist)/speed - eps
	if !finite(toi) {
		return 0, false
	}
	return toi, true
}

// respondSurface reflects the body's velocity about the contact normal in
// the surface frame, keeping restitution of the normal component.
func respondSurface(b *engine.Body, s *engine.Surface, c Contact) {
	vl := TransformDirection(s.ToLocal, b.Velocity)
	vn := rl.Vector3DotProduct(vl, c.LocalNormal)
	if vn >= 0 {
		return
	}
	vl = rl.Vector3Subtract(vl, rl.Vector3Scale(c.LocalNormal, (1+b.Restitution)*vn))
	b.Velocity = TransformDirection(s.ToWorld, vl)
}

// respondBodies applies an impulse along the line of centres, split by
// radius as a mass proxy, with the mean restitution.
func respondBodies(a, b *engine.Body) {
	d := rl.Vector3Subtract(a.Position, b.Position)
	dist := rl.Vector3Length(d)
	if dist < 1e-6 {
		return
	}
	n := rl.Vector3Scale(d, 1/dist)

	vn := rl.Vector3DotProduct(rl.Vector3Subtract(a.Velocity, b.Velocity), n)
	if vn >= 0 {
		return
	}

	e := (a.Restitution + b.Restitution) / 2
	j := -(1 + e) * vn
	total := a.Radius + b.Radius
	wa := b.Radius / total
	wb := a.Radius / total

	a.Velocity = rl.Vector3Add(a.Velocity, rl.Vector3Scale(n, j*wa))
	b.Velocity = rl.Vector3Subtract(b.Velocity, rl.Vector3Scale(n, j*wb))
}

// startOverlap reports whether a body at pos already penetrates s. Face
// containment allows a small depth tolerance; edge overlap only counts
// when deep inside the cross-section.
func startOverlap(r float32, s *engine.Surface, pos rl.Vector3, cfg Config) bool {
	lp := TransformPoint(s.ToLocal, pos)
	d := math32.Abs(lp.Z)
	if d >= r {
		return false
	}
	if PointInPolygon(xy(lp), s.Footprint) {
		return d < r-cfg.StartOverlapTolerance
	}
	_, distSq := closestOnBoundary(xy(lp), s.Footprint)
	rc := math32.Sqrt(r*r-d*d) * cfg.EdgeOverlapScale
	return distSq < rc*rc
}
