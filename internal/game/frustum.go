package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
)

const (
	clipNear = 0.1
	clipFar  = 1000.0
)

// halfspace is the set of points p with dot(n, p) + d >= 0.
type halfspace struct {
	n rl.Vector3
	d float32
}

func (h halfspace) signed(p rl.Vector3) float32 {
	return rl.Vector3DotProduct(h.n, p) + h.d
}

// Frustum is the view volume as six inward-facing half-spaces, paired
// left/right, bottom/top, near/far.
type Frustum [6]halfspace

// ExtractFrustum derives the view volume of camera from its combined
// view-projection matrix. aspect is width over height.
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	var proj rl.Matrix
	switch camera.Projection {
	case rl.CameraOrthographic:
		h := camera.Fovy / 2
		proj = rl.MatrixOrtho(-h*aspect, h*aspect, -h, h, clipNear, clipFar)
	default:
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, clipNear, clipFar)
	}
	m := rl.MatrixMultiply(rl.MatrixLookAt(camera.Position, camera.Target, camera.Up), proj)

	// Rows of the clip transform: x, y, z, w.
	rows := [4]halfspace{
		{rl.Vector3{X: m.M0, Y: m.M4, Z: m.M8}, m.M12},
		{rl.Vector3{X: m.M1, Y: m.M5, Z: m.M9}, m.M13},
		{rl.Vector3{X: m.M2, Y: m.M6, Z: m.M10}, m.M14},
		{rl.Vector3{X: m.M3, Y: m.M7, Z: m.M11}, m.M15},
	}
	w := rows[3]

	var f Frustum
	for axis := 0; axis < 3; axis++ {
		r := rows[axis]
		f[2*axis] = unit(halfspace{rl.Vector3Add(w.n, r.n), w.d + r.d})
		f[2*axis+1] = unit(halfspace{rl.Vector3Subtract(w.n, r.n), w.d - r.d})
	}
	return f
}

func unit(h halfspace) halfspace {
	l := rl.Vector3Length(h.n)
	if l == 0 {
		return h
	}
	return halfspace{rl.Vector3Scale(h.n, 1/l), h.d / l}
}

// ContainsSphere reports whether any part of the sphere may be visible.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for _, h := range f {
		if h.signed(center) < -radius {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether any part of b may be visible. Each plane is
// tested against the corner furthest along its normal.
func (f *Frustum) ContainsAABB(b engine.AABB) bool {
	for _, h := range f {
		corner := b.Min
		if h.n.X >= 0 {
			corner.X = b.Max.X
		}
		if h.n.Y >= 0 {
			corner.Y = b.Max.Y
		}
		if h.n.Z >= 0 {
			corner.Z = b.Max.Z
		}
		if h.signed(corner) < 0 {
			return false
		}
	}
	return true
}
