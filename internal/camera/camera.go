package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ChaseCamera orbits a target in a Z-up world. Yaw is measured from +X in
// the XY plane; pitch is the downward look angle.
type ChaseCamera struct {
	Target    rl.Vector3
	Yaw       float32
	Pitch     float32
	Distance  float32
	Height    float32
	LookSpeed float32
	MoveSpeed float32
}

func New(target rl.Vector3) *ChaseCamera {
	return &ChaseCamera{
		Target:    target,
		Yaw:       45,
		Pitch:     30,
		Distance:  14,
		Height:    1.5,
		LookSpeed: 0.1,
		MoveSpeed: 8.0, // Units per second
	}
}

// Look applies a mouse delta.
func (c *ChaseCamera) Look(delta rl.Vector2) {
	c.Yaw -= delta.X * c.LookSpeed
	c.Pitch += delta.Y * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 85 {
		c.Pitch = 85
	}
	if c.Pitch < 5 {
		c.Pitch = 5
	}
}

// Zoom changes the follow distance by wheel steps.
func (c *ChaseCamera) Zoom(wheel float32) {
	c.Distance = float32(math.Max(4, math.Min(60, float64(c.Distance-wheel*2))))
}

// Directions returns the horizontal forward and right unit vectors.
func (c *ChaseCamera) Directions() (forward, right rl.Vector3) {
	yawRad := float64(c.Yaw) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Cos(yawRad)),
		Y: float32(math.Sin(yawRad)),
	}
	right = rl.Vector3{
		X: float32(math.Sin(yawRad)),
		Y: float32(-math.Cos(yawRad)),
	}
	return
}

// Steer turns WASD-style input into a horizontal velocity. Diagonals are
// normalized so they are not faster.
func (c *ChaseCamera) Steer(fwd, back, left, right bool) rl.Vector3 {
	f, r := c.Directions()
	var move rl.Vector3
	if fwd {
		move = rl.Vector3Add(move, f)
	}
	if back {
		move = rl.Vector3Subtract(move, f)
	}
	if right {
		move = rl.Vector3Add(move, r)
	}
	if left {
		move = rl.Vector3Subtract(move, r)
	}
	if n := rl.Vector3Length(move); n > 0 {
		move = rl.Vector3Scale(move, c.MoveSpeed/n)
	}
	return move
}

// Eye is the camera position behind and above the target.
func (c *ChaseCamera) Eye() rl.Vector3 {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180
	horiz := float64(c.Distance) * math.Cos(pitchRad)
	return rl.Vector3{
		X: c.Target.X - float32(horiz*math.Cos(yawRad)),
		Y: c.Target.Y - float32(horiz*math.Sin(yawRad)),
		Z: c.Target.Z + c.Height + float32(float64(c.Distance)*math.Sin(pitchRad)),
	}
}

func (c *ChaseCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Eye(),
		Target:     rl.Vector3{X: c.Target.X, Y: c.Target.Y, Z: c.Target.Z + c.Height},
		Up:         rl.Vector3{X: 0, Y: 0, Z: 1},
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}
}
