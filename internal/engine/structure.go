package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// Structure is chunk-scoped logic with no collision bounds, such as a
// building controller. It lives as long as its chunk is in the window.
type Structure struct {
	Name     string
	Position rl.Vector3
	Health   float32
}
