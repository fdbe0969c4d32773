package spatial

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/exp/constraints"

	"streamworld/internal/engine"
)

// Wrap maps c onto [0, n) toroidally. c may be negative; n must be positive.
func Wrap[T constraints.Integer](c, n T) T {
	return ((c % n) + n) % n
}

// ChunkOf returns the chunk containing the world point (x, y).
func ChunkOf(x, y, chunkSize float32) engine.ChunkCoord {
	return engine.ChunkCoord{
		X: int32(math32.Floor(x / chunkSize)),
		Y: int32(math32.Floor(y / chunkSize)),
	}
}

// BoundsRect returns the chunks an AABB overlaps on the XY plane. Boxes
// touching a chunk edge count as overlapping it.
func BoundsRect(b engine.AABB, chunkSize float32) engine.ChunkRect {
	lo := ChunkOf(b.Min.X, b.Min.Y, chunkSize)
	hi := ChunkOf(b.Max.X, b.Max.Y, chunkSize)
	return engine.ChunkRect{MinX: lo.X, MinY: lo.Y, MaxX: hi.X + 1, MaxY: hi.Y + 1}
}

// ChunkBounds is the world-space box of one chunk with the given height range.
func ChunkBounds(c engine.ChunkCoord, chunkSize, minZ, maxZ float32) engine.AABB {
	return engine.AABB{
		Min: rl.Vector3{X: float32(c.X) * chunkSize, Y: float32(c.Y) * chunkSize, Z: minZ},
		Max: rl.Vector3{X: float32(c.X+1) * chunkSize, Y: float32(c.Y+1) * chunkSize, Z: maxZ},
	}
}

// WindowAt returns the width x height window centred on the chunk that
// contains pos.
func WindowAt(pos rl.Vector3, chunkSize float32, width, height int32) engine.ChunkRect {
	c := ChunkOf(pos.X, pos.Y, chunkSize)
	minX := c.X - width/2
	minY := c.Y - height/2
	return engine.ChunkRect{MinX: minX, MinY: minY, MaxX: minX + width, MaxY: minY + height}
}
