package engine

import (
	"fmt"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind discriminates the entity variant.
type Kind uint8

const (
	KindBody Kind = iota + 1
	KindSurface
	KindStructure
)

func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindSurface:
		return "surface"
	case KindStructure:
		return "structure"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// EntityID is a stable handle for an entity. Zero means none.
type EntityID uint32

// Side is a faction tag. Bodies of the same side do not collide unless
// one of them sets CollideOwnSide.
type Side uint8

const (
	SideWorld Side = iota
	SidePlayer
	SideMonsters
	SideNeutral

	// NumSides bounds the per-faction lists.
	NumSides
)

// ChunkCoord addresses a chunk on the XY plane. Coordinates may be negative.
type ChunkCoord struct {
	X, Y int32
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ChunkRect is a half-open rectangle of chunk coordinates [Min, Max).
type ChunkRect struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

// Empty reports whether the rectangle contains no chunk.
func (r ChunkRect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Contains reports whether c lies inside the rectangle.
func (r ChunkRect) Contains(c ChunkCoord) bool {
	return c.X >= r.MinX && c.X < r.MaxX && c.Y >= r.MinY && c.Y < r.MaxY
}

// Intersect clips r against o. The result may be empty.
func (r ChunkRect) Intersect(o ChunkRect) ChunkRect {
	return ChunkRect{
		MinX: max(r.MinX, o.MinX),
		MinY: max(r.MinY, o.MinY),
		MaxX: min(r.MaxX, o.MaxX),
		MaxY: min(r.MaxY, o.MaxY),
	}
}

// Each calls fn for every chunk in row-major order.
func (r ChunkRect) Each(fn func(c ChunkCoord)) {
	for y := r.MinY; y < r.MaxY; y++ {
		for x := r.MinX; x < r.MaxX; x++ {
			fn(ChunkCoord{X: x, Y: y})
		}
	}
}

var nextID atomic.Uint32

func newID() EntityID {
	return EntityID(nextID.Add(1))
}

// Entity is the tagged variant for everything the world stores. Exactly one
// of Body, Surface or Structure is set, matching Kind.
type Entity struct {
	ID    EntityID
	Kind  Kind
	Side  Side
	Chunk ChunkCoord

	Body      *Body
	Surface   *Surface
	Structure *Structure

	Behaviors []Behavior

	// Bookkeeping owned by the world and the spatial index.
	slots   [numLists]int
	indexed ChunkRect
	inIndex bool
	stamp   uint32
}

const (
	listFaction = iota
	listUpdatable
	numLists
)

func newEntity(kind Kind, side Side) *Entity {
	e := &Entity{
		ID:   newID(),
		Kind: kind,
		Side: side,
	}
	for i := range e.slots {
		e.slots[i] = -1
	}
	return e
}

// NewBodyEntity wraps a body.
func NewBodyEntity(side Side, b *Body) *Entity {
	e := newEntity(KindBody, side)
	e.Body = b
	return e
}

// NewSurfaceEntity wraps a surface owned by chunk.
func NewSurfaceEntity(chunk ChunkCoord, s *Surface) *Entity {
	e := newEntity(KindSurface, SideWorld)
	e.Surface = s
	e.Chunk = chunk
	return e
}

// NewStructureEntity wraps a chunk-scoped logic entity.
func NewStructureEntity(side Side, chunk ChunkCoord, s *Structure) *Entity {
	e := newEntity(KindStructure, side)
	e.Structure = s
	e.Chunk = chunk
	return e
}

// AddBehavior attaches a hook implementation to the entity.
func (e *Entity) AddBehavior(b Behavior) *Entity {
	e.Behaviors = append(e.Behaviors, b)
	return e
}

// Physical reports whether the entity participates in the spatial index.
func (e *Entity) Physical() bool {
	return e.Kind == KindBody || e.Kind == KindSurface
}

// Updatable reports whether the entity is iterated once per tick.
func (e *Entity) Updatable() bool {
	if e.Kind == KindBody {
		return true
	}
	for _, b := range e.Behaviors {
		if _, ok := b.(Updater); ok {
			return true
		}
	}
	return false
}

// IsFloor reports whether the entity is a floor surface. Floors are kept
// first in every index cell.
func (e *Entity) IsFloor() bool {
	return e.Kind == KindSurface && e.Surface.Floor
}

// Position returns the entity's reference point.
func (e *Entity) Position() rl.Vector3 {
	switch e.Kind {
	case KindBody:
		return e.Body.Position
	case KindSurface:
		return e.Surface.Origin()
	}
	return rl.Vector3{}
}

// Bounds returns the axis-aligned box used by the spatial index.
func (e *Entity) Bounds() AABB {
	switch e.Kind {
	case KindBody:
		return e.Body.Bounds()
	case KindSurface:
		return e.Surface.Bounds
	}
	return AABB{}
}

// Dead reports whether the entity is a body with a death age set.
func (e *Entity) Dead() bool {
	return e.Kind == KindBody && e.Body.Dead()
}

// IsPlayer reports whether the entity is the player-controlled body.
func (e *Entity) IsPlayer() bool {
	return e.Kind == KindBody && e.Body.Player
}

// Indexed returns the chunk rectangle the entity was inserted under and
// whether it is currently in the index.
func (e *Entity) Indexed() (ChunkRect, bool) {
	return e.indexed, e.inIndex
}

// SetIndexed records the index membership. Only the spatial index calls it.
func (e *Entity) SetIndexed(r ChunkRect, in bool) {
	e.indexed = r
	e.inIndex = in
}

// Mark stamps the entity for a query; it returns false when the entity was
// already stamped with the same value.
func (e *Entity) Mark(stamp uint32) bool {
	if e.stamp == stamp {
		return false
	}
	e.stamp = stamp
	return true
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s %d", e.Kind, e.ID)
}
