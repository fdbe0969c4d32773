package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Body is a dynamic collidable sphere.
type Body struct {
	Position     rl.Vector3
	Velocity     rl.Vector3
	Radius       float32
	Restitution  float32 // 0 = no bounce, 1 = perfect bounce
	GravityScale float32

	Age      float32
	DeathAge float32
	dead     bool

	// Player marks the player-controlled body. It is exempt from the
	// start-of-tick penetration kill.
	Player bool
	// CollideOwnSide lets the body collide with bodies of its own side.
	CollideOwnSide bool
}

// NewBody returns a body with unit gravity and half restitution.
func NewBody(pos rl.Vector3, radius float32) *Body {
	return &Body{
		Position:     pos,
		Radius:       radius,
		Restitution:  0.5,
		GravityScale: 1,
	}
}

// Bounds is the cube of half-extent Radius around Position.
func (b *Body) Bounds() AABB {
	return SphereBounds(b.Position, b.Radius)
}

// Dead reports whether a death age has been set.
func (b *Body) Dead() bool {
	return b.dead
}

// MarkDead stamps the death age at the current age. It returns false if the
// body was already dead, so callers fire death hooks at most once.
func (b *Body) MarkDead() bool {
	if b.dead {
		return false
	}
	b.dead = true
	b.DeathAge = b.Age
	return true
}

// Expired reports whether a dead body has outlived its death window.
func (b *Body) Expired(window float32) bool {
	return b.dead && b.Age > b.DeathAge+window
}

// Kill marks the entity's body dead and runs its death hooks once.
func Kill(w WorldAccess, e, source *Entity) bool {
	if e == nil || e.Kind != KindBody || !e.Body.MarkDead() {
		return false
	}
	for _, b := range e.Behaviors {
		if h, ok := b.(DeathHandler); ok {
			h.OnDeath(w, e, source)
		}
	}
	return true
}
