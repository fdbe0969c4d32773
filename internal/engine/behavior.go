package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// Behavior is an optional hook attached to an entity. The world checks each
// behaviour against the handler interfaces below.
type Behavior interface{}

// CollisionHandler is called when the entity touches another one.
type CollisionHandler interface {
	OnCollision(w WorldAccess, self, other *Entity)
}

// DeathHandler is called once, the first time the entity's body is killed.
// source may be nil.
type DeathHandler interface {
	OnDeath(w WorldAccess, self, source *Entity)
}

// Releaser frees resources (looping audio, buffers) when the entity leaves
// the world.
type Releaser interface {
	Release(self *Entity)
}

// Updater runs once per tick for updatable entities.
type Updater interface {
	Update(w WorldAccess, self *Entity, dt float32)
}

// RaycastResult holds information about a raycast hit.
// Defined here to avoid circular imports with physics package.
type RaycastResult struct {
	Entity   *Entity
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// WorldAccess is the capability handed to hooks. Spawns are deferred to the
// end of the current tick.
type WorldAccess interface {
	Kill(target, source *Entity)
	Spawn(e *Entity)
	Player() *Entity
	Entity(id EntityID) *Entity
	Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastResult, bool)
}

// NotifyCollision runs every CollisionHandler on self.
func NotifyCollision(w WorldAccess, self, other *Entity) {
	for _, b := range self.Behaviors {
		if h, ok := b.(CollisionHandler); ok {
			h.OnCollision(w, self, other)
		}
	}
}

// Release runs every Releaser on e.
func Release(e *Entity) {
	for _, b := range e.Behaviors {
		if r, ok := b.(Releaser); ok {
			r.Release(e)
		}
	}
}

// RunUpdate runs every Updater on e.
func RunUpdate(w WorldAccess, e *Entity, dt float32) {
	for _, b := range e.Behaviors {
		if u, ok := b.(Updater); ok {
			u.Update(w, e, dt)
		}
	}
}
