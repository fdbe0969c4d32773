package audio

import (
	"streamworld/internal/engine"
)

func init() {
	engine.RegisterBehavior("emitter", func(props map[string]any) engine.Behavior {
		return &Emitter{
			Path:   engine.PropString(props, "path", ""),
			Loop:   engine.PropFloat(props, "loop", 1) != 0,
			Volume: engine.PropFloat(props, "volume", 1),
		}
	})
}

// Emitter plays a sound that follows its entity. The source is created on
// the first update and released with the entity.
type Emitter struct {
	Path   string
	Loop   bool
	Volume float32

	dev      *Manager
	id       uint64
	ok       bool
	started  bool
	released bool
}

func (e *Emitter) Update(w engine.WorldAccess, self *engine.Entity, dt float32) {
	if e.released {
		return
	}
	if !e.started {
		e.started = true
		e.dev = Device()
		e.id, e.ok = e.dev.Open(e.Path)
		if e.ok {
			e.dev.Place(e.id, self.Position(), e.Volume, 0)
			e.dev.Play(e.id, e.Loop)
		}
		return
	}
	if e.ok {
		e.dev.Place(e.id, self.Position(), e.Volume, 0)
	}
}

func (e *Emitter) OnDeath(w engine.WorldAccess, self, source *engine.Entity) {
	if e.ok {
		e.dev.Stop(e.id)
	}
}

func (e *Emitter) Release(self *engine.Entity) {
	if e.ok {
		e.dev.Release(e.id)
		e.ok = false
	}
	e.released = true
}

// Released reports whether the owning entity has been removed.
func (e *Emitter) Released() bool {
	return e.released
}
