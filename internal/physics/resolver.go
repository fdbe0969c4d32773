package physics

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/spatial"
)

// Stats counts resolver work since the last Reset.
type Stats struct {
	Substeps int
	Contacts int
	Clamps   int
	Kills    int
}

func (s *Stats) Reset() {
	*s = Stats{}
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Substeps += o.Substeps
	s.Contacts += o.Contacts
	s.Clamps += o.Clamps
	s.Kills += o.Kills
}

// Resolver advances bodies through the spatial index one at a time. Every
// position change happens while the body is out of the index.
type Resolver struct {
	Config Config
	Grid   *spatial.Grid
	Stats  Stats

	logger     *log.Logger
	candidates []*engine.Entity
}

func NewResolver(cfg Config, grid *spatial.Grid, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		Config: cfg,
		Grid:   grid,
		logger: logger,
	}
}

// Step consumes dt seconds of motion for one body. Dead bodies are taken out
// of the index and not simulated.
func (r *Resolver) Step(w engine.WorldAccess, e *engine.Entity, dt float32) {
	if e.Kind != engine.KindBody {
		return
	}
	b := e.Body
	if b.Dead() {
		r.Grid.Remove(e)
		return
	}

	b.Velocity.Z -= dt * r.Config.Gravity * b.GravityScale
	r.clampSpeed(e, dt)

	remaining := dt
	budget := r.Config.MaxCollisions
	first := true
	for {
		r.Grid.Remove(e)
		start := b.Position
		vel := b.Velocity

		if first {
			first = false
			if r.startPenetrating(w, e) {
				return
			}
		}

		b.Position = rl.Vector3Add(start, rl.Vector3Scale(vel, remaining))
		r.Stats.Substeps++

		c, found := r.earliest(w, e, start, vel, remaining)
		if b.Dead() {
			return
		}
		if !found {
			r.Grid.Insert(e)
			return
		}

		toi := max(0, c.TOI)
		b.Position = rl.Vector3Add(start, rl.Vector3Scale(vel, toi))
		remaining -= toi
		r.Stats.Contacts++

		r.contact(w, e, c)

		budget--
		if b.Dead() {
			return
		}
		if budget <= 0 || remaining < r.Config.Epsilon {
			r.Grid.Insert(e)
			return
		}
	}
}

func (r *Resolver) clampSpeed(e *engine.Entity, dt float32) {
	b := e.Body
	limit := r.Config.MaxSpeedScale * 2 * b.Radius / dt
	speed := rl.Vector3Length(b.Velocity)
	if speed <= limit || speed == 0 {
		return
	}
	b.Velocity = rl.Vector3Scale(b.Velocity, limit/speed)
	r.Stats.Clamps++
	if r.Config.LogClamps {
		r.logger.Printf("physics: clamped %s from %.2f to %.2f", e, speed, limit)
	}
}

// startPenetrating kills a body that begins the tick inside a surface. The
// player is only reported.
func (r *Resolver) startPenetrating(w engine.WorldAccess, e *engine.Entity) bool {
	b := e.Body
	var hit *engine.Entity
	r.Grid.QueryRect(b.Bounds(), func(o *engine.Entity) bool {
		if o.Kind == engine.KindSurface && startOverlap(b.Radius, o.Surface, b.Position, r.Config) {
			hit = o
			return false
		}
		return true
	})
	if hit == nil {
		return false
	}
	if e.IsPlayer() {
		r.logger.Printf("physics: player %s started tick inside %s", e, hit)
		return false
	}
	r.logger.Printf("physics: %s started tick inside %s, killing", e, hit)
	r.Stats.Kills++
	w.Kill(e, hit)
	return true
}

// earliest gathers candidates over the swept bounds and returns the first
// scheduled contact. Overlapping bodies are answered on the spot.
func (r *Resolver) earliest(w engine.WorldAccess, e *engine.Entity, start, vel rl.Vector3, remaining float32) (Contact, bool) {
	b := e.Body
	swept := engine.SphereBounds(start, b.Radius).Union(b.Bounds())

	r.candidates = r.candidates[:0]
	r.Grid.QueryRect(swept, func(o *engine.Entity) bool {
		if o != e {
			r.candidates = append(r.candidates, o)
		}
		return true
	})

	var best Contact
	found := false
	for _, o := range r.candidates {
		switch o.Kind {
		case engine.KindBody:
			if o.Body.Dead() || !collides(e, o) {
				continue
			}
			toi, ok := BodyTOI(b.Radius, b.Position, vel, o.Body, remaining, r.Config.Epsilon)
			if !ok {
				continue
			}
			if toi < 0 {
				r.Stats.Contacts++
				r.contact(w, e, Contact{TOI: toi, Other: o})
				if b.Dead() {
					return Contact{}, false
				}
				continue
			}
			if !found || toi < best.TOI {
				best = Contact{TOI: toi, Other: o}
				found = true
			}
		case engine.KindSurface:
			c, ok := SurfaceTOI(b.Radius, o.Surface, start, vel, remaining, r.Config)
			if !ok {
				continue
			}
			if !found || c.TOI < best.TOI {
				c.Other = o
				best = c
				found = true
			}
		}
	}
	return best, found
}

// contact notifies both sides and applies the velocity response.
func (r *Resolver) contact(w engine.WorldAccess, e *engine.Entity, c Contact) {
	o := c.Other
	engine.NotifyCollision(w, e, o)
	engine.NotifyCollision(w, o, e)

	switch o.Kind {
	case engine.KindBody:
		if o.Body.Dead() {
			r.Grid.Remove(o)
		}
		respondBodies(e.Body, o.Body)
	case engine.KindSurface:
		respondSurface(e.Body, o.Surface, c)
	}
}

// collides applies the faction filter.
func collides(a, b *engine.Entity) bool {
	return a.Side != b.Side || a.Body.CollideOwnSide || b.Body.CollideOwnSide
}
