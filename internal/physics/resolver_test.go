package physics

import (
	"io"
	"log"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/spatial"
)

const dt = float32(1.0 / 60)

// testWorld is the smallest WorldAccess the resolver needs.
type testWorld struct {
	grid   *spatial.Grid
	player *engine.Entity
	byID   map[engine.EntityID]*engine.Entity
}

func (w *testWorld) Kill(target, source *engine.Entity) {
	if engine.Kill(w, target, source) {
		w.grid.Remove(target)
	}
}
func (w *testWorld) Spawn(e *engine.Entity)                   {}
func (w *testWorld) Player() *engine.Entity                   { return w.player }
func (w *testWorld) Entity(id engine.EntityID) *engine.Entity { return w.byID[id] }
func (w *testWorld) Raycast(origin, direction rl.Vector3, maxDistance float32) (engine.RaycastResult, bool) {
	return Raycast(w.grid, origin, direction, maxDistance, nil)
}

func newTestResolver(t *testing.T) (*Resolver, *testWorld) {
	t.Helper()
	g := spatial.NewGrid(4, 4, 16)
	g.Shift(engine.ChunkRect{MinX: -2, MinY: -2, MaxX: 2, MaxY: 2})
	w := &testWorld{grid: g, byID: map[engine.EntityID]*engine.Entity{}}
	return NewResolver(DefaultConfig(), g, log.New(io.Discard, "", 0)), w
}

func (w *testWorld) add(e *engine.Entity) *engine.Entity {
	w.grid.Insert(e)
	w.byID[e.ID] = e
	return e
}

func (w *testWorld) floor() *engine.Entity {
	return w.add(engine.NewSurfaceEntity(engine.ChunkCoord{},
		engine.NewFloorSurface(rl.Vector3{X: -5, Y: -5}, 10, 10)))
}

func (w *testWorld) body(side engine.Side, pos, vel rl.Vector3, restitution float32) *engine.Entity {
	b := engine.NewBody(pos, 1)
	b.Velocity = vel
	b.Restitution = restitution
	return w.add(engine.NewBodyEntity(side, b))
}

func TestSurfaceTOIFaceContact(t *testing.T) {
	floor := engine.NewFloorSurface(rl.Vector3{X: -5, Y: -5}, 10, 10)
	cfg := DefaultConfig()

	c, ok := SurfaceTOI(1, floor, rl.Vector3{Z: 2.5}, rl.Vector3{Z: -120}, dt, cfg)
	if !ok {
		t.Fatal("Expected a face contact")
	}
	if c.Edge {
		t.Error("Contact should be a face contact")
	}
	if !approx(c.TOI, 1.5/120-cfg.Epsilon, 1e-6) {
		t.Errorf("Expected TOI %f, got %f", 1.5/120-cfg.Epsilon, c.TOI)
	}
	if !approx(c.Normal.Z, 1, 1e-5) {
		t.Errorf("Expected +Z normal, got %v", c.Normal)
	}
}

func TestSurfaceTOIMissesWhenEndIsClear(t *testing.T) {
	floor := engine.NewFloorSurface(rl.Vector3{X: -5, Y: -5}, 10, 10)
	if _, ok := SurfaceTOI(1, floor, rl.Vector3{Z: 5}, rl.Vector3{Z: -60}, dt, DefaultConfig()); ok {
		t.Error("Body ending above the radius should not touch")
	}
}

func TestSurfaceTOIFromBelow(t *testing.T) {
	floor := engine.NewFloorSurface(rl.Vector3{X: -5, Y: -5}, 10, 10)
	c, ok := SurfaceTOI(1, floor, rl.Vector3{Z: -2.5}, rl.Vector3{Z: 120}, dt, DefaultConfig())
	if !ok {
		t.Fatal("Surfaces are two-sided")
	}
	if !approx(c.Normal.Z, -1, 1e-5) {
		t.Errorf("Normal should face the body's side, got %v", c.Normal)
	}
}

func TestSurfaceTOIEdgeContact(t *testing.T) {
	square := engine.NewFloorSurface(rl.Vector3{}, 4, 4)
	cfg := DefaultConfig()

	// Sliding sideways at half-radius height into the x=0 edge.
	c, ok := SurfaceTOI(1, square, rl.Vector3{X: -2, Y: 2, Z: 0.5}, rl.Vector3{X: 90}, dt, cfg)
	if !ok {
		t.Fatal("Expected an edge contact")
	}
	if !c.Edge {
		t.Error("Contact should be flagged as edge")
	}

	// The cross-section radius at height 0.5 is sqrt(0.75).
	want := (2 - float32(0.8660254)) / 90
	if c.TOI > want || c.TOI < want-dt/float32(int(1)<<cfg.BisectionSteps)-1e-6 {
		t.Errorf("Expected TOI just before %f, got %f", want, c.TOI)
	}
	if c.Normal.X >= 0 || c.Normal.Z <= 0 {
		t.Errorf("Edge normal should point back and up, got %v", c.Normal)
	}
}

func TestSurfaceTOIEdgeMovingAway(t *testing.T) {
	square := engine.NewFloorSurface(rl.Vector3{}, 4, 4)
	if _, ok := SurfaceTOI(1, square, rl.Vector3{X: -0.5, Y: 2, Z: 0.5}, rl.Vector3{X: -60}, dt, DefaultConfig()); ok {
		t.Error("Body leaving an edge should not collide")
	}
}

func TestSurfaceTOIEdgeTouchedOnlyMidSweep(t *testing.T) {
	square := engine.NewFloorSurface(rl.Vector3{}, 4, 4)
	start := rl.Vector3{X: -0.95, Y: 2, Z: 1}

	// Both ends of the sweep are clear of the square; the sphere only
	// touches the x=0 edge while its centre is near the plane.
	c, ok := SurfaceTOI(1, square, start, rl.Vector3{Z: -100}, dt, DefaultConfig())
	if !ok {
		t.Fatal("Expected an edge contact in the middle of the sweep")
	}
	if !c.Edge {
		t.Error("Contact should be flagged as edge")
	}
	// First touch is where 0.95^2 + z^2 = 1.
	want := (1 - float32(0.3122499)) / 100
	if c.TOI > want || c.TOI < want-dt/float32(int(1)<<DefaultConfig().BisectionSteps)-1e-6 {
		t.Errorf("Expected TOI just before %f, got %f", want, c.TOI)
	}
	if c.Normal.X >= 0 || c.Normal.Z <= 0 {
		t.Errorf("Edge normal should point out and up, got %v", c.Normal)
	}
}

func TestStepDoesNotSlipPastEdge(t *testing.T) {
	r, w := newTestResolver(t)
	w.add(engine.NewSurfaceEntity(engine.ChunkCoord{}, engine.NewFloorSurface(rl.Vector3{}, 4, 4)))
	e := w.body(engine.SideMonsters, rl.Vector3{X: -0.95, Y: 2, Z: 1}, rl.Vector3{Z: -100}, 0)
	e.Body.GravityScale = 0

	r.Step(w, e, dt)

	if r.Stats.Contacts == 0 {
		t.Fatal("Expected the edge to be hit")
	}
	if e.Body.Dead() {
		t.Fatal("Grazing an edge should not kill")
	}
	p := e.Body.Position
	closest := rl.Vector3{X: clamp(p.X, 0, 4), Y: clamp(p.Y, 0, 4)}
	if d := rl.Vector3Distance(p, closest); d < 1-0.01 {
		t.Errorf("Body ended %f from the square, inside its radius, at %v", d, p)
	}
	if err := r.Grid.Verify(); err != nil {
		t.Error(err)
	}
}

func TestBodyTOI(t *testing.T) {
	other := engine.NewBody(rl.Vector3{X: 2}, 1)

	if _, ok := BodyTOI(1, rl.Vector3{X: -1}, rl.Vector3{X: 60}, other, dt, 1e-4); ok {
		t.Error("Separated bodies should not collide")
	}

	toi, ok := BodyTOI(1, rl.Vector3{X: 0.5}, rl.Vector3{X: 60}, other, dt, 1e-4)
	if !ok {
		t.Fatal("Overlapping bodies should collide")
	}
	want := dt - 0.5/60 - 1e-4
	if !approx(toi, want, 1e-6) {
		t.Errorf("Expected TOI %f, got %f", want, toi)
	}

	toi, ok = BodyTOI(1, rl.Vector3{X: 1.5}, rl.Vector3{}, &engine.Body{Position: rl.Vector3{X: 2}, Radius: 1, Velocity: rl.Vector3{X: -1}}, dt, 1e-4)
	if !ok || toi >= 0 {
		t.Errorf("Resting body hit by a mover should get an immediate response, got %f %v", toi, ok)
	}
}

func TestRestingOnFloor(t *testing.T) {
	r, w := newTestResolver(t)
	w.floor()
	e := w.body(engine.SideMonsters, rl.Vector3{Z: 1}, rl.Vector3{Z: -0.01}, 0)

	for i := 0; i < 120; i++ {
		r.Step(w, e, dt)
		if e.Body.Position.Z < 1-r.Config.Epsilon {
			t.Fatalf("tick %d: body sank to z=%f", i, e.Body.Position.Z)
		}
	}
	if !approx(e.Body.Position.Z, 1, r.Config.Epsilon) {
		t.Errorf("Expected z to settle at 1, got %f", e.Body.Position.Z)
	}
	if e.Body.Dead() {
		t.Error("Resting body should not be killed")
	}
}

func TestBouncingStaysAboveFloor(t *testing.T) {
	r, w := newTestResolver(t)
	w.floor()
	e := w.body(engine.SideMonsters, rl.Vector3{Z: 4}, rl.Vector3{}, 0.5)

	for i := 0; i < 300; i++ {
		r.Step(w, e, dt)
		if e.Body.Position.Z < 1-r.Config.Epsilon {
			t.Fatalf("tick %d: body below the floor at z=%f", i, e.Body.Position.Z)
		}
	}
	if err := r.Grid.Verify(); err != nil {
		t.Error(err)
	}
}

func TestNoTunneling(t *testing.T) {
	speeds := []float32{30, 119, 120, 500}
	for _, speed := range speeds {
		r, w := newTestResolver(t)
		w.floor()
		e := w.body(engine.SideMonsters, rl.Vector3{Z: 3}, rl.Vector3{Z: -speed}, 0.5)
		e.Body.GravityScale = 0

		for i := 0; i < 5; i++ {
			r.Step(w, e, dt)
			if e.Body.Position.Z < 0 {
				t.Fatalf("speed %v tick %d: passed through to z=%f", speed, i, e.Body.Position.Z)
			}
		}
	}
}

func TestNoTunnelingThroughWall(t *testing.T) {
	r, w := newTestResolver(t)
	w.add(engine.NewSurfaceEntity(engine.ChunkCoord{},
		engine.NewWallSurface(rl.Vector3{X: -5, Y: 2, Z: -5}, 0, 10, 10)))
	e := w.body(engine.SideMonsters, rl.Vector3{}, rl.Vector3{Y: 100}, 0.5)
	e.Body.GravityScale = 0

	for i := 0; i < 10; i++ {
		r.Step(w, e, dt)
		if e.Body.Position.Y > 2 {
			t.Fatalf("tick %d: crossed the wall to y=%f", i, e.Body.Position.Y)
		}
	}
	if e.Body.Velocity.Y >= 0 {
		t.Errorf("Body should be bouncing back, vy=%f", e.Body.Velocity.Y)
	}
}

func TestRestitutionZeroAndOne(t *testing.T) {
	for _, restitution := range []float32{0, 1} {
		r, w := newTestResolver(t)
		w.floor()
		e := w.body(engine.SideMonsters, rl.Vector3{Z: 1.5}, rl.Vector3{X: 3, Z: -60}, restitution)
		e.Body.GravityScale = 0

		r.Step(w, e, dt)

		want := 60 * restitution
		if !approx(e.Body.Velocity.Z, want, 1e-3) {
			t.Errorf("restitution %v: expected vz=%f, got %f", restitution, want, e.Body.Velocity.Z)
		}
		if !approx(e.Body.Velocity.X, 3, 1e-4) {
			t.Errorf("restitution %v: tangential velocity changed to %f", restitution, e.Body.Velocity.X)
		}
	}
}

func TestHeadOnRestitution(t *testing.T) {
	r, w := newTestResolver(t)
	a := w.body(engine.SidePlayer, rl.Vector3{X: -1.2, Z: 5}, rl.Vector3{X: 5}, 0.5)
	b := w.body(engine.SideMonsters, rl.Vector3{X: 1.2, Z: 5}, rl.Vector3{X: -5}, 0.5)
	a.Body.GravityScale = 0
	b.Body.GravityScale = 0

	for i := 0; i < 30 && r.Stats.Contacts == 0; i++ {
		r.Step(w, a, dt)
		r.Step(w, b, dt)
	}
	if r.Stats.Contacts == 0 {
		t.Fatal("Bodies never collided")
	}

	closing := b.Body.Velocity.X - a.Body.Velocity.X
	if !approx(closing, 5, 1e-3) {
		t.Errorf("Expected separation speed 5 (half of 10), got %f", closing)
	}
	if a.Body.Velocity.X >= 0 || b.Body.Velocity.X <= 0 {
		t.Errorf("Bodies should move apart, va=%f vb=%f", a.Body.Velocity.X, b.Body.Velocity.X)
	}
}

func TestSameSidePassesThrough(t *testing.T) {
	r, w := newTestResolver(t)
	a := w.body(engine.SideMonsters, rl.Vector3{X: -1.2, Z: 5}, rl.Vector3{X: 5}, 0.5)
	b := w.body(engine.SideMonsters, rl.Vector3{X: 1.2, Z: 5}, rl.Vector3{X: -5}, 0.5)
	a.Body.GravityScale = 0
	b.Body.GravityScale = 0

	for i := 0; i < 30; i++ {
		r.Step(w, a, dt)
		r.Step(w, b, dt)
	}
	if r.Stats.Contacts != 0 {
		t.Errorf("Same-side bodies collided %d times", r.Stats.Contacts)
	}

	a.Body.Position = rl.Vector3{X: -1.2, Z: 5}
	b.Body.Position = rl.Vector3{X: 1.2, Z: 5}
	a.Body.CollideOwnSide = true
	for i := 0; i < 30 && r.Stats.Contacts == 0; i++ {
		r.Step(w, a, dt)
		r.Step(w, b, dt)
	}
	if r.Stats.Contacts == 0 {
		t.Error("CollideOwnSide should enable same-side collisions")
	}
}

type deathCount struct{ n int }

func (d *deathCount) OnDeath(w engine.WorldAccess, self, source *engine.Entity) { d.n++ }

func TestStartPenetrationKillsNonPlayer(t *testing.T) {
	r, w := newTestResolver(t)
	w.floor()
	hook := &deathCount{}
	e := w.body(engine.SideMonsters, rl.Vector3{Z: 0.2}, rl.Vector3{}, 0.5)
	e.AddBehavior(hook)

	r.Step(w, e, dt)
	r.Step(w, e, dt)

	if !e.Body.Dead() {
		t.Fatal("Body starting inside the floor should be killed")
	}
	if hook.n != 1 {
		t.Errorf("Death hook should fire once, got %d", hook.n)
	}
	if _, in := e.Indexed(); in {
		t.Error("Killed body should leave the index")
	}
	if r.Stats.Kills != 1 {
		t.Errorf("Expected 1 kill, got %d", r.Stats.Kills)
	}
}

func TestStartPenetrationSparesPlayer(t *testing.T) {
	r, w := newTestResolver(t)
	w.floor()
	e := w.body(engine.SidePlayer, rl.Vector3{Z: 0.2}, rl.Vector3{}, 0.5)
	e.Body.Player = true
	w.player = e

	r.Step(w, e, dt)

	if e.Body.Dead() {
		t.Error("Player should not be killed by the start-of-tick check")
	}
}

func TestStartEdgeOverlapThreshold(t *testing.T) {
	cfg := DefaultConfig()
	square := engine.NewFloorSurface(rl.Vector3{}, 4, 4)

	// Cross-section radius at height 0 is 1; half of it is the kill threshold.
	if startOverlap(1, square, rl.Vector3{X: -0.7, Y: 2}, cfg) {
		t.Error("Shallow edge overlap should be tolerated")
	}
	if !startOverlap(1, square, rl.Vector3{X: -0.3, Y: 2}, cfg) {
		t.Error("Deep edge overlap should count as penetration")
	}
	if startOverlap(1, square, rl.Vector3{X: 2, Y: 2, Z: 1 - cfg.StartOverlapTolerance/2}, cfg) {
		t.Error("Face contact within tolerance should be tolerated")
	}
}

type collisionLog struct{ others []*engine.Entity }

func (c *collisionLog) OnCollision(w engine.WorldAccess, self, other *engine.Entity) {
	c.others = append(c.others, other)
}

func TestCollisionHooksAreMutual(t *testing.T) {
	r, w := newTestResolver(t)
	floorLog := &collisionLog{}
	bodyLog := &collisionLog{}
	floor := w.floor().AddBehavior(floorLog)
	e := w.body(engine.SideMonsters, rl.Vector3{Z: 1.5}, rl.Vector3{Z: -60}, 0.5).AddBehavior(bodyLog)

	r.Step(w, e, dt)

	if len(floorLog.others) != 1 || floorLog.others[0] != e {
		t.Errorf("Surface hook should see the body once, got %v", floorLog.others)
	}
	if len(bodyLog.others) != 1 || bodyLog.others[0] != floor {
		t.Errorf("Body hook should see the floor once, got %v", bodyLog.others)
	}
}

type dieOnTouch struct{}

func (dieOnTouch) OnCollision(w engine.WorldAccess, self, other *engine.Entity) {
	w.Kill(self, other)
}

func TestDeadCandidateLeavesIndex(t *testing.T) {
	r, w := newTestResolver(t)
	a := w.body(engine.SidePlayer, rl.Vector3{X: -1.1, Z: 5}, rl.Vector3{X: 30}, 0.5)
	b := w.body(engine.SideMonsters, rl.Vector3{X: 1.1, Z: 5}, rl.Vector3{}, 0.5)
	a.Body.GravityScale = 0
	b.Body.GravityScale = 0
	b.AddBehavior(dieOnTouch{})

	r.Step(w, a, dt)

	if !b.Body.Dead() {
		t.Fatal("Candidate should have died on contact")
	}
	if _, in := b.Indexed(); in {
		t.Error("Dead candidate should be removed from the index")
	}
	if _, in := a.Indexed(); !in {
		t.Error("Surviving body should be reinserted")
	}
}

func TestSpeedClamp(t *testing.T) {
	r, w := newTestResolver(t)
	e := w.body(engine.SideMonsters, rl.Vector3{Z: 10}, rl.Vector3{X: 1000}, 0.5)
	e.Body.GravityScale = 0

	r.Step(w, e, dt)

	limit := 2 * e.Body.Radius / dt
	if got := rl.Vector3Length(e.Body.Velocity); !approx(got, limit, 1e-2) {
		t.Errorf("Expected speed clamped to %f, got %f", limit, got)
	}
	if r.Stats.Clamps != 1 {
		t.Errorf("Expected 1 clamp, got %d", r.Stats.Clamps)
	}
}

func TestRaycast(t *testing.T) {
	_, w := newTestResolver(t)
	floor := w.floor()
	ball := w.body(engine.SideMonsters, rl.Vector3{Z: 2}, rl.Vector3{}, 0.5)

	hit, ok := Raycast(w.grid, rl.Vector3{Z: 10}, rl.Vector3{Z: -1}, 50, nil)
	if !ok || hit.Entity != ball {
		t.Fatalf("Expected to hit the ball first, got %v %v", hit.Entity, ok)
	}
	if !approx(hit.Distance, 7, 1e-4) {
		t.Errorf("Expected distance 7, got %f", hit.Distance)
	}

	onlySurfaces := func(e *engine.Entity) bool { return e.Kind == engine.KindSurface }
	hit, ok = Raycast(w.grid, rl.Vector3{Z: 10}, rl.Vector3{Z: -1}, 50, onlySurfaces)
	if !ok || hit.Entity != floor {
		t.Fatalf("Expected to hit the floor, got %v %v", hit.Entity, ok)
	}
	if !approx(hit.Distance, 10, 1e-4) || !approx(hit.Normal.Z, 1, 1e-5) {
		t.Errorf("Unexpected floor hit %+v", hit)
	}

	if _, ok := Raycast(w.grid, rl.Vector3{X: 20, Z: 10}, rl.Vector3{Z: -1}, 50, nil); ok {
		t.Error("Ray beside the floor should miss")
	}
}
