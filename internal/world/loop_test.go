package world

import (
	"sync"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	w := New(testConfig(), nil, nil, quietLogger())
	w.SetCameraPosition(rl.Vector3{})
	return NewLoop(w, quietLogger())
}

func floatingBody(pos rl.Vector3) *engine.Entity {
	b := engine.NewBody(pos, 0.5)
	b.GravityScale = 0
	return engine.NewBodyEntity(engine.SideNeutral, b)
}

func TestAdvanceRunsWholeSteps(t *testing.T) {
	l := newTestLoop(t)

	if n := l.Advance(50 * time.Millisecond); n != 3 {
		t.Errorf("Expected 3 ticks for 50ms at 60Hz, got %d", n)
	}
	if a := l.Alpha(); a < 0 || a >= 1 {
		t.Errorf("Alpha should be in [0,1), got %f", a)
	}
	if n := l.Advance(20 * time.Millisecond); n != 1 {
		t.Errorf("Expected carried remainder to pay for 1 tick, got %d", n)
	}
	if l.TickCount() != 4 {
		t.Errorf("Expected 4 ticks total, got %d", l.TickCount())
	}
}

func TestAdvanceCapsAndDropsBacklog(t *testing.T) {
	l := newTestLoop(t)

	if n := l.Advance(time.Second); n != 5 {
		t.Errorf("Expected 5 ticks (capped), got %d", n)
	}
	if l.Alpha() >= 1 {
		t.Errorf("Backlog should be dropped, alpha %f", l.Alpha())
	}
	if n := l.Advance(0); n != 0 {
		t.Errorf("Expected no ticks after dropping backlog, got %d", n)
	}
}

func TestQueueFromGoroutines(t *testing.T) {
	l := newTestLoop(t)
	e := floatingBody(rl.Vector3{X: 4, Y: 4, Z: 4})
	l.World.AddEntity(e)
	ref := engine.RefTo(e)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Queue(AddVelocity(ref, rl.Vector3{X: 1}))
		}()
	}
	wg.Wait()

	l.Tick()
	if e.Body.Velocity.X != 8 {
		t.Errorf("Expected velocity 8 after 8 intents, got %f", e.Body.Velocity.X)
	}
	if e.Body.Position.X <= 4 {
		t.Errorf("Body should have moved in the same tick, got x=%f", e.Body.Position.X)
	}

	l.Queue(SetVelocity(ref, rl.Vector3{}))
	l.Tick()
	if e.Body.Velocity != (rl.Vector3{}) {
		t.Errorf("Expected zero velocity, got %v", e.Body.Velocity)
	}
}

func TestKillIntentAndStaleRefs(t *testing.T) {
	l := newTestLoop(t)
	hooks := &deathCounter{}
	e := floatingBody(rl.Vector3{X: 4, Y: 4, Z: 4})
	e.AddBehavior(hooks)
	l.World.AddEntity(e)
	ref := engine.RefTo(e)

	l.Queue(KillIntent(ref))
	l.Queue(KillIntent(ref))
	l.Tick()
	if hooks.n != 1 {
		t.Errorf("Expected one death, got %d", hooks.n)
	}

	l.World.RemoveEntity(e)
	l.Queue(SetVelocity(ref, rl.Vector3{X: 3}))
	l.Tick()
	if e.Body.Velocity.X == 3 {
		t.Error("Intent for a removed entity should be dropped")
	}
}

func TestTeleportOutsideWindowRemoves(t *testing.T) {
	l := newTestLoop(t)
	e := floatingBody(rl.Vector3{X: 4, Y: 4, Z: 4})
	l.World.AddEntity(e)

	l.Queue(Teleport(engine.RefTo(e), rl.Vector3{X: 1000, Y: 1000}))
	l.Tick()
	if l.World.Entity(e.ID) != nil {
		t.Error("Body teleported out of the window should be removed")
	}
}

type spawner struct {
	child       *engine.Entity
	seenInTick  bool
	spawnedOnce bool
}

func (s *spawner) Update(w engine.WorldAccess, self *engine.Entity, dt float32) {
	if s.spawnedOnce {
		return
	}
	s.spawnedOnce = true
	w.Spawn(s.child)
	s.seenInTick = w.Entity(s.child.ID) != nil
}

func TestSpawnFromUpdaterAppliesAfterTick(t *testing.T) {
	l := newTestLoop(t)
	sp := &spawner{child: floatingBody(rl.Vector3{X: 2, Y: 2, Z: 2})}
	e := floatingBody(rl.Vector3{X: 4, Y: 4, Z: 4})
	e.AddBehavior(sp)
	l.World.AddEntity(e)

	l.Tick()
	if sp.seenInTick {
		t.Error("Spawned entity should not be visible during the tick")
	}
	if l.World.Entity(sp.child.ID) == nil {
		t.Error("Spawned entity should exist after the tick")
	}
}

func TestFollowShiftsWindow(t *testing.T) {
	l := newTestLoop(t)
	b := engine.NewBody(rl.Vector3{X: 8, Y: 8, Z: 40}, 8)
	b.GravityScale = 0
	b.Velocity = rl.Vector3{X: 600}
	e := engine.NewBodyEntity(engine.SidePlayer, b)
	l.World.AddEntity(e)
	l.Follow(e)

	moved := 0
	l.World.ChunkLoaded.AddListener(func(engine.ChunkCoord) { moved++ })

	l.Tick()
	if got := l.World.Window().MinX; got != -1 {
		t.Errorf("Expected window to follow to MinX -1, got %d", got)
	}
	if moved != 4 {
		t.Errorf("Expected one column loaded, got %d chunks", moved)
	}

	l.Follow(nil)
	l.Tick()
	l.Tick()
	if c := e.Body.Position.X; c < 32 {
		t.Fatalf("Expected body to reach chunk 2, x=%f", c)
	}
	if got := l.World.Window().MinX; got != -1 {
		t.Errorf("Window should stop following, got MinX %d", got)
	}
}

func TestStatsResetPerTick(t *testing.T) {
	cfg := testConfig()
	w := New(cfg, newCountingProvider(cfg.ChunkSize), nil, quietLogger())
	w.SetCameraPosition(rl.Vector3{})
	l := NewLoop(w, quietLogger())

	w.AddEntity(engine.NewBodyEntity(engine.SideNeutral, engine.NewBody(rl.Vector3{X: 8, Y: 8, Z: 1.5}, 0.5)))
	for i := 0; i < 60; i++ {
		l.Tick()
	}

	if l.Totals.Contacts == 0 {
		t.Error("A falling body should have touched the floor")
	}
	if l.Totals.Substeps < 60 {
		t.Errorf("Expected at least one substep per tick, got %d", l.Totals.Substeps)
	}
	if l.Resolver.Stats.Substeps >= l.Totals.Substeps {
		t.Errorf("Per-tick stats should be reset, got %d of %d", l.Resolver.Stats.Substeps, l.Totals.Substeps)
	}
}
