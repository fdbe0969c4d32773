package engine

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type deathCounter struct {
	calls  int
	source *Entity
}

func (d *deathCounter) OnDeath(w WorldAccess, self, source *Entity) {
	d.calls++
	d.source = source
}

func TestKillFiresDeathHookOnce(t *testing.T) {
	hook := &deathCounter{}
	e := NewBodyEntity(SideMonsters, NewBody(rl.Vector3{}, 1)).AddBehavior(hook)
	killer := NewBodyEntity(SidePlayer, NewBody(rl.Vector3{}, 1))
	w := newFakeWorld(e, killer)

	e.Body.Age = 3
	if !Kill(w, e, killer) {
		t.Fatal("First kill should report true")
	}
	e.Body.Age = 4
	if Kill(w, e, nil) {
		t.Error("Second kill should report false")
	}

	if hook.calls != 1 {
		t.Errorf("Expected death hook once, got %d", hook.calls)
	}
	if hook.source != killer {
		t.Error("Death hook should receive the killer as source")
	}
	if e.Body.DeathAge != 3 {
		t.Errorf("DeathAge should stay at first kill age 3, got %f", e.Body.DeathAge)
	}
}

func TestKillIgnoresNonBodies(t *testing.T) {
	s := NewSurfaceEntity(ChunkCoord{}, NewFloorSurface(rl.Vector3{}, 1, 1))
	if Kill(newFakeWorld(s), s, nil) {
		t.Error("Surfaces cannot be killed")
	}
}

func TestBodyExpired(t *testing.T) {
	b := NewBody(rl.Vector3{}, 1)
	b.Age = 2
	b.MarkDead()

	b.Age = 2.5
	if b.Expired(1) {
		t.Error("Body should not expire inside the death window")
	}
	b.Age = 3.1
	if !b.Expired(1) {
		t.Error("Body should expire past the death window")
	}
}
