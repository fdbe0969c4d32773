package audio

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestNewListenerFrame(t *testing.T) {
	l := NewListener(rl.Vector3{}, rl.Vector3{X: 2}, rl.Vector3{Z: 1})
	if l.Forward != (rl.Vector3{X: 1}) {
		t.Errorf("Expected normalized forward, got %v", l.Forward)
	}
	// Facing +X with +Z up, right is -Y.
	if !near(l.Right.Y, -1) {
		t.Errorf("Expected right (0,-1,0), got %v", l.Right)
	}
}

func TestSpatialize(t *testing.T) {
	l := NewListener(rl.Vector3{}, rl.Vector3{X: 1}, rl.Vector3{Z: 1})

	tests := []struct {
		name     string
		pos      rl.Vector3
		vol, pan float32
	}{
		{"on top", rl.Vector3{}, 1, 0.5},
		{"ahead", rl.Vector3{X: 25}, 0.5, 0.5},
		{"right", rl.Vector3{Y: -25}, 0.5, 1},
		{"left", rl.Vector3{Y: 25}, 0.5, 0},
		{"behind", rl.Vector3{X: -25}, 0.5, 0.5},
		{"out of range", rl.Vector3{X: 60}, 0, 0.5},
	}
	for _, tt := range tests {
		vol, pan := Spatialize(l, tt.pos, 1, 50)
		if !near(vol, tt.vol) || !near(pan, tt.pan) {
			t.Errorf("%s: expected (%.2f, %.2f), got (%.2f, %.2f)", tt.name, tt.vol, tt.pan, vol, pan)
		}
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if _, ok := m.Open("growl.wav"); ok {
		t.Error("A nil manager should not open voices")
	}
	m.Play(1, true)
	m.Place(1, rl.Vector3{X: 1}, 1, 10)
	m.Update()
	m.Release(1)
	m.Close()
}

func TestEmitterWithoutDevice(t *testing.T) {
	b, ok := engine.CreateBehavior("emitter", map[string]any{"path": "growl.wav"}).(*Emitter)
	if !ok {
		t.Fatal("emitter should be registered")
	}
	if b.Path != "growl.wav" || !b.Loop {
		t.Errorf("Unexpected emitter %+v", b)
	}

	e := engine.NewBodyEntity(engine.SideMonsters, engine.NewBody(rl.Vector3{}, 1)).AddBehavior(b)
	engine.RunUpdate(nil, e, 0.1)
	engine.RunUpdate(nil, e, 0.1)
	if n := Device().Active(); n != 0 {
		t.Errorf("Expected no voices without a device, got %d", n)
	}

	engine.Release(e)
	if !b.Released() {
		t.Error("Release hook should run")
	}
}
