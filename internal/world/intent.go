package world

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
)

// IntentKind selects what an Intent does to its target.
type IntentKind uint8

const (
	IntentSetVelocity IntentKind = iota
	IntentAddVelocity
	IntentKill
	IntentTeleport
)

func (k IntentKind) String() string {
	switch k {
	case IntentSetVelocity:
		return "set_velocity"
	case IntentAddVelocity:
		return "add_velocity"
	case IntentKill:
		return "kill"
	case IntentTeleport:
		return "teleport"
	}
	return "unknown"
}

// Intent is a request from outside the tick goroutine. It is applied at the
// start of the next tick; intents whose target is gone are dropped.
type Intent struct {
	Kind   IntentKind
	Target engine.EntityRef
	Vector rl.Vector3
}

func SetVelocity(target engine.EntityRef, v rl.Vector3) Intent {
	return Intent{Kind: IntentSetVelocity, Target: target, Vector: v}
}

func AddVelocity(target engine.EntityRef, dv rl.Vector3) Intent {
	return Intent{Kind: IntentAddVelocity, Target: target, Vector: dv}
}

func KillIntent(target engine.EntityRef) Intent {
	return Intent{Kind: IntentKill, Target: target}
}

func Teleport(target engine.EntityRef, pos rl.Vector3) Intent {
	return Intent{Kind: IntentTeleport, Target: target, Vector: pos}
}

// apply reports whether the intent found a live body.
func (in Intent) apply(w *World) bool {
	e := in.Target.Get(w)
	if e == nil || e.Kind != engine.KindBody || e.Dead() {
		return false
	}
	b := e.Body
	switch in.Kind {
	case IntentSetVelocity:
		b.Velocity = in.Vector
	case IntentAddVelocity:
		b.Velocity = rl.Vector3Add(b.Velocity, in.Vector)
	case IntentKill:
		w.Kill(e, nil)
	case IntentTeleport:
		w.grid.Remove(e)
		b.Position = in.Vector
		if !w.grid.Insert(e) {
			w.RemoveEntity(e)
		}
	default:
		return false
	}
	return true
}
