package world

import (
	"log"
	"slices"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/physics"
)

// Loop drives a World at a fixed logical rate. Queue may be called from any
// goroutine; every other method belongs to the tick goroutine.
type Loop struct {
	World    *World
	Resolver *physics.Resolver

	// Totals sums resolver stats over every tick. Resolver.Stats holds the
	// last tick only.
	Totals physics.Stats

	step        time.Duration
	dt          float32
	accumulator time.Duration
	ticks       uint64
	follow      engine.EntityRef

	mu      sync.Mutex
	intents []Intent
	drained []Intent

	logger *log.Logger

	// Ticked fires after every tick with the new tick count.
	Ticked engine.EventWithArg[uint64]
}

func NewLoop(w *World, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		World:    w,
		Resolver: physics.NewResolver(w.Config.Physics, w.Grid(), logger),
		step:     w.Config.TickDuration(),
		dt:       w.Config.Dt(),
		logger:   logger,
	}
}

// Advance adds elapsed wall time to the accumulator and runs the ticks it
// pays for, at most MaxTicksPerAdvance. Backlog past the cap is dropped and
// only the sub-step remainder is carried.
func (l *Loop) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		l.accumulator += elapsed
	}
	n := 0
	for l.accumulator >= l.step && n < l.World.Config.MaxTicksPerAdvance {
		l.Tick()
		l.accumulator -= l.step
		n++
	}
	if l.accumulator >= l.step {
		dropped := l.accumulator / l.step
		l.accumulator %= l.step
		l.logger.Printf("loop: behind by %d ticks, dropping backlog", dropped)
	}
	return n
}

// Tick runs one logical step.
func (l *Loop) Tick() {
	w := l.World
	l.drainIntents()
	l.Resolver.Stats.Reset()

	w.beginTick()
	w.CullInactive(l.dt)
	for _, e := range slices.Clone(w.Updatable().Items()) {
		if e.Kind == engine.KindBody {
			l.Resolver.Step(w, e, l.dt)
		}
		if !e.Dead() {
			engine.RunUpdate(w, e, l.dt)
		}
	}
	w.endTick()
	l.Totals.Add(l.Resolver.Stats)

	if e := l.follow.Get(w); e != nil {
		w.SetCameraPosition(e.Position())
	}
	l.ticks++
	l.Ticked.Invoke(l.ticks)
}

// Queue schedules an intent for the next tick.
func (l *Loop) Queue(in Intent) {
	l.mu.Lock()
	l.intents = append(l.intents, in)
	l.mu.Unlock()
}

func (l *Loop) drainIntents() {
	l.mu.Lock()
	l.intents, l.drained = l.drained[:0], l.intents
	l.mu.Unlock()
	for _, in := range l.drained {
		in.apply(l.World)
	}
}

// Follow makes the window track e after every tick. nil stops following.
func (l *Loop) Follow(e *engine.Entity) {
	l.follow.Set(e)
	if e != nil && l.World.Entity(e.ID) != nil {
		l.World.SetCameraPosition(e.Position())
	}
}

func (l *Loop) SetCameraPosition(pos rl.Vector3) bool {
	return l.World.SetCameraPosition(pos)
}

// Alpha is the fraction of a step left in the accumulator, for render
// interpolation.
func (l *Loop) Alpha() float32 {
	return float32(l.accumulator) / float32(l.step)
}

func (l *Loop) TickCount() uint64 {
	return l.ticks
}

func (l *Loop) Dt() float32 {
	return l.dt
}
