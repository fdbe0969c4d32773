package world

import (
	"log"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/physics"
	"streamworld/internal/spatial"
)

// World owns the spatial index and the canonical entity lists. All methods
// must be called from the tick goroutine.
type World struct {
	Config Config

	grid       *spatial.Grid
	factions   [engine.NumSides]*engine.EntityList
	updatable  *engine.EntityList
	structures map[engine.ChunkCoord][]*engine.Entity
	byID       map[engine.EntityID]*engine.Entity

	provider ChunkProvider
	flags    FlagSource
	player   *engine.Entity

	inTick  bool
	pending []*engine.Entity
	logger  *log.Logger

	// Generated counts provider calls since creation.
	Generated int

	ChunkLoaded   engine.EventWithArg[engine.ChunkCoord]
	ChunkEvicted  engine.EventWithArg[engine.ChunkCoord]
	EntityRemoved engine.EventWithArg[*engine.Entity]
}

// New creates an empty world. Nothing is resident until the first
// SetCameraPosition. flags may be nil.
func New(cfg Config, provider ChunkProvider, flags FlagSource, logger *log.Logger) *World {
	if flags == nil {
		flags = NoFlags
	}
	if logger == nil {
		logger = log.Default()
	}
	w := &World{
		Config:     cfg,
		grid:       spatial.NewGrid(cfg.WindowWidth, cfg.WindowHeight, cfg.ChunkSize),
		updatable:  engine.NewUpdatableList(),
		structures: make(map[engine.ChunkCoord][]*engine.Entity),
		byID:       make(map[engine.EntityID]*engine.Entity),
		provider:   provider,
		flags:      flags,
		logger:     logger,
	}
	for i := range w.factions {
		w.factions[i] = engine.NewFactionList()
	}
	return w
}

func (w *World) Grid() *spatial.Grid {
	return w.grid
}

func (w *World) Window() engine.ChunkRect {
	return w.grid.Window()
}

// Faction returns the canonical list of one side.
func (w *World) Faction(side engine.Side) *engine.EntityList {
	return w.factions[side]
}

// Updatable returns the entities iterated each tick.
func (w *World) Updatable() *engine.EntityList {
	return w.updatable
}

// Bodies returns every live body, in faction order.
func (w *World) Bodies() []*engine.Entity {
	var out []*engine.Entity
	for _, l := range w.factions {
		for _, e := range l.Items() {
			if e.Kind == engine.KindBody {
				out = append(out, e)
			}
		}
	}
	return out
}

// Surfaces returns every resident surface.
func (w *World) Surfaces() []*engine.Entity {
	var out []*engine.Entity
	for _, e := range w.factions[engine.SideWorld].Items() {
		if e.Kind == engine.KindSurface {
			out = append(out, e)
		}
	}
	return out
}

// Structures returns the structures owned by chunk c.
func (w *World) Structures(c engine.ChunkCoord) []*engine.Entity {
	return w.structures[c]
}

func (w *World) Len() int {
	return len(w.byID)
}

// AddEntity admits e if it overlaps the active window. Physical entities go
// into the index; structures need their chunk to be resident.
func (w *World) AddEntity(e *engine.Entity) bool {
	if _, ok := w.byID[e.ID]; ok {
		return false
	}
	switch e.Kind {
	case engine.KindBody, engine.KindSurface:
		if !w.grid.Insert(e) {
			return false
		}
	case engine.KindStructure:
		if !w.grid.Contains(e.Chunk) {
			return false
		}
		w.structures[e.Chunk] = append(w.structures[e.Chunk], e)
	default:
		return false
	}

	w.factions[e.Side].Add(e)
	if e.Updatable() {
		w.updatable.Add(e)
	}
	w.byID[e.ID] = e
	if e.IsPlayer() && w.player == nil {
		w.player = e
	}
	return true
}

// RemoveEntity takes e out of the index and every list, then releases its
// resources. Removing an absent entity does nothing.
func (w *World) RemoveEntity(e *engine.Entity) {
	if _, ok := w.byID[e.ID]; !ok {
		return
	}
	switch e.Kind {
	case engine.KindBody, engine.KindSurface:
		w.grid.Remove(e)
	case engine.KindStructure:
		list := w.structures[e.Chunk]
		if i := slices.Index(list, e); i >= 0 {
			list = slices.Delete(list, i, i+1)
		}
		if len(list) == 0 {
			delete(w.structures, e.Chunk)
		} else {
			w.structures[e.Chunk] = list
		}
	}

	w.factions[e.Side].Remove(e)
	w.updatable.Remove(e)
	delete(w.byID, e.ID)
	if w.player == e {
		w.player = nil
	}
	engine.Release(e)
	w.EntityRemoved.Invoke(e)
}

// SetCameraPosition recentres the window on pos. The first call generates
// every chunk; later calls evict the chunks that left and generate the ones
// that entered. It reports whether the window moved.
func (w *World) SetCameraPosition(pos rl.Vector3) bool {
	window := spatial.WindowAt(pos, w.Config.ChunkSize, w.Config.WindowWidth, w.Config.WindowHeight)
	old := w.grid.Window()
	bootstrap := old.Empty()

	evicted, entering := w.grid.Shift(window)
	if len(entering) == 0 {
		return false
	}

	for _, e := range evicted {
		w.RemoveEntity(e)
	}
	if !bootstrap {
		old.Each(func(c engine.ChunkCoord) {
			if window.Contains(c) {
				return
			}
			for _, s := range slices.Clone(w.structures[c]) {
				w.RemoveEntity(s)
			}
			w.ChunkEvicted.Invoke(c)
		})
	}

	n := 0
	for _, c := range entering {
		n += w.generate(c)
	}
	w.logger.Printf("world: window %d,%d..%d,%d: %d chunks in, %d surfaces out, %d entities generated",
		window.MinX, window.MinY, window.MaxX, window.MaxY, len(entering), len(evicted), n)
	return true
}

func (w *World) generate(c engine.ChunkCoord) int {
	added := 0
	if w.provider != nil {
		w.Generated++
		for _, e := range w.provider.GenerateChunk(c, w.flags.ChunkFlags(c)) {
			if w.AddEntity(e) {
				added++
			}
		}
	}
	w.ChunkLoaded.Invoke(c)
	return added
}

// CullInactive ages every updatable entity and removes bodies that left the
// window or outlived their death window.
func (w *World) CullInactive(dt float32) {
	for i := w.updatable.Len() - 1; i >= 0; i-- {
		if i >= w.updatable.Len() {
			continue
		}
		e := w.updatable.At(i)
		if e.Kind != engine.KindBody {
			continue
		}
		b := e.Body
		b.Age += dt
		if b.Expired(w.Config.DeathWindow) || !w.grid.Contains(spatial.ChunkOf(b.Position.X, b.Position.Y, w.Config.ChunkSize)) {
			w.RemoveEntity(e)
		}
	}
}

// Kill marks target dead, runs its death hooks once and drops it from the
// index.
func (w *World) Kill(target, source *engine.Entity) {
	if engine.Kill(w, target, source) {
		w.grid.Remove(target)
	}
}

// Spawn adds e now, or at the end of the current tick.
func (w *World) Spawn(e *engine.Entity) {
	if w.inTick {
		w.pending = append(w.pending, e)
		return
	}
	w.AddEntity(e)
}

func (w *World) Player() *engine.Entity {
	return w.player
}

// SetPlayer marks e as the player body.
func (w *World) SetPlayer(e *engine.Entity) {
	if e != nil && e.Kind == engine.KindBody {
		e.Body.Player = true
	}
	w.player = e
}

func (w *World) Entity(id engine.EntityID) *engine.Entity {
	return w.byID[id]
}

func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (engine.RaycastResult, bool) {
	return physics.Raycast(w.grid, origin, direction, maxDistance, nil)
}

func (w *World) beginTick() {
	w.inTick = true
}

func (w *World) endTick() {
	w.inTick = false
	pending := w.pending
	w.pending = nil
	for _, e := range pending {
		w.AddEntity(e)
	}
}
