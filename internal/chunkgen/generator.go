package chunkgen

import (
	"log"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/world"
)

// Feature is the static layout picked for a chunk.
type Feature uint8

const (
	FeatureNone Feature = iota
	FeatureWall
	FeatureRamp
)

// Generator is the demo chunk provider. Output depends only on the seed, the
// chunk coordinate and the chunk flags.
type Generator struct {
	Seed      uint32
	ChunkSize float32

	// WallHeight is the height of generated walls.
	WallHeight float32
	// MaxMonsters caps monsters per chunk.
	MaxMonsters int
	// Store receives FlagConquered when a chunk's monsters are all dead.
	// It may be nil.
	Store *world.FlagStore
	// MonsterSound is a looping sound file attached to every monster
	// through the "emitter" behaviour, if one is registered.
	MonsterSound string

	logger *log.Logger
}

// NewGenerator creates a generator. logger may be nil.
func NewGenerator(seed uint32, chunkSize float32, store *world.FlagStore, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		Seed:        seed,
		ChunkSize:   chunkSize,
		WallHeight:  3,
		MaxMonsters: 3,
		Store:       store,
		logger:      logger,
	}
}

// FeatureAt returns the static feature of chunk c.
func (g *Generator) FeatureAt(c engine.ChunkCoord) Feature {
	switch Hash2(g.Seed, c.X, c.Y) % 8 {
	case 0, 1:
		return FeatureWall
	case 2:
		return FeatureRamp
	}
	return FeatureNone
}

// MonsterCount returns how many monsters an unconquered chunk holds.
func (g *Generator) MonsterCount(c engine.ChunkCoord) int {
	if g.MaxMonsters <= 0 || g.FeatureAt(c) == FeatureRamp {
		return 0
	}
	return int((Hash2(g.Seed, c.X, c.Y) >> 8) % uint32(g.MaxMonsters+1))
}

func (g *Generator) GenerateChunk(c engine.ChunkCoord, flags world.ChunkFlags) []*engine.Entity {
	size := g.ChunkSize
	origin := rl.Vector3{X: float32(c.X) * size, Y: float32(c.Y) * size}

	out := []*engine.Entity{
		engine.NewSurfaceEntity(c, engine.NewFloorSurface(origin, size, size)),
	}

	switch g.FeatureAt(c) {
	case FeatureWall:
		out = append(out, engine.NewSurfaceEntity(c, g.wall(c, origin)))
	case FeatureRamp:
		out = append(out, engine.NewSurfaceEntity(c, g.ramp(origin)))
	}

	if flags&world.FlagConquered != 0 {
		return out
	}
	n := g.MonsterCount(c)
	if n == 0 {
		return out
	}

	lair := &engine.Structure{
		Name:     "lair",
		Position: rl.Vector3{X: origin.X + size/2, Y: origin.Y + size/2},
		Health:   float32(n),
	}
	out = append(out, engine.NewStructureEntity(engine.SideMonsters, c, lair))

	conquest := &Conquest{Chunk: c, Store: g.Store, Lair: lair, Logger: g.logger, remaining: n}
	for i := 0; i < n; i++ {
		out = append(out, g.monster(c, origin, i, conquest))
	}
	return out
}

// wall runs along the low X or low Y edge of the chunk, inset by an eighth
// of its size.
func (g *Generator) wall(c engine.ChunkCoord, origin rl.Vector3) *engine.Surface {
	size := g.ChunkSize
	inset := size / 8
	base := rl.Vector3{X: origin.X + inset, Y: origin.Y + inset}
	heading := float32(0)
	if Hash3(g.Seed, c.X, c.Y, -1)&1 == 1 {
		heading = math32.Pi / 2
	}
	return engine.NewWallSurface(base, heading, size-2*inset, g.WallHeight)
}

// ramp is a right triangle tilted up around its local X axis.
func (g *Generator) ramp(origin rl.Vector3) *engine.Surface {
	size := g.ChunkSize
	leg := size / 2
	m := rl.MatrixMultiply(
		rl.MatrixRotateX(math32.Pi/8),
		rl.MatrixTranslate(origin.X+size/4, origin.Y+size/4, 0.05),
	)
	footprint := []rl.Vector2{{X: 0, Y: 0}, {X: leg, Y: 0}, {X: 0, Y: leg}}
	return engine.NewSurface(m, leg, leg, footprint)
}

func (g *Generator) monster(c engine.ChunkCoord, origin rl.Vector3, i int, conquest *Conquest) *engine.Entity {
	size := g.ChunkSize
	h := Hash3(g.Seed, c.X, c.Y, int32(i))
	radius := 0.4 + 0.4*unit(Hash32(h))

	// Monsters stay in the far corner region, clear of the wall.
	lo, span := 0.3*size, 0.6*size
	pos := rl.Vector3{
		X: origin.X + lo + span*unit(h),
		Y: origin.Y + lo + span*unit(Hash32(h^0x5bd1e995)),
		Z: radius + 0.1,
	}

	b := engine.NewBody(pos, radius)
	b.Restitution = 0.2
	e := engine.NewBodyEntity(engine.SideMonsters, b)
	e.AddBehavior(conquest)
	e.AddBehavior(engine.CreateBehavior("wander", map[string]any{
		"interval": 1.5 + unit(Hash32(h+1)),
		"speed":    2,
		"seed":     int(g.Seed),
	}))
	if g.MonsterSound != "" {
		if s := engine.CreateBehavior("emitter", map[string]any{"path": g.MonsterSound}); s != nil {
			e.AddBehavior(s)
		}
	}
	return e
}
