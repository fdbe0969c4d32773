package chunkgen

import (
	"log"

	"github.com/chewxy/math32"

	"streamworld/internal/engine"
	"streamworld/internal/world"
)

func init() {
	engine.RegisterBehavior("wander", func(props map[string]any) engine.Behavior {
		return &Wander{
			Interval: engine.PropFloat(props, "interval", 2),
			Speed:    engine.PropFloat(props, "speed", 2),
			Seed:     uint32(engine.PropFloat(props, "seed", 0)),
		}
	})
}

// Wander changes a body's horizontal heading every Interval seconds. The
// heading sequence is a hash of the entity ID so replays match.
type Wander struct {
	Interval float32
	Speed    float32
	Seed     uint32

	timer float32
	turns int32
}

func (b *Wander) Update(w engine.WorldAccess, self *engine.Entity, dt float32) {
	if self.Kind != engine.KindBody {
		return
	}
	b.timer -= dt
	if b.timer > 0 {
		return
	}
	b.timer = b.Interval
	b.turns++

	angle := unit(Hash2(b.Seed, int32(self.ID), b.turns)) * 2 * math32.Pi
	self.Body.Velocity.X = math32.Cos(angle) * b.Speed
	self.Body.Velocity.Y = math32.Sin(angle) * b.Speed
}

// Conquest is shared by the monsters of one chunk. When the last one dies
// the chunk is flagged conquered and stops spawning monsters.
type Conquest struct {
	Chunk engine.ChunkCoord
	Store *world.FlagStore
	Lair  *engine.Structure
	// Logger reports conquests. nil means log.Default().
	Logger *log.Logger

	remaining int
}

func (c *Conquest) OnDeath(w engine.WorldAccess, self, source *engine.Entity) {
	c.remaining--
	if c.Lair != nil {
		c.Lair.Health = float32(c.remaining)
	}
	if c.remaining > 0 || c.Store == nil {
		return
	}
	c.Store.Set(c.Chunk, world.FlagConquered)
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("chunkgen: chunk %s conquered", c.Chunk)
}

// Remaining is the number of monsters still alive.
func (c *Conquest) Remaining() int {
	return c.remaining
}
