package stream

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"streamworld/internal/engine"
	"streamworld/internal/world"
)

// BodyState is the wire form of one body.
type BodyState struct {
	ID     uint32     `msgpack:"id"`
	Side   uint8      `msgpack:"s"`
	Pos    [3]float32 `msgpack:"p"`
	Vel    [3]float32 `msgpack:"v"`
	Radius float32    `msgpack:"r"`
	Dead   bool       `msgpack:"d,omitempty"`
	Player bool       `msgpack:"pl,omitempty"`
}

// SurfaceState is the wire form of one surface: its world-space polygon.
type SurfaceState struct {
	ID     uint32       `msgpack:"id"`
	Chunk  [2]int32     `msgpack:"c"`
	Floor  bool         `msgpack:"f,omitempty"`
	Points [][3]float32 `msgpack:"pts"`
}

// Snapshot is the read-only state of one tick handed to remote viewers.
type Snapshot struct {
	Tick     uint64         `msgpack:"t"`
	Window   [4]int32       `msgpack:"w"`
	Bodies   []BodyState    `msgpack:"b"`
	Surfaces []SurfaceState `msgpack:"sf"`
}

// Capture copies the resident state of w. It must run on the tick goroutine.
func Capture(w *world.World, tick uint64) Snapshot {
	win := w.Window()
	s := Snapshot{
		Tick:   tick,
		Window: [4]int32{win.MinX, win.MinY, win.MaxX, win.MaxY},
	}
	for _, e := range w.Bodies() {
		b := e.Body
		s.Bodies = append(s.Bodies, BodyState{
			ID:     uint32(e.ID),
			Side:   uint8(e.Side),
			Pos:    [3]float32{b.Position.X, b.Position.Y, b.Position.Z},
			Vel:    [3]float32{b.Velocity.X, b.Velocity.Y, b.Velocity.Z},
			Radius: b.Radius,
			Dead:   b.Dead(),
			Player: e.IsPlayer(),
		})
	}
	for _, e := range w.Surfaces() {
		s.Surfaces = append(s.Surfaces, surfaceState(e))
	}
	return s
}

func surfaceState(e *engine.Entity) SurfaceState {
	corners := e.Surface.WorldFootprint()
	pts := make([][3]float32, len(corners))
	for i, p := range corners {
		pts[i] = [3]float32{p.X, p.Y, p.Z}
	}
	return SurfaceState{
		ID:     uint32(e.ID),
		Chunk:  [2]int32{e.Chunk.X, e.Chunk.Y},
		Floor:  e.Surface.Floor,
		Points: pts,
	}
}

func Encode(s *Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %d: %w", s.Tick, err)
	}
	return data, nil
}

func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
