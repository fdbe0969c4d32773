// Stress test for the chunk-grid broad phase and the swept resolver.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/chunkgen"
	"streamworld/internal/engine"
	"streamworld/internal/spatial"
	"streamworld/internal/world"
)

var ticks = flag.Int("ticks", 300, "Ticks to simulate per drop test")

func main() {
	flag.Parse()

	// Test various object counts
	testCounts := []int{100, 500, 1000, 2000, 5000}

	fmt.Println("Broad phase: chunk grid vs naive pairs")
	for _, count := range testCounts {
		testBroadPhase(count)
	}

	fmt.Println("\nDrop test: bodies falling onto generated terrain")
	for _, count := range testCounts {
		testDrop(count, *ticks)
	}
}

func randomBodies(rng *rand.Rand, count int, spawnSize float32) []*engine.Entity {
	out := make([]*engine.Entity, count)
	for i := range out {
		pos := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize - spawnSize/2,
			Z: 1 + rng.Float32()*20,
		}
		b := engine.NewBody(pos, 0.5+rng.Float32()*0.5) // 0.5 to 1.0 radius
		out[i] = engine.NewBodyEntity(engine.SideNeutral, b)
	}
	return out
}

func testBroadPhase(count int) {
	rng := rand.New(rand.NewSource(42)) // Consistent results
	cfg := world.DefaultConfig()
	spawnSize := float32(cfg.WindowWidth) * cfg.ChunkSize * 0.9

	grid := spatial.NewGrid(cfg.WindowWidth, cfg.WindowHeight, cfg.ChunkSize)
	grid.Shift(spatial.WindowAt(rl.Vector3{}, cfg.ChunkSize, cfg.WindowWidth, cfg.WindowHeight))
	bodies := randomBodies(rng, count, spawnSize)
	for _, e := range bodies {
		grid.Insert(e)
	}

	const iterations = 10

	gridStart := time.Now()
	var gridPairs int
	for iter := 0; iter < iterations; iter++ {
		gridPairs = 0
		for _, a := range bodies {
			grid.QueryRect(a.Bounds(), func(b *engine.Entity) bool {
				if a.ID < b.ID && overlaps(a.Body, b.Body) {
					gridPairs++
				}
				return true
			})
		}
	}
	gridTime := time.Since(gridStart) / iterations

	// Naive O(n²)
	naiveStart := time.Now()
	var naivePairs int
	for iter := 0; iter < iterations; iter++ {
		naivePairs = 0
		for i := 0; i < len(bodies); i++ {
			for j := i + 1; j < len(bodies); j++ {
				if overlaps(bodies[i].Body, bodies[j].Body) {
					naivePairs++
				}
			}
		}
	}
	naiveTime := time.Since(naiveStart) / iterations

	speedup := float64(naiveTime) / float64(gridTime)
	fmt.Printf("%5d objects: grid %8v (%4d pairs) | naive %10v (%4d pairs) | %.1fx speedup\n",
		count, gridTime.Round(time.Microsecond), gridPairs,
		naiveTime.Round(time.Microsecond), naivePairs, speedup)
}

func overlaps(a, b *engine.Body) bool {
	d := rl.Vector3Subtract(a.Position, b.Position)
	r := a.Radius + b.Radius
	return rl.Vector3DotProduct(d, d) < r*r
}

func testDrop(count, ticks int) {
	rng := rand.New(rand.NewSource(7))
	cfg := world.DefaultConfig()
	logger := log.New(io.Discard, "", 0)

	w := world.New(cfg, chunkgen.NewGenerator(cfg.Seed, cfg.ChunkSize, nil, logger), nil, logger)
	w.SetCameraPosition(rl.Vector3{})
	loop := world.NewLoop(w, logger)

	spawnSize := float32(cfg.WindowWidth) * cfg.ChunkSize * 0.9
	added := 0
	for _, e := range randomBodies(rng, count, spawnSize) {
		e.Body.Velocity = rl.Vector3{X: rng.Float32()*20 - 10, Y: rng.Float32()*20 - 10, Z: -rng.Float32() * 40}
		if w.AddEntity(e) {
			added++
		}
	}

	start := time.Now()
	for i := 0; i < ticks; i++ {
		loop.Tick()
	}
	elapsed := time.Since(start)

	// Floors sit at z = 0, so a live body centre below it has tunneled.
	tunneled := 0
	for _, e := range w.Bodies() {
		if !e.Dead() && e.Body.Position.Z < 0 {
			tunneled++
		}
	}
	stats := loop.Totals
	fmt.Printf("%5d bodies: %8v/tick | %6d contacts | %4d clamps | %3d kills | %d tunneled\n",
		added, (elapsed / time.Duration(ticks)).Round(time.Microsecond),
		stats.Contacts, stats.Clamps, stats.Kills, tunneled)
}
