// Headless simulation that streams msgpack snapshots to websocket clients
// and accepts JSON intents from them.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/chunkgen"
	"streamworld/internal/engine"
	"streamworld/internal/stream"
	"streamworld/internal/world"
)

var (
	addr       = flag.String("addr", ":8080", "HTTP listen address")
	configPath = flag.String("config", "world.json", "World config file")
	every      = flag.Int("snapshot-every", 3, "Broadcast a snapshot every N ticks")
)

func main() {
	flag.Parse()

	cfg, err := world.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flags := world.NewFlagStore()
	gen := chunkgen.NewGenerator(cfg.Seed, cfg.ChunkSize, flags, log.Default())
	w := world.New(cfg, gen, flags, log.Default())
	loop := world.NewLoop(w, log.Default())

	spawn := rl.Vector3{X: cfg.ChunkSize / 2, Y: cfg.ChunkSize / 2, Z: 3}
	w.SetCameraPosition(spawn)
	b := engine.NewBody(spawn, 0.6)
	b.Player = true
	player := engine.NewBodyEntity(engine.SidePlayer, b)
	if !w.AddEntity(player) {
		log.Fatalf("Failed to place player at %v", spawn)
	}
	loop.Follow(player)
	log.Printf("Player is entity %d", player.ID)

	hub := stream.NewHub(loop, log.Default())
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("Listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, loop, hub, *every)

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}

// run is the tick goroutine. It owns the world until ctx is done.
func run(ctx context.Context, loop *world.Loop, hub *stream.Hub, every int) {
	if every < 1 {
		every = 1
	}
	ticker := time.NewTicker(loop.World.Config.TickDuration())
	defer ticker.Stop()

	last := time.Now()
	sent := loop.TickCount()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			loop.Advance(now.Sub(last))
			last = now

			if loop.TickCount()-sent < uint64(every) || hub.Clients() == 0 {
				continue
			}
			sent = loop.TickCount()
			snap := stream.Capture(loop.World, sent)
			data, err := stream.Encode(&snap)
			if err != nil {
				log.Printf("Snapshot: %v", err)
				continue
			}
			hub.Broadcast(data)
		}
	}
}
