package game

import (
	"fmt"
	"log"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/assets"
	"streamworld/internal/audio"
	"streamworld/internal/camera"
	"streamworld/internal/chunkgen"
	"streamworld/internal/engine"
	"streamworld/internal/physics"
	"streamworld/internal/world"
)

type Game struct {
	World     *world.World
	Loop      *world.Loop
	Flags     *world.FlagStore
	Generator *chunkgen.Generator
	Camera    *camera.ChaseCamera
	Renderer  *Renderer
	Player    *engine.Entity
	Tunables  Tunables

	DebugMode bool
	ShowHUD   bool
	JumpSpeed float32

	logger *log.Logger
	sound  *audio.Manager

	loaded, evicted int

	// Debug timing (ms)
	updateMs float64
	drawMs   float64
}

// New builds a world streamed from the demo generator. monsterSound may be
// empty for silent monsters.
func New(cfg world.Config, palette assets.Palette, monsterSound string, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	flags := world.NewFlagStore()
	gen := chunkgen.NewGenerator(cfg.Seed, cfg.ChunkSize, flags, logger)
	gen.MonsterSound = monsterSound

	w := world.New(cfg, gen, flags, logger)
	g := &Game{
		World:     w,
		Loop:      world.NewLoop(w, logger),
		Flags:     flags,
		Generator: gen,
		Camera:    camera.New(rl.Vector3{}),
		Renderer:  NewRenderer(palette),
		JumpSpeed: 6,
		logger:    logger,
	}
	w.ChunkLoaded.AddListener(func(engine.ChunkCoord) { g.loaded++ })
	w.ChunkEvicted.AddListener(func(engine.ChunkCoord) { g.evicted++ })
	g.spawnPlayer(rl.Vector3{X: cfg.ChunkSize / 2, Y: cfg.ChunkSize / 2, Z: 3})
	g.Tunables = ReadTunables(g.Loop, g.Player)
	return g
}

func (g *Game) Run() {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagWindowResizable)
	rl.InitWindow(1280, 720, "streamworld")
	defer rl.CloseWindow()

	g.sound = audio.Init()
	defer audio.Shutdown()

	rl.SetTargetFPS(120)
	if !g.ShowHUD {
		rl.DisableCursor()
	}
	initHUDStyle()

	for !rl.WindowShouldClose() {
		g.Update(rl.GetFrameTime())
		g.Draw()
	}
}

// spawnPlayer places a fresh player body at pos and centres the window on
// it.
func (g *Game) spawnPlayer(pos rl.Vector3) {
	const radius = 0.6
	g.World.SetCameraPosition(pos)

	// Drop onto the highest surface below a point well above pos.
	from := rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z + 50}
	if hit, ok := physics.Raycast(g.World.Grid(), from, rl.Vector3{Z: -1}, 100, onlySurfaces); ok {
		pos.Z = hit.Point.Z + radius + 0.1
	}

	b := engine.NewBody(pos, radius)
	b.Player = true
	b.Restitution = 0.1
	p := engine.NewBodyEntity(engine.SidePlayer, b)
	if !g.World.AddEntity(p) {
		g.logger.Printf("game: could not place player at %v", pos)
		return
	}
	g.Player = p
	g.Loop.Follow(p)
	g.Camera.Target = pos
}

func onlySurfaces(e *engine.Entity) bool {
	return e.Kind == engine.KindSurface
}

func (g *Game) Update(deltaTime float32) {
	updateStart := time.Now()

	if g.World.Player() == nil {
		last := g.Camera.Target
		g.logger.Printf("game: player lost, respawning")
		g.spawnPlayer(rl.Vector3{X: last.X, Y: last.Y, Z: last.Z + 3})
	}

	if !g.ShowHUD {
		g.Camera.Look(rl.GetMouseDelta())
	}
	g.Camera.Zoom(rl.GetMouseWheelMove())
	g.queueMovement()

	g.Loop.Advance(time.Duration(deltaTime * float32(time.Second)))

	if p := g.World.Player(); p != nil {
		g.Camera.Target = p.Position()
	}
	forward, _ := g.Camera.Directions()
	g.sound.SetListener(audio.NewListener(g.Camera.Eye(), forward, rl.Vector3{Z: 1}))
	g.sound.Update()

	if rl.IsKeyPressed(rl.KeyF1) {
		g.DebugMode = !g.DebugMode
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.ShowHUD = !g.ShowHUD
		if g.ShowHUD {
			rl.EnableCursor()
		} else {
			rl.DisableCursor()
		}
	}

	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

// queueMovement turns WASD and Space into velocity intents for the player.
// Vertical velocity is left to the simulation unless jumping.
func (g *Game) queueMovement() {
	p := g.World.Player()
	if p == nil {
		return
	}
	v := g.Camera.Steer(
		rl.IsKeyDown(rl.KeyW), rl.IsKeyDown(rl.KeyS),
		rl.IsKeyDown(rl.KeyA), rl.IsKeyDown(rl.KeyD),
	)
	v.Z = p.Body.Velocity.Z
	if rl.IsKeyPressed(rl.KeySpace) && v.Z > -0.5 && v.Z < 0.5 {
		v.Z = g.JumpSpeed
	}
	g.Loop.Queue(world.SetVelocity(engine.RefTo(p), v))
}

func (g *Game) Draw() {
	cam := g.Camera.GetRaylibCamera()
	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())

	rl.BeginDrawing()
	rl.ClearBackground(g.Renderer.Palette.Background)

	drawStart := time.Now()
	rl.BeginMode3D(cam)
	g.Renderer.Draw(g.World, cam, aspect, g.Loop.Alpha(), g.Loop.Dt())
	rl.EndMode3D()
	g.drawMs = float64(time.Since(drawStart).Microseconds()) / 1000.0

	g.DrawUI()
	rl.EndDrawing()
}

func (g *Game) DrawUI() {
	rl.DrawText("WASD to move, Space to jump, Mouse to look", 10, 10, 20, rl.LightGray)
	rl.DrawText("Tab for tuning panel, F1 for debug", 10, 35, 20, rl.LightGray)
	rl.DrawFPS(10, 60)

	if g.ShowHUD {
		if DrawHUD(&g.Tunables, float32(rl.GetScreenWidth())-270, 10) {
			if err := g.Tunables.Apply(g.Loop, g.World.Player()); err != nil {
				g.logger.Print(err)
				g.Tunables = ReadTunables(g.Loop, g.World.Player())
			}
		}
	}

	if g.DebugMode {
		win := g.World.Window()
		stats := g.Loop.Resolver.Stats
		lines := []string{
			fmt.Sprintf("Tick:     %d", g.Loop.TickCount()),
			fmt.Sprintf("Window:   %d,%d..%d,%d", win.MinX, win.MinY, win.MaxX, win.MaxY),
			fmt.Sprintf("Entities: %d", g.World.Len()),
			fmt.Sprintf("Chunks:   %d loaded, %d evicted", g.loaded, g.evicted),
			fmt.Sprintf("Drawn:    %d, culled %d", g.Renderer.Drawn, g.Renderer.Culled),
			fmt.Sprintf("Contacts: %d, clamps %d, kills %d", stats.Contacts, stats.Clamps, stats.Kills),
			fmt.Sprintf("Sounds:   %d", g.sound.Active()),
			fmt.Sprintf("Update:   %.2f ms", g.updateMs),
			fmt.Sprintf("Draw:     %.2f ms", g.drawMs),
		}
		for i, line := range lines {
			rl.DrawText(line, 10, int32(85+i*20), 16, rl.Green)
		}
	}
}
