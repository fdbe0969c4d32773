package termview

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/world"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(40, 10)
	t.Cleanup(screen.Fini)
	return screen
}

func glyphAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func row(screen tcell.Screen, y, n int) string {
	var b strings.Builder
	for x := 0; x < n; x++ {
		b.WriteRune(glyphAt(screen, x, y))
	}
	return b.String()
}

// The window is 3x3 around chunk (0,0): columns are X -1..1, rows are
// Y 1..-1 from the top.
func testWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.WindowWidth, cfg.WindowHeight = 3, 3
	size := cfg.ChunkSize
	provider := world.ProviderFunc(func(c engine.ChunkCoord, _ world.ChunkFlags) []*engine.Entity {
		origin := rl.Vector3{X: float32(c.X) * size, Y: float32(c.Y) * size}
		out := []*engine.Entity{engine.NewSurfaceEntity(c, engine.NewFloorSurface(origin, size, size))}
		if c == (engine.ChunkCoord{X: 1, Y: 1}) {
			base := rl.Vector3{X: origin.X + 2, Y: origin.Y + 2}
			out = append(out, engine.NewSurfaceEntity(c, engine.NewWallSurface(base, 0, 8, 3)))
		}
		return out
	})
	w := world.New(cfg, provider, nil, log.New(io.Discard, "", 0))
	w.SetCameraPosition(rl.Vector3{X: 8, Y: 8})
	return w
}

func addBody(t *testing.T, w *world.World, x, y float32, player bool) {
	t.Helper()
	b := engine.NewBody(rl.Vector3{X: x, Y: y, Z: 2}, 0.5)
	b.Player = player
	if !w.AddEntity(engine.NewBodyEntity(engine.SideMonsters, b)) {
		t.Fatalf("Body at %v,%v rejected", x, y)
	}
}

func TestDrawGlyphs(t *testing.T) {
	w := testWorld(t)
	addBody(t, w, 8, 8, true)
	addBody(t, w, -8, -8, false)
	addBody(t, w, -7, -7, false)

	screen := newScreen(t)
	Draw(screen, w)

	want := []string{
		"..#",
		".@.",
		"2..",
	}
	for y, line := range want {
		if got := row(screen, y, 3); got != line {
			t.Errorf("Row %d: expected %q, got %q", y, line, got)
		}
	}

	status := row(screen, 3, 40)
	if !strings.Contains(status, "bodies 3") || !strings.Contains(status, "surfaces 10") {
		t.Errorf("Unexpected status line %q", status)
	}
}

func TestDeadBodiesHidden(t *testing.T) {
	w := testWorld(t)
	b := engine.NewBodyEntity(engine.SideMonsters, engine.NewBody(rl.Vector3{X: 8, Y: 8, Z: 2}, 0.5))
	w.AddEntity(b)
	w.Kill(b, nil)

	screen := newScreen(t)
	Draw(screen, w)
	if g := glyphAt(screen, 1, 1); g != '.' {
		t.Errorf("Expected floor under a dead body, got %q", g)
	}
}

func TestDrawTextClips(t *testing.T) {
	screen := newScreen(t)
	DrawText(screen, 35, 0, "abcdefgh", tcell.StyleDefault)
	if got := row(screen, 0, 40)[35:]; got != "abcde" {
		t.Errorf("Expected clipped text, got %q", got)
	}
}
