package game

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
	"streamworld/internal/world"
)

var (
	colorBgPanel   = rl.NewColor(18, 18, 24, 230)
	colorBgElement = rl.NewColor(28, 28, 38, 255)
	colorAccent    = rl.NewColor(108, 99, 255, 255)
	colorText      = rl.NewColor(200, 200, 208, 255)
)

// Tunables are the resolver and player settings the HUD edits live.
type Tunables struct {
	Gravity        float32
	Restitution    float32
	MaxCollisions  int
	BisectionSteps int
	LogClamps      bool
}

// ReadTunables snapshots the current settings. player may be nil.
func ReadTunables(l *world.Loop, player *engine.Entity) Tunables {
	cfg := l.Resolver.Config
	t := Tunables{
		Gravity:        cfg.Gravity,
		MaxCollisions:  cfg.MaxCollisions,
		BisectionSteps: cfg.BisectionSteps,
		LogClamps:      cfg.LogClamps,
	}
	if player != nil && player.Kind == engine.KindBody {
		t.Restitution = player.Body.Restitution
	}
	return t
}

// Apply writes the settings back. It must run on the tick goroutine.
func (t Tunables) Apply(l *world.Loop, player *engine.Entity) error {
	cfg := l.Resolver.Config
	cfg.Gravity = t.Gravity
	cfg.MaxCollisions = t.MaxCollisions
	cfg.BisectionSteps = t.BisectionSteps
	cfg.LogClamps = t.LogClamps
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("hud: %w", err)
	}
	l.Resolver.Config = cfg
	if player != nil && player.Kind == engine.KindBody {
		player.Body.Restitution = t.Restitution
	}
	return nil
}

func initHUDStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgPanel))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorText))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 14)
}

// DrawHUD draws the tuning panel at (x, y) and reports whether any value
// changed.
func DrawHUD(t *Tunables, x, y float32) bool {
	const (
		width   = 260
		rowH    = 26
		labelW  = 110
		sliderW = 110
	)
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: width, Height: rowH*5 + 16}, colorBgPanel)
	before := *t

	row := func(i int, label string) rl.Rectangle {
		ry := y + 8 + float32(i*rowH)
		rl.DrawText(label, int32(x+8), int32(ry+4), 14, colorText)
		return rl.Rectangle{X: x + labelW, Y: ry, Width: sliderW, Height: rowH - 6}
	}

	t.Gravity = gui.Slider(row(0, "Gravity"), "", fmt.Sprintf("%.1f", t.Gravity), t.Gravity, 0, 40)
	t.Restitution = gui.Slider(row(1, "Restitution"), "", fmt.Sprintf("%.2f", t.Restitution), t.Restitution, 0, 1)
	mc := gui.Slider(row(2, "Collisions"), "", fmt.Sprint(t.MaxCollisions), float32(t.MaxCollisions), 1, 32)
	t.MaxCollisions = int(math.Round(float64(mc)))
	bs := gui.Slider(row(3, "Bisection"), "", fmt.Sprint(t.BisectionSteps), float32(t.BisectionSteps), 0, 20)
	t.BisectionSteps = int(math.Round(float64(bs)))
	t.LogClamps = gui.CheckBox(row(4, "Log clamps"), "", t.LogClamps)

	return *t != before
}
