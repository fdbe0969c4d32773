package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"streamworld/internal/engine"
)

// Palette holds the viewer colors. It is loaded from JSON where every field
// is a raylib color name.
type Palette struct {
	Background rl.Color
	Floor      rl.Color
	Surface    rl.Color
	Edge       rl.Color
	Player     rl.Color
	Dead       rl.Color
	Sides      [engine.NumSides]rl.Color
}

// paletteDef is the JSON format for palette files
type paletteDef struct {
	Background string `json:"background"`
	Floor      string `json:"floor"`
	Surface    string `json:"surface"`
	Edge       string `json:"edge"`
	Player     string `json:"player"`
	Dead       string `json:"dead"`
	Monsters   string `json:"monsters"`
	Neutral    string `json:"neutral"`
}

// Color name mapping for palettes
var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Gold":      rl.Gold,
	"White":     rl.White,
	"Gray":      rl.Gray,
	"LightGray": rl.LightGray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Pink":      rl.Pink,
	"Maroon":    rl.Maroon,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"SkyBlue":   rl.SkyBlue,
	"DarkBlue":  rl.DarkBlue,
	"Lime":      rl.Lime,
	"DarkGreen": rl.DarkGreen,
}

// LookupColor returns a raylib color from a name string
func LookupColor(name string) (rl.Color, bool) {
	c, ok := colorByName[name]
	return c, ok
}

func DefaultPalette() Palette {
	p := Palette{
		Background: rl.NewColor(20, 20, 30, 255),
		Floor:      rl.DarkGreen,
		Surface:    rl.Gray,
		Edge:       rl.DarkGray,
		Player:     rl.Gold,
		Dead:       rl.DarkGray,
	}
	p.Sides[engine.SideWorld] = rl.LightGray
	p.Sides[engine.SidePlayer] = rl.Gold
	p.Sides[engine.SideMonsters] = rl.Maroon
	p.Sides[engine.SideNeutral] = rl.SkyBlue
	return p
}

// LoadPalette reads a palette file over the defaults. A missing file yields
// the defaults; empty fields keep their default.
func LoadPalette(path string) (Palette, error) {
	p := DefaultPalette()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read palette: %w", err)
	}

	var def paletteDef
	if err := json.Unmarshal(data, &def); err != nil {
		return p, fmt.Errorf("parse palette %s: %w", path, err)
	}

	fields := []struct {
		name string
		dst  *rl.Color
	}{
		{def.Background, &p.Background},
		{def.Floor, &p.Floor},
		{def.Surface, &p.Surface},
		{def.Edge, &p.Edge},
		{def.Player, &p.Player},
		{def.Dead, &p.Dead},
		{def.Monsters, &p.Sides[engine.SideMonsters]},
		{def.Neutral, &p.Sides[engine.SideNeutral]},
	}
	for _, f := range fields {
		if f.name == "" {
			continue
		}
		c, ok := LookupColor(f.name)
		if !ok {
			return p, fmt.Errorf("palette %s: unknown color %q", path, f.name)
		}
		*f.dst = c
	}
	return p, nil
}

// BodyColor picks the color of a body entity.
func (p Palette) BodyColor(e *engine.Entity) rl.Color {
	switch {
	case e.Dead():
		return p.Dead
	case e.IsPlayer():
		return p.Player
	}
	return p.Sides[e.Side]
}
