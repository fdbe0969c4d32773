package termview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"streamworld/internal/engine"
	"streamworld/internal/spatial"
	"streamworld/internal/world"
)

var (
	styleFloor  = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

type cell struct {
	floor  bool
	wall   bool
	bodies int
	player bool
}

// Glyph is the character drawn for one chunk.
func (c cell) Glyph() (rune, tcell.Style) {
	switch {
	case c.player:
		return '@', stylePlayer
	case c.bodies > 9:
		return '+', styleBody
	case c.bodies > 0:
		return rune('0' + c.bodies), styleBody
	case c.wall:
		return '#', styleWall
	case c.floor:
		return '.', styleFloor
	}
	return ' ', tcell.StyleDefault
}

// Draw paints the window one character per chunk, north up, with a status
// line underneath. It does not call Show.
func Draw(screen tcell.Screen, w *world.World) {
	win := w.Window()
	width := int(win.MaxX - win.MinX)
	height := int(win.MaxY - win.MinY)
	if width <= 0 || height <= 0 {
		return
	}

	cells := make([]cell, width*height)
	at := func(c engine.ChunkCoord) *cell {
		if !win.Contains(c) {
			return nil
		}
		col := int(c.X - win.MinX)
		row := int(win.MaxY - 1 - c.Y)
		return &cells[row*width+col]
	}

	surfaces := w.Surfaces()
	for _, e := range surfaces {
		if c := at(e.Chunk); c != nil {
			if e.IsFloor() {
				c.floor = true
			} else {
				c.wall = true
			}
		}
	}
	live := 0
	for _, e := range w.Bodies() {
		if e.Dead() {
			continue
		}
		live++
		p := e.Position()
		c := at(spatial.ChunkOf(p.X, p.Y, w.Config.ChunkSize))
		if c == nil {
			continue
		}
		if e.IsPlayer() {
			c.player = true
		} else {
			c.bodies++
		}
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			r, style := cells[row*width+col].Glyph()
			screen.SetContent(col, row, r, nil, style)
		}
	}

	status := fmt.Sprintf(" window %d,%d..%d,%d  bodies %d  surfaces %d ",
		win.MinX, win.MinY, win.MaxX, win.MaxY, live, len(surfaces))
	DrawText(screen, 0, height, status, styleStatus)
}

// DrawText writes s starting at (x, y), clipped to the screen width.
func DrawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	sw, _ := screen.Size()
	for _, r := range s {
		if x >= sw {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
