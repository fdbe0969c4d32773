package spatial

import (
	"fmt"
	"slices"

	"streamworld/internal/engine"
)

// Cell is one bucket of the toroidal grid. It holds the entities overlapping
// the chunk it currently maps to, floors first.
type Cell struct {
	Coord    engine.ChunkCoord
	Entities []*engine.Entity
	floors   int
}

func (c *Cell) insert(e *engine.Entity) {
	if e.IsFloor() {
		c.Entities = slices.Insert(c.Entities, c.floors, e)
		c.floors++
		return
	}
	c.Entities = append(c.Entities, e)
}

func (c *Cell) remove(e *engine.Entity) bool {
	i := slices.Index(c.Entities, e)
	if i < 0 {
		return false
	}
	if i < c.floors {
		c.floors--
	}
	c.Entities = slices.Delete(c.Entities, i, i+1)
	return true
}

func (c *Cell) reset(coord engine.ChunkCoord) {
	clear(c.Entities)
	c.Entities = c.Entities[:0]
	c.floors = 0
	c.Coord = coord
}

// Grid is a Width x Height array of cells covering the active window of
// chunks. A chunk maps to cell (Wrap(x, Width), Wrap(y, Height)), so the
// storage is reused as the window slides.
//
// Not safe for concurrent use.
type Grid struct {
	Width     int32
	Height    int32
	ChunkSize float32

	cells  []Cell
	window engine.ChunkRect
	ready  bool
	stamp  uint32
}

// NewGrid creates an empty grid. Nothing can be inserted until the first
// Shift sets the window.
func NewGrid(width, height int32, chunkSize float32) *Grid {
	return &Grid{
		Width:     width,
		Height:    height,
		ChunkSize: chunkSize,
		cells:     make([]Cell, width*height),
	}
}

func (g *Grid) cellAt(c engine.ChunkCoord) *Cell {
	return &g.cells[Wrap(c.Y, g.Height)*g.Width+Wrap(c.X, g.Width)]
}

// Window returns the active window. It is empty before the first Shift.
func (g *Grid) Window() engine.ChunkRect {
	return g.window
}

// Contains reports whether c is inside the active window.
func (g *Grid) Contains(c engine.ChunkCoord) bool {
	return g.ready && g.window.Contains(c)
}

// Cell returns the entities indexed under chunk c, or nil when c is outside
// the window. Callers must not modify the slice.
func (g *Grid) Cell(c engine.ChunkCoord) []*engine.Entity {
	if !g.Contains(c) {
		return nil
	}
	return g.cellAt(c).Entities
}

// Rect returns the chunks an entity with the given bounds overlaps, clipped
// to the window.
func (g *Grid) Rect(b engine.AABB) engine.ChunkRect {
	if !g.ready {
		return engine.ChunkRect{}
	}
	return BoundsRect(b, g.ChunkSize).Intersect(g.window)
}

// Insert adds e to every cell its bounds overlap inside the window. It
// returns false, and leaves e unindexed, when there is no overlap.
func (g *Grid) Insert(e *engine.Entity) bool {
	if _, in := e.Indexed(); in {
		g.Remove(e)
	}
	r := g.Rect(e.Bounds())
	if r.Empty() {
		return false
	}
	r.Each(func(c engine.ChunkCoord) {
		g.cellAt(c).insert(e)
	})
	e.SetIndexed(r, true)
	return true
}

// Remove takes e out of every cell it was inserted under. It is a no-op for
// entities that are not indexed.
func (g *Grid) Remove(e *engine.Entity) {
	r, in := e.Indexed()
	if !in {
		return
	}
	r.Intersect(g.window).Each(func(c engine.ChunkCoord) {
		g.cellAt(c).remove(e)
	})
	e.SetIndexed(engine.ChunkRect{}, false)
}

// QueryCells calls fn for every cell overlapping bounds inside the window,
// in row-major order. fn returns false to stop the walk.
func (g *Grid) QueryCells(bounds engine.AABB, fn func(cell []*engine.Entity, c engine.ChunkCoord) bool) {
	r := g.Rect(bounds)
	for y := r.MinY; y < r.MaxY; y++ {
		for x := r.MinX; x < r.MaxX; x++ {
			c := engine.ChunkCoord{X: x, Y: y}
			if !fn(g.cellAt(c).Entities, c) {
				return
			}
		}
	}
}

// NextStamp returns a fresh de-duplication stamp for a query.
func (g *Grid) NextStamp() uint32 {
	g.stamp++
	if g.stamp == 0 {
		g.stamp++
	}
	return g.stamp
}

// QueryRect calls fn once per entity whose bounds intersect bounds, in cell
// walk order. fn returns false to stop.
func (g *Grid) QueryRect(bounds engine.AABB, fn func(e *engine.Entity) bool) {
	stamp := g.NextStamp()
	g.QueryCells(bounds, func(cell []*engine.Entity, _ engine.ChunkCoord) bool {
		for _, e := range cell {
			if !e.Mark(stamp) || !e.Bounds().Intersects(bounds) {
				continue
			}
			if !fn(e) {
				return false
			}
		}
		return true
	})
}

// QueryPoint returns the entities whose bounds contain (x, y) on the XY plane.
func (g *Grid) QueryPoint(x, y float32) []*engine.Entity {
	c := ChunkOf(x, y, g.ChunkSize)
	var out []*engine.Entity
	for _, e := range g.Cell(c) {
		b := e.Bounds()
		if x >= b.Min.X && x <= b.Max.X && y >= b.Min.Y && y <= b.Max.Y {
			out = append(out, e)
		}
	}
	return out
}

// Shift moves the window. Cells of chunks leaving the window are emptied:
// surfaces owned by a leaving chunk are removed from the index entirely and
// returned, other entities only lose the leaving cells. Bodies are not
// returned; the lifecycle culls them once they are outside the window.
// Entities that stay are added to the entering cells their bounds reach.
// entering lists the chunks that became resident, in row-major order.
//
// The new window must have the grid's dimensions.
func (g *Grid) Shift(window engine.ChunkRect) (evicted []*engine.Entity, entering []engine.ChunkCoord) {
	if window.MaxX-window.MinX != g.Width || window.MaxY-window.MinY != g.Height {
		panic(fmt.Sprintf("spatial: window %v does not match grid %dx%d", window, g.Width, g.Height))
	}
	if g.ready && window == g.window {
		return nil, nil
	}

	old, wasReady := g.window, g.ready
	window.Each(func(c engine.ChunkCoord) {
		if wasReady && old.Contains(c) {
			return
		}
		cell := g.cellAt(c)
		if wasReady {
			evicted = g.vacate(cell, window, evicted)
		}
		cell.reset(c)
		entering = append(entering, c)
	})
	g.window = window
	g.ready = true
	if wasReady && len(entering) > 0 {
		g.extend(old.Intersect(window))
	}
	return evicted, entering
}

// extend adds entities that stayed resident to the entering cells their
// bounds reach, widening their recorded rect to match. kept is the part of
// the window that did not change.
func (g *Grid) extend(kept engine.ChunkRect) {
	stamp := g.NextStamp()
	var stayed []*engine.Entity
	kept.Each(func(c engine.ChunkCoord) {
		for _, e := range g.cellAt(c).Entities {
			if e.Mark(stamp) {
				stayed = append(stayed, e)
			}
		}
	})
	for _, e := range stayed {
		r, _ := e.Indexed()
		full := g.Rect(e.Bounds())
		if full == r {
			continue
		}
		full.Each(func(c engine.ChunkCoord) {
			if !r.Contains(c) {
				g.cellAt(c).insert(e)
			}
		})
		e.SetIndexed(full, true)
	}
}

// vacate clears a cell whose chunk is leaving the window.
func (g *Grid) vacate(cell *Cell, window engine.ChunkRect, evicted []*engine.Entity) []*engine.Entity {
	items := slices.Clone(cell.Entities)
	for _, e := range items {
		r, in := e.Indexed()
		if !in {
			continue
		}
		if e.Kind == engine.KindSurface && !window.Contains(e.Chunk) {
			g.Remove(e)
			evicted = append(evicted, e)
			continue
		}
		cell.remove(e)
		kept := r.Intersect(window)
		e.SetIndexed(kept, !kept.Empty())
	}
	return evicted
}

// Entities returns every indexed entity once, in cell order.
func (g *Grid) Entities() []*engine.Entity {
	if !g.ready {
		return nil
	}
	stamp := g.NextStamp()
	var out []*engine.Entity
	g.window.Each(func(c engine.ChunkCoord) {
		for _, e := range g.cellAt(c).Entities {
			if e.Mark(stamp) {
				out = append(out, e)
			}
		}
	})
	return out
}

// Len returns the number of distinct indexed entities.
func (g *Grid) Len() int {
	return len(g.Entities())
}

// Verify checks that every cell holds only entities that geometrically
// overlap its chunk, exactly once, floors first, and that every entity is
// present in all the cells it claims.
func (g *Grid) Verify() error {
	if !g.ready {
		return nil
	}
	var err error
	g.window.Each(func(c engine.ChunkCoord) {
		if err != nil {
			return
		}
		cell := g.cellAt(c)
		if cell.Coord != c {
			err = fmt.Errorf("cell for %s maps to %s", c, cell.Coord)
			return
		}
		for i, e := range cell.Entities {
			if e.IsFloor() != (i < cell.floors) {
				err = fmt.Errorf("cell %s: floor ordering broken at %d", c, i)
				return
			}
			if slices.Index(cell.Entities, e) != i {
				err = fmt.Errorf("cell %s: %s listed twice", c, e)
				return
			}
			if !BoundsRect(e.Bounds(), g.ChunkSize).Contains(c) {
				err = fmt.Errorf("cell %s: %s does not overlap it", c, e)
				return
			}
			if r, in := e.Indexed(); !in || !r.Contains(c) {
				err = fmt.Errorf("cell %s: %s not recorded there", c, e)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	for _, e := range g.Entities() {
		r, _ := e.Indexed()
		r.Each(func(c engine.ChunkCoord) {
			if err == nil && !slices.Contains(g.cellAt(c).Entities, e) {
				err = fmt.Errorf("%s missing from cell %s", e, c)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
