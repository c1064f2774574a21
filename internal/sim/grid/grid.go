package grid

import (
	"math"
	"sort"

	"geocoin.ai/internal/sim/ids"
)

// Point is a continuous position. Lat maps to the i axis, Lng to the j axis.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Cell is a canonical grid address. Cells are immutable; the Grid hands out
// one *Cell per (I, J) so pointer equality is identity.
type Cell struct {
	I int
	J int
}

func (c *Cell) Key() string { return ids.CellKey(c.I, c.J) }

// Bounds is the rectangle covered by one cell: [SW, NE).
type Bounds struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

type cellKey struct {
	I int
	J int
}

// Grid maps coordinates to canonical cells. Not safe for concurrent use; the
// session goroutine owns it.
type Grid struct {
	tileSize float64
	cells    map[cellKey]*Cell
}

func New(tileSize float64) *Grid {
	if tileSize <= 0 || math.IsNaN(tileSize) || math.IsInf(tileSize, 0) {
		tileSize = 1
	}
	return &Grid{
		tileSize: tileSize,
		cells:    make(map[cellKey]*Cell, 1024),
	}
}

func (g *Grid) TileSize() float64 { return g.tileSize }

// Len reports how many canonical cells have been materialized.
func (g *Grid) Len() int { return len(g.cells) }

// Canonical returns the one cell instance for (i, j), creating it if absent.
func (g *Grid) Canonical(i, j int) *Cell {
	k := cellKey{I: i, J: j}
	if c, ok := g.cells[k]; ok {
		return c
	}
	c := &Cell{I: i, J: j}
	g.cells[k] = c
	return c
}

// Index returns the (i, j) indices of the cell containing p without
// materializing it.
func (g *Grid) Index(p Point) (i, j int) {
	return floorIndex(p.Lat, g.tileSize), floorIndex(p.Lng, g.tileSize)
}

func (g *Grid) CellAt(p Point) *Cell {
	i, j := g.Index(p)
	return g.Canonical(i, j)
}

func (g *Grid) BoundsOf(c *Cell) Bounds { return BoundsFor(c, g.tileSize) }

// BoundsFor is BoundsOf for a known tile size, without a Grid.
func BoundsFor(c *Cell, t float64) Bounds {
	return Bounds{
		SW: Point{Lat: float64(c.I) * t, Lng: float64(c.J) * t},
		NE: Point{Lat: float64(c.I+1) * t, Lng: float64(c.J+1) * t},
	}
}

func (g *Grid) Center(c *Cell) Point {
	b := g.BoundsOf(c)
	return Point{
		Lat: (b.SW.Lat + b.NE.Lat) / 2,
		Lng: (b.SW.Lng + b.NE.Lng) / 2,
	}
}

// Neighborhood returns the (2r+1)^2 cells around the cell containing p in
// row-major order (i outer, j inner). A negative radius is treated as 0.
func (g *Grid) Neighborhood(p Point, radius int) []*Cell {
	if radius < 0 {
		radius = 0
	}
	oi, oj := g.Index(p)
	side := 2*radius + 1
	out := make([]*Cell, 0, side*side)
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			out = append(out, g.Canonical(oi+di, oj+dj))
		}
	}
	return out
}

// Offset moves p by whole tiles.
func (g *Grid) Offset(p Point, di, dj int) Point {
	return Point{
		Lat: p.Lat + float64(di)*g.tileSize,
		Lng: p.Lng + float64(dj)*g.tileSize,
	}
}

// Cells returns every materialized cell sorted by (I, J).
func (g *Grid) Cells() []*Cell {
	out := make([]*Cell, 0, len(g.cells))
	for _, c := range g.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].I != out[b].I {
			return out[a].I < out[b].I
		}
		return out[a].J < out[b].J
	})
	return out
}

func floorIndex(v, size float64) int {
	return int(math.Floor(v / size))
}
