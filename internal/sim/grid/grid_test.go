package grid

import "testing"

func TestCellAt_Canonicalizes(t *testing.T) {
	g := New(1e-4)
	a := g.CellAt(Point{Lat: 36.98949379578401, Lng: -122.06277128548504})
	b := g.CellAt(Point{Lat: 36.98949999, Lng: -122.06271})
	if a.I != b.I || a.J != b.J {
		t.Fatalf("expected same cell, got (%d,%d) and (%d,%d)", a.I, a.J, b.I, b.J)
	}
	if a != b {
		t.Fatalf("expected identical cell reference")
	}
	if g.Len() != 1 {
		t.Fatalf("expected 1 materialized cell, got %d", g.Len())
	}
}

func TestCellAt_FloorsNegativeCoordinates(t *testing.T) {
	g := New(1)
	cases := []struct {
		p    Point
		i, j int
	}{
		{Point{Lat: 0.5, Lng: 0.5}, 0, 0},
		{Point{Lat: -0.5, Lng: -0.5}, -1, -1},
		{Point{Lat: -1, Lng: 1}, -1, 1},
		{Point{Lat: -1.01, Lng: 2.99}, -2, 2},
	}
	for _, tc := range cases {
		c := g.CellAt(tc.p)
		if c.I != tc.i || c.J != tc.j {
			t.Fatalf("CellAt(%v)=(%d,%d) want (%d,%d)", tc.p, c.I, c.J, tc.i, tc.j)
		}
	}
}

func TestBoundsOf(t *testing.T) {
	g := New(2)
	b := g.BoundsOf(g.Canonical(-1, 3))
	if b.SW != (Point{Lat: -2, Lng: 6}) || b.NE != (Point{Lat: 0, Lng: 8}) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if c := g.Center(g.Canonical(-1, 3)); c != (Point{Lat: -1, Lng: 7}) {
		t.Fatalf("unexpected center: %+v", c)
	}
}

func TestNeighborhood_SizeAndOrder(t *testing.T) {
	g := New(1)
	p := Point{Lat: 10.5, Lng: -4.5}
	for r := 0; r <= 4; r++ {
		cells := g.Neighborhood(p, r)
		want := (2*r + 1) * (2*r + 1)
		if len(cells) != want {
			t.Fatalf("radius %d: len=%d want %d", r, len(cells), want)
		}
	}

	cells := g.Neighborhood(p, 1)
	want := [][2]int{
		{9, -6}, {9, -5}, {9, -4},
		{10, -6}, {10, -5}, {10, -4},
		{11, -6}, {11, -5}, {11, -4},
	}
	for k, c := range cells {
		if c.I != want[k][0] || c.J != want[k][1] {
			t.Fatalf("cell %d=(%d,%d) want %v", k, c.I, c.J, want[k])
		}
		if c != g.Canonical(c.I, c.J) {
			t.Fatalf("cell %d not canonical", k)
		}
	}
}

func TestNeighborhood_RadiusZeroIsOrigin(t *testing.T) {
	g := New(1e-4)
	p := Point{Lat: 0.00015, Lng: -0.00015}
	cells := g.Neighborhood(p, 0)
	if len(cells) != 1 || cells[0] != g.CellAt(p) {
		t.Fatalf("expected exactly the origin cell, got %v", cells)
	}
	if neg := g.Neighborhood(p, -3); len(neg) != 1 {
		t.Fatalf("negative radius should behave like 0, got %d cells", len(neg))
	}
}

func TestOffsetMovesWholeTiles(t *testing.T) {
	g := New(1)
	p := g.Offset(Point{Lat: 0.5, Lng: 0.5}, 1, -2)
	c := g.CellAt(p)
	if c.I != 1 || c.J != -2 {
		t.Fatalf("offset cell=(%d,%d)", c.I, c.J)
	}
}
