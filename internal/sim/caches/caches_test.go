package caches

import (
	"errors"
	"testing"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ledger"
	"geocoin.ai/internal/sim/luck"
	"geocoin.ai/internal/sim/model"
)

// only spawns at the listed cells, each with 5 coins.
func fixedGen(cells ...[2]int) *luck.Generator {
	table := map[string]float64{}
	for _, c := range cells {
		table[luck.Key(c[0], c[1])] = 0.01
		table[luck.Key(c[0], c[1], "initialValue")] = 0.05
	}
	return luck.New(luck.Config{
		SpawnProbability: 0.1,
		MaxInitialCoins:  100,
		Hash: func(key string) float64 {
			if v, ok := table[key]; ok {
				return v
			}
			return 0.99
		},
	})
}

func TestRefresh_SpawnsAndShows(t *testing.T) {
	g := grid.New(1)
	s := NewSet(fixedGen([2]int{0, 0}, [2]int{1, 1}, [2]int{5, 5}))

	d := s.Refresh(g.Neighborhood(grid.Point{Lat: 0.5, Lng: 0.5}, 1))
	if len(d.Spawned) != 2 || len(d.Shown) != 2 || len(d.Hidden) != 0 {
		t.Fatalf("unexpected diff: spawned=%d shown=%d hidden=%d", len(d.Spawned), len(d.Shown), len(d.Hidden))
	}
	if d.Spawned[0].ID() != "0,0" || d.Spawned[1].ID() != "1,1" {
		t.Fatalf("unexpected spawn order: %s, %s", d.Spawned[0].ID(), d.Spawned[1].ID())
	}
	if len(d.Spawned[0].Coins) != 5 {
		t.Fatalf("expected 5 coins, got %d", len(d.Spawned[0].Coins))
	}
	if s.Len() != 2 || s.VisibleLen() != 2 {
		t.Fatalf("known=%d visible=%d", s.Len(), s.VisibleLen())
	}

	// Same neighborhood again: nothing changes.
	if d := s.Refresh(g.Neighborhood(grid.Point{Lat: 0.5, Lng: 0.5}, 1)); !d.Empty() {
		t.Fatalf("expected empty diff on repeat, got %+v", d)
	}
}

func TestRefresh_HidesAndReshowsWithoutRespawn(t *testing.T) {
	g := grid.New(1)
	s := NewSet(fixedGen([2]int{10, 10}))
	at := grid.Point{Lat: 10.5, Lng: 10.5}
	away := grid.Point{Lat: 30.5, Lng: 30.5}

	s.Refresh(g.Neighborhood(at, 2))
	c := s.Get(g.Canonical(10, 10))
	if c == nil || !s.IsVisible(c) {
		t.Fatalf("expected visible cache at (10,10)")
	}
	player := &model.Player{}
	if err := ledger.Transfer(2, c, player); err != nil {
		t.Fatalf("collect: %v", err)
	}

	d := s.Refresh(g.Neighborhood(away, 2))
	if len(d.Hidden) != 1 || d.Hidden[0] != c {
		t.Fatalf("expected (10,10) hidden, got %+v", d.Hidden)
	}
	if s.IsVisible(c) || s.Len() != 1 || len(c.Coins) != 3 {
		t.Fatalf("hidden cache should keep state: visible=%v known=%d coins=%d", s.IsVisible(c), s.Len(), len(c.Coins))
	}

	d = s.Refresh(g.Neighborhood(at, 2))
	if len(d.Spawned) != 0 || len(d.Shown) != 1 || d.Shown[0] != c {
		t.Fatalf("expected re-show without respawn, got %+v", d)
	}
	if len(c.Coins) != 3 {
		t.Fatalf("cache regenerated: coins=%d", len(c.Coins))
	}
}

func TestRefresh_AbsentCellsNotRetained(t *testing.T) {
	g := grid.New(1)
	s := NewSet(fixedGen())
	s.Refresh(g.Neighborhood(grid.Point{}, 3))
	if s.Len() != 0 {
		t.Fatalf("expected no caches, got %d", s.Len())
	}
}

func TestAdopt_RejectsDuplicateCell(t *testing.T) {
	g := grid.New(1)
	s := NewSet(fixedGen())
	if err := s.Adopt(model.NewCache(g.Canonical(2, 2), 1)); err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	err := s.Adopt(model.NewCache(g.Canonical(2, 2), 9))
	if !errors.Is(err, ErrDuplicateCell) {
		t.Fatalf("expected ErrDuplicateCell, got %v", err)
	}
	if c := s.Lookup("2,2"); c == nil || len(c.Coins) != 1 {
		t.Fatalf("first cache should win")
	}
	if s.IsVisible(s.Lookup("2,2")) {
		t.Fatalf("adopted cache should start hidden")
	}
}

func TestAdoptedCacheIsNotRespawned(t *testing.T) {
	g := grid.New(1)
	s := NewSet(fixedGen([2]int{0, 0}))
	restored := model.NewCache(g.Canonical(0, 0), 0)
	if err := s.Adopt(restored); err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	d := s.Refresh(g.Neighborhood(grid.Point{Lat: 0.5, Lng: 0.5}, 0))
	if len(d.Spawned) != 0 || len(d.Shown) != 1 || d.Shown[0] != restored {
		t.Fatalf("expected restored cache shown, got %+v", d)
	}
}

func TestHideAllAndClear(t *testing.T) {
	g := grid.New(1)
	s := NewSet(fixedGen([2]int{0, 0}, [2]int{0, 1}))
	s.Refresh(g.Neighborhood(grid.Point{Lat: 0.5, Lng: 0.5}, 1))
	if hidden := s.HideAll(); len(hidden) != 2 {
		t.Fatalf("HideAll returned %d", len(hidden))
	}
	if s.VisibleLen() != 0 || s.Len() != 2 {
		t.Fatalf("visible=%d known=%d", s.VisibleLen(), s.Len())
	}
	s.Clear()
	if s.Len() != 0 || s.Lookup("0,0") != nil {
		t.Fatalf("Clear left caches behind")
	}
}
