// Package caches tracks which caches exist and which of them are in view.
//
// A cell is unknown until first considered. Considering it either spawns a
// cache (kept for the rest of the session, visible or hidden) or classifies it
// absent, which is not remembered: the generator re-derives it on every visit.
package caches

import (
	"errors"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/luck"
	"geocoin.ai/internal/sim/model"
)

var ErrDuplicateCell = errors.New("cache already known for cell")

// Diff lists what one Refresh changed, each in deterministic order:
// Spawned and Shown follow neighborhood order, Hidden follows first-known
// order. A spawned cache also appears in Shown.
type Diff struct {
	Spawned []*model.Cache
	Shown   []*model.Cache
	Hidden  []*model.Cache
}

func (d Diff) Empty() bool {
	return len(d.Spawned) == 0 && len(d.Shown) == 0 && len(d.Hidden) == 0
}

type Set struct {
	gen *luck.Generator

	byCell  map[*grid.Cell]*model.Cache
	byKey   map[string]*model.Cache
	order   []*model.Cache
	visible map[*model.Cache]bool
}

func NewSet(gen *luck.Generator) *Set {
	return &Set{
		gen:     gen,
		byCell:  map[*grid.Cell]*model.Cache{},
		byKey:   map[string]*model.Cache{},
		visible: map[*model.Cache]bool{},
	}
}

func (s *Set) Len() int        { return len(s.order) }
func (s *Set) VisibleLen() int { return len(s.visible) }

func (s *Set) Get(c *grid.Cell) *model.Cache { return s.byCell[c] }

// Lookup finds a cache by its cell key ("<i>,<j>").
func (s *Set) Lookup(key string) *model.Cache { return s.byKey[key] }

func (s *Set) IsVisible(c *model.Cache) bool { return s.visible[c] }

// Known returns every cache in the order it became known.
func (s *Set) Known() []*model.Cache {
	out := make([]*model.Cache, len(s.order))
	copy(out, s.order)
	return out
}

// Visible returns the visible caches in first-known order.
func (s *Set) Visible() []*model.Cache {
	out := make([]*model.Cache, 0, len(s.visible))
	for _, c := range s.order {
		if s.visible[c] {
			out = append(out, c)
		}
	}
	return out
}

// Adopt registers an existing cache (e.g. rebuilt from a memento) as known and
// hidden. A second cache for the same cell is rejected.
func (s *Set) Adopt(c *model.Cache) error {
	if c == nil || c.Cell == nil {
		return errors.New("nil cache")
	}
	if _, ok := s.byCell[c.Cell]; ok {
		return ErrDuplicateCell
	}
	if _, ok := s.byKey[c.ID()]; ok {
		return ErrDuplicateCell
	}
	s.add(c)
	return nil
}

// Refresh reconciles the set with a new neighborhood: known caches inside it
// become visible, unknown cells that pass the spawn decision get a fresh
// cache, and visible caches outside it are hidden with their coins untouched.
func (s *Set) Refresh(neighborhood []*grid.Cell) Diff {
	var d Diff
	inView := make(map[*model.Cache]bool, len(neighborhood)/8+1)

	for _, cell := range neighborhood {
		c := s.byCell[cell]
		if c == nil {
			if !s.gen.SpawnDecision(cell) {
				continue
			}
			c = model.NewCache(cell, s.gen.InitialCoins(cell))
			s.add(c)
			d.Spawned = append(d.Spawned, c)
		}
		inView[c] = true
		if !s.visible[c] {
			s.visible[c] = true
			d.Shown = append(d.Shown, c)
		}
	}

	for _, c := range s.order {
		if s.visible[c] && !inView[c] {
			delete(s.visible, c)
			d.Hidden = append(d.Hidden, c)
		}
	}
	return d
}

// HideAll marks every cache hidden and returns the ones that were visible.
func (s *Set) HideAll() []*model.Cache {
	hidden := s.Visible()
	s.visible = map[*model.Cache]bool{}
	return hidden
}

// Clear forgets every cache. Used only by a session reset.
func (s *Set) Clear() {
	s.byCell = map[*grid.Cell]*model.Cache{}
	s.byKey = map[string]*model.Cache{}
	s.order = nil
	s.visible = map[*model.Cache]bool{}
}

func (s *Set) add(c *model.Cache) {
	s.byCell[c.Cell] = c
	s.byKey[c.ID()] = c
	s.order = append(s.order, c)
}
