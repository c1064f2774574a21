package world

import (
	"fmt"

	"geocoin.ai/internal/sim/caches"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ids"
	"geocoin.ai/internal/sim/ledger"
	"geocoin.ai/internal/sim/model"
)

// MoveTo places the player at p, records p on the trail and refreshes the
// caches around it.
func (s *Session) MoveTo(p grid.Point) Result {
	pl := s.state.Player
	pl.Coords = p
	pl.Cell = s.grid.CellAt(p)
	s.state.Trail = append(s.state.Trail, p)

	diff := s.state.Caches.Refresh(s.grid.Neighborhood(p, s.cfg.Radius))
	err := s.persist()
	s.render(diff)
	s.renderer.PlayerUpdated(s.playerView())
	return Result{Err: err, Point: p}
}

// Step moves the player by whole tiles.
func (s *Session) Step(di, dj int) Result {
	return s.MoveTo(s.grid.Offset(s.state.Player.Coords, di, dj))
}

// Geolocate follows a device position while tracking is on and is ignored
// otherwise.
func (s *Session) Geolocate(p grid.Point) Result {
	if !s.state.Tracking {
		return Result{Point: s.state.Player.Coords}
	}
	return s.MoveTo(p)
}

func (s *Session) SetTracking(on bool) Result {
	s.state.Tracking = on
	s.renderer.PlayerUpdated(s.playerView())
	return Result{Point: s.state.Player.Coords}
}

func (s *Session) Collect(cellKey string) Result {
	return s.transfer(cellKey, s.cfg.CoinsPerClick)
}

func (s *Session) Deposit(cellKey string) Result {
	return s.transfer(cellKey, -s.cfg.CoinsPerClick)
}

func (s *Session) transfer(cellKey string, amount int) Result {
	c, err := s.visibleCache(cellKey)
	if err != nil {
		return Result{Err: err}
	}
	if err := ledger.Transfer(amount, c, s.state.Player); err != nil {
		return Result{Err: err}
	}
	err = s.persist()
	s.renderer.Update(c)
	s.renderer.PlayerUpdated(s.playerView())
	return Result{Err: err}
}

func (s *Session) visibleCache(cellKey string) (*model.Cache, error) {
	i, j, ok := ids.ParseCellKey(cellKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCache, cellKey)
	}
	c := s.state.Caches.Lookup(ids.CellKey(i, j))
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCache, cellKey)
	}
	if !s.state.Caches.IsVisible(c) {
		return nil, fmt.Errorf("%w: %s", ErrCacheHidden, cellKey)
	}
	return c, nil
}

// Reset wipes the durable store and the in-memory world in one step. The
// player keeps its position; Refresh repopulates the surroundings.
func (s *Session) Reset() Result {
	s.archive()

	var err error
	if s.store != nil {
		if err = s.store.Clear(); err != nil {
			s.logger.Printf("reset: clear store: %v", err)
			err = fmt.Errorf("clear store: %w", err)
		}
	}
	hidden := s.state.Caches.HideAll()
	s.state.Caches.Clear()
	s.state.Trail = nil
	s.state.Player.Coins = nil
	s.resets.Add(1)

	for _, c := range hidden {
		s.renderer.Hide(c)
	}
	s.renderer.PlayerUpdated(s.playerView())
	return Result{Err: err, Point: s.state.Player.Coords}
}

// ResetAndRefresh runs Reset and Refresh back to back so no other event sees
// the emptied world. The reset error wins when both fail.
func (s *Session) ResetAndRefresh() Result {
	res := s.Reset()
	ref := s.Refresh()
	if res.Err == nil {
		res.Err = ref.Err
	}
	res.Point = ref.Point
	return res
}

// Refresh re-derives the caches around the current position without moving.
func (s *Session) Refresh() Result {
	p := s.state.Player.Coords
	diff := s.state.Caches.Refresh(s.grid.Neighborhood(p, s.cfg.Radius))
	err := s.persist()
	s.render(diff)
	s.renderer.PlayerUpdated(s.playerView())
	return Result{Err: err, Point: p}
}

// Locate returns the centre of the cell a coin was minted in.
func (s *Session) Locate(coinID string) Result {
	i, j, _, ok := ids.ParseCoinID(coinID)
	if !ok {
		return Result{Err: fmt.Errorf("%w: %q", ErrBadCoinID, coinID)}
	}
	return Result{Point: s.grid.Center(s.grid.Canonical(i, j))}
}

func (s *Session) render(d caches.Diff) {
	s.spawned.Add(uint64(len(d.Spawned)))
	for _, c := range d.Hidden {
		s.renderer.Hide(c)
	}
	for _, c := range d.Shown {
		s.renderer.Show(c)
	}
}
