package world

import (
	"encoding/json"
	"errors"
	"fmt"

	"geocoin.ai/internal/persistence/store"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/memento"
)

type LoadReport struct {
	Caches      int
	PlayerCoins int
	TrailLen    int
	Skipped     int
}

// Load restores the world from the store and refreshes the surroundings. A
// missing or malformed key loads as empty; bad mementos are skipped. Call it
// before Run.
func (s *Session) Load() (LoadReport, error) {
	var snap memento.Snapshot
	s.readKey(store.KeyMementos, &snap.Caches)
	s.readKey(store.KeyPlayerCoins, &snap.PlayerCoins)
	s.readKey(store.KeyPlayerHistory, &snap.PlayerTrail)

	dec, errs := memento.DecodeWorld(s.grid, snap)
	for _, err := range errs {
		s.logger.Printf("load: skip: %v", err)
	}
	skipped := len(errs)
	for _, c := range dec.Caches {
		if err := s.state.Caches.Adopt(c); err != nil {
			s.logger.Printf("load: adopt %s: %v", c.ID(), err)
			skipped++
		}
	}
	s.skipped.Add(uint64(skipped))

	pl := s.state.Player
	pl.Coins = dec.PlayerCoins
	s.state.Trail = dec.Trail
	pl.Coords = s.cfg.Start
	if n := len(dec.Trail); n > 0 {
		pl.Coords = dec.Trail[n-1]
	}
	pl.Cell = s.grid.CellAt(pl.Coords)

	rep := LoadReport{
		Caches:      s.state.Caches.Len(),
		PlayerCoins: len(pl.Coins),
		TrailLen:    len(s.state.Trail),
		Skipped:     skipped,
	}
	res := s.Refresh()
	s.publishMetrics()
	return rep, res.Err
}

func (s *Session) readKey(key string, v any) {
	if s.store == nil {
		return
	}
	raw, ok, err := s.store.Get(key)
	if err != nil {
		s.logger.Printf("load: read %s: %v", key, err)
		return
	}
	if !ok || raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Printf("load: decode %s: %v", key, err)
	}
}

// persist writes all three keys in full.
func (s *Session) persist() error {
	if s.store == nil {
		return nil
	}
	snap, err := s.encode()
	if err != nil {
		s.logger.Printf("persist: %v", err)
		return err
	}
	var errs []error
	write := func(key string, v any) {
		b, err := json.Marshal(v)
		if err == nil {
			err = s.store.Set(key, string(b))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", key, err))
		}
	}
	write(store.KeyMementos, snap.Caches)
	write(store.KeyPlayerCoins, snap.PlayerCoins)
	write(store.KeyPlayerHistory, snap.PlayerTrail)
	if err := errors.Join(errs...); err != nil {
		s.logger.Printf("persist: %v", err)
		return err
	}
	return nil
}

func (s *Session) encode() (memento.Snapshot, error) {
	return memento.EncodeWorld(memento.World{
		Caches: s.state.Caches.Known(),
		Player: s.state.Player,
		Trail:  s.state.Trail,
	})
}

func (s *Session) trailCopy() []grid.Point {
	out := make([]grid.Point, len(s.state.Trail))
	copy(out, s.state.Trail)
	return out
}
