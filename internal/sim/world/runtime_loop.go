package world

import (
	"context"
	"errors"
	"fmt"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ledger"
	"geocoin.ai/internal/sim/model"
)

// Run drains the inbox until ctx is done or Stop is called. Each event runs
// to completion before the next is read.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case ev := <-s.inbox:
			res := s.Apply(ev)
			if ev.Resp != nil {
				select {
				case ev.Resp <- res:
				default:
				}
			}
		}
	}
}

// Stop ends Run and fails pending and future Submits. It may be called more
// than once.
func (s *Session) Stop() { s.stopOnce.Do(func() { close(s.stop) }) }

// Submit queues ev and waits for its result. It is safe to call from any
// goroutine while Run is active.
func (s *Session) Submit(ctx context.Context, ev Event) (Result, error) {
	resp := make(chan Result, 1)
	ev.Resp = resp

	select {
	case s.inbox <- ev:
	case <-s.stop:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case r := <-resp:
		return r, nil
	case <-s.stop:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Apply processes one event synchronously on the calling goroutine.
func (s *Session) Apply(ev Event) Result {
	res := s.dispatch(ev)

	if ev.Kind == EventState || ev.Kind == EventSnapshot {
		return res
	}
	seq := s.seq.Add(1)
	if res.Err != nil {
		s.rejected.Add(1)
		if errors.Is(res.Err, ledger.ErrInsufficientCoins) {
			s.logger.Printf("debug: %s %s rejected: %v", ev.Kind, ev.Cell, res.Err)
		}
	}
	s.writeEvent(seq, ev, res)
	if res.Err == nil && mutates(ev.Kind) {
		s.maybeSnapshot()
	}
	s.publishMetrics()
	return res
}

func (s *Session) dispatch(ev Event) Result {
	switch ev.Kind {
	case EventMoveTo:
		return s.MoveTo(ev.Point)
	case EventStep:
		return s.Step(ev.DI, ev.DJ)
	case EventGeolocate:
		return s.Geolocate(ev.Point)
	case EventTracking:
		return s.SetTracking(ev.Tracking)
	case EventCollect:
		return s.Collect(ev.Cell)
	case EventDeposit:
		return s.Deposit(ev.Cell)
	case EventReset:
		return s.Reset()
	case EventRefresh:
		return s.Refresh()
	case EventResetRefresh:
		return s.ResetAndRefresh()
	case EventLocate:
		return s.Locate(ev.CoinID)
	case EventState:
		v := s.StateView()
		if ev.OnState != nil {
			ev.OnState(v)
		}
		return Result{State: &v}
	case EventSnapshot:
		return Result{Err: s.sendSnapshot("admin")}
	default:
		return Result{Err: fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)}
	}
}

func mutates(k EventKind) bool {
	switch k {
	case EventLocate, EventTracking:
		return false
	}
	return true
}

func (s *Session) writeEvent(seq uint64, ev Event, res Result) {
	if len(s.events) == 0 {
		return
	}
	e := EventEntry{
		Seq:           seq,
		TimeMS:        s.now().UnixMilli(),
		Kind:          string(ev.Kind),
		Cell:          ev.Cell,
		CoinID:        ev.CoinID,
		OK:            res.Err == nil,
		KnownCaches:   s.state.Caches.Len(),
		VisibleCaches: s.state.Caches.VisibleLen(),
		PlayerCoins:   len(s.state.Player.Coins),
	}
	switch ev.Kind {
	case EventCollect:
		e.Amount = s.cfg.CoinsPerClick
	case EventDeposit:
		e.Amount = -s.cfg.CoinsPerClick
	case EventMoveTo, EventGeolocate, EventStep, EventLocate:
		p := res.Point
		e.Point = &p
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	for _, l := range s.events {
		if l == nil {
			continue
		}
		if err := l.WriteEvent(e); err != nil {
			s.logger.Printf("event log: %v", err)
		}
	}
}

// ViewOf describes c for display. tile is the grid's tile size.
func ViewOf(c *model.Cache, tile float64) CacheView {
	return CacheView{
		Cell:   c.ID(),
		I:      c.Cell.I,
		J:      c.Cell.J,
		Bounds: grid.BoundsFor(c.Cell, tile),
		Coins:  c.CoinIDs(),
	}
}

func (s *Session) StateView() StateView {
	vis := s.state.Caches.Visible()
	v := StateView{
		SessionID: s.cfg.SessionID,
		Seq:       s.seq.Load(),
		Player:    s.playerView(),
		Visible:   make([]CacheView, 0, len(vis)),
		Known:     s.state.Caches.Len(),
		Radius:    s.cfg.Radius,
		Tile:      s.cfg.TileDegrees,
	}
	for _, c := range vis {
		v.Visible = append(v.Visible, ViewOf(c, s.cfg.TileDegrees))
	}
	return v
}
