package world

import (
	"context"

	"geocoin.ai/internal/persistence/snapshot"
)

// Snapshot exports the session for the snapshot writer. Must be called on
// the session goroutine.
func (s *Session) Snapshot(reason string) (snapshot.SnapshotV1, error) {
	world, err := s.encode()
	if err != nil {
		return snapshot.SnapshotV1{}, err
	}
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version:   snapshot.Version,
			SessionID: s.cfg.SessionID,
			Seq:       s.seq.Load(),
			CreatedAt: s.now().UnixMilli(),
			Reason:    reason,
		},
		TileDegrees:        s.cfg.TileDegrees,
		NeighborhoodRadius: s.cfg.Radius,
		SpawnProbability:   s.cfg.SpawnProbability,
		MaxInitialCoins:    s.cfg.MaxInitialCoins,
		Player:             s.state.Player.Coords,
		Tracking:           s.state.Tracking,
		World:              world,
	}, nil
}

// RequestSnapshot asks the session goroutine to push a snapshot to the sink.
// It is safe to call from other goroutines (e.g. admin HTTP handlers).
func (s *Session) RequestSnapshot(ctx context.Context) error {
	res, err := s.Submit(ctx, Event{Kind: EventSnapshot})
	if err != nil {
		return err
	}
	return res.Err
}

// RequestState returns a copy of the current state from the session goroutine.
func (s *Session) RequestState(ctx context.Context) (StateView, error) {
	return s.RequestStateWith(ctx, nil)
}

// RequestStateWith is RequestState that also calls fn with the view on the
// session goroutine. Renderer calls caused by later events happen after fn
// returns, so fn can subscribe a listener without missing or repeating
// updates.
func (s *Session) RequestStateWith(ctx context.Context, fn func(StateView)) (StateView, error) {
	res, err := s.Submit(ctx, Event{Kind: EventState, OnState: fn})
	if err != nil {
		return StateView{}, err
	}
	if res.State == nil {
		return StateView{}, res.Err
	}
	return *res.State, nil
}

func (s *Session) maybeSnapshot() {
	if s.snapshotSink == nil || s.cfg.SnapshotEveryEvents <= 0 {
		return
	}
	s.sinceSnap++
	if s.sinceSnap < s.cfg.SnapshotEveryEvents {
		return
	}
	if err := s.sendSnapshot("periodic"); err != nil {
		s.logger.Printf("snapshot: %v", err)
		return
	}
	s.sinceSnap = 0
}

func (s *Session) sendSnapshot(reason string) error {
	if s.snapshotSink == nil {
		return ErrSinkBusy
	}
	snap, err := s.Snapshot(reason)
	if err != nil {
		return err
	}
	select {
	case s.snapshotSink <- snap:
		return nil
	default:
		return ErrSinkBusy
	}
}

// archive hands the pre-reset world to the sink so it can be kept. Dropped
// when the sink is absent or full.
func (s *Session) archive() {
	if s.snapshotSink == nil {
		return
	}
	if err := s.sendSnapshot("reset"); err != nil {
		s.logger.Printf("reset: archive dropped: %v", err)
	}
}
