package world

import "context"

// RequestReset resets the session from another goroutine and refreshes the
// surroundings in the same inbox turn, the sequence a player-issued reset goes
// through.
func (s *Session) RequestReset(ctx context.Context) error {
	res, err := s.Submit(ctx, Event{Kind: EventResetRefresh})
	if err != nil {
		return err
	}
	return res.Err
}
