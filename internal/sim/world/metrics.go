package world

type Metrics struct {
	Seq uint64 `json:"seq"`

	KnownCaches   int `json:"known_caches"`
	VisibleCaches int `json:"visible_caches"`
	PlayerCoins   int `json:"player_coins"`
	TrailLen      int `json:"trail_len"`
	GridCells     int `json:"grid_cells"`
	InboxDepth    int `json:"inbox_depth"`

	RejectedTotal    uint64 `json:"rejected_total"`
	SpawnedTotal     uint64 `json:"spawned_total"`
	ResetTotal       uint64 `json:"reset_total"`
	LoadSkippedTotal uint64 `json:"load_skipped_total"`
}

func (s *Session) publishMetrics() {
	s.metrics.Store(Metrics{
		Seq:              s.seq.Load(),
		KnownCaches:      s.state.Caches.Len(),
		VisibleCaches:    s.state.Caches.VisibleLen(),
		PlayerCoins:      len(s.state.Player.Coins),
		TrailLen:         len(s.state.Trail),
		GridCells:        s.grid.Len(),
		InboxDepth:       len(s.inbox),
		RejectedTotal:    s.rejected.Load(),
		SpawnedTotal:     s.spawned.Load(),
		ResetTotal:       s.resets.Load(),
		LoadSkippedTotal: s.skipped.Load(),
	})
}

// Metrics is safe to call from any goroutine.
func (s *Session) Metrics() Metrics {
	if s == nil {
		return Metrics{}
	}
	m, _ := s.metrics.Load().(Metrics)
	return m
}
