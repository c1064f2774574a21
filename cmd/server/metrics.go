package main

import (
	"fmt"
	"net/http"

	"geocoin.ai/internal/sim/world"
)

type metricsSource struct {
	sess    *world.Session
	clients func() int
	idx     runtimeIndex
}

func (m metricsSource) handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		s := m.sess.Metrics()
		sid := m.sess.Config().SessionID

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP geocoin_session_seq Events processed by the session.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_session_seq counter\n")
		fmt.Fprintf(rw, "geocoin_session_seq{session=%q} %d\n", sid, s.Seq)

		fmt.Fprintf(rw, "# HELP geocoin_caches Caches in the world.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_caches gauge\n")
		fmt.Fprintf(rw, "geocoin_caches{session=%q,state=%q} %d\n", sid, "known", s.KnownCaches)
		fmt.Fprintf(rw, "geocoin_caches{session=%q,state=%q} %d\n", sid, "visible", s.VisibleCaches)

		fmt.Fprintf(rw, "# HELP geocoin_player_coins Coins held by the player.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_player_coins gauge\n")
		fmt.Fprintf(rw, "geocoin_player_coins{session=%q} %d\n", sid, s.PlayerCoins)

		fmt.Fprintf(rw, "# HELP geocoin_player_trail_points Recorded player positions.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_player_trail_points gauge\n")
		fmt.Fprintf(rw, "geocoin_player_trail_points{session=%q} %d\n", sid, s.TrailLen)

		fmt.Fprintf(rw, "# HELP geocoin_grid_cells Materialized grid cells.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_grid_cells gauge\n")
		fmt.Fprintf(rw, "geocoin_grid_cells{session=%q} %d\n", sid, s.GridCells)

		fmt.Fprintf(rw, "# HELP geocoin_inbox_depth Session inbox backlog.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_inbox_depth gauge\n")
		fmt.Fprintf(rw, "geocoin_inbox_depth{session=%q} %d\n", sid, s.InboxDepth)

		fmt.Fprintf(rw, "# HELP geocoin_clients Connected websocket clients.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_clients gauge\n")
		fmt.Fprintf(rw, "geocoin_clients{session=%q} %d\n", sid, m.clients())

		fmt.Fprintf(rw, "# HELP geocoin_events_total Session event outcomes.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_events_total counter\n")
		fmt.Fprintf(rw, "geocoin_events_total{session=%q,outcome=%q} %d\n", sid, "rejected", s.RejectedTotal)
		fmt.Fprintf(rw, "geocoin_events_total{session=%q,outcome=%q} %d\n", sid, "reset", s.ResetTotal)

		fmt.Fprintf(rw, "# HELP geocoin_caches_spawned_total Caches created by the generator.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_caches_spawned_total counter\n")
		fmt.Fprintf(rw, "geocoin_caches_spawned_total{session=%q} %d\n", sid, s.SpawnedTotal)

		fmt.Fprintf(rw, "# HELP geocoin_load_skipped_total Stored records skipped on load.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_load_skipped_total counter\n")
		fmt.Fprintf(rw, "geocoin_load_skipped_total{session=%q} %d\n", sid, s.LoadSkippedTotal)

		if m.idx == nil {
			return
		}
		st := m.idx.Stats()
		fmt.Fprintf(rw, "# HELP geocoin_index_queue_depth Index writer queue depth.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "geocoin_index_queue_depth %d\n", st.QueueDepth)

		fmt.Fprintf(rw, "# HELP geocoin_index_written_total Rows written by the index writer.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_index_written_total counter\n")
		fmt.Fprintf(rw, "geocoin_index_written_total %d\n", st.WrittenTotal)

		fmt.Fprintf(rw, "# HELP geocoin_index_dropped_total Index rows dropped because the queue was full.\n")
		fmt.Fprintf(rw, "# TYPE geocoin_index_dropped_total counter\n")
		fmt.Fprintf(rw, "geocoin_index_dropped_total{kind=%q} %d\n", "event", st.DropEventTotal)
		fmt.Fprintf(rw, "geocoin_index_dropped_total{kind=%q} %d\n", "snapshot", st.DropSnapshotTotal)
		fmt.Fprintf(rw, "geocoin_index_dropped_total{kind=%q} %d\n", "reset", st.DropResetTotal)
	}
}
