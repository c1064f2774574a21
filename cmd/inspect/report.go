package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"geocoin.ai/internal/persistence/store"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ledger"
	"geocoin.ai/internal/sim/memento"
	"geocoin.ai/internal/sim/model"
)

type report struct {
	Caches      int      `json:"caches"`
	CacheCoins  int      `json:"cache_coins"`
	PlayerCoins int      `json:"player_coins"`
	TrailLen    int      `json:"trail_len"`
	Player      *string  `json:"player_cell,omitempty"`
	Skipped     []string `json:"skipped,omitempty"`
	Audit       string   `json:"audit"`
	Richest     []string `json:"richest,omitempty"`
}

// summarize rebuilds the stored world on a fresh grid and audits coin
// ownership.
func summarize(tile float64, snap memento.Snapshot) report {
	g := grid.New(tile)
	dec, errs := memento.DecodeWorld(g, snap)

	rep := report{
		Caches:      len(dec.Caches),
		PlayerCoins: len(dec.PlayerCoins),
		TrailLen:    len(dec.Trail),
		Audit:       "ok",
	}
	for _, err := range errs {
		rep.Skipped = append(rep.Skipped, err.Error())
	}
	for _, c := range dec.Caches {
		rep.CacheCoins += len(c.Coins)
	}

	player := &model.Player{Coins: dec.PlayerCoins}
	if n := len(dec.Trail); n > 0 {
		cell := g.CellAt(dec.Trail[n-1]).Key()
		rep.Player = &cell
	}
	if err := ledger.Audit(dec.Caches, player); err != nil {
		rep.Audit = err.Error()
	}

	sorted := append([]*model.Cache(nil), dec.Caches...)
	sort.SliceStable(sorted, func(a, b int) bool { return len(sorted[a].Coins) > len(sorted[b].Coins) })
	for i, c := range sorted {
		if i == 5 || len(c.Coins) == 0 {
			break
		}
		rep.Richest = append(rep.Richest, fmt.Sprintf("%s:%d", c.ID(), len(c.Coins)))
	}
	return rep
}

// readStore loads the three session keys. Missing keys read as empty.
func readStore(kv store.KV) (memento.Snapshot, error) {
	var snap memento.Snapshot
	for _, k := range []struct {
		key string
		dst any
	}{
		{store.KeyMementos, &snap.Caches},
		{store.KeyPlayerCoins, &snap.PlayerCoins},
		{store.KeyPlayerHistory, &snap.PlayerTrail},
	} {
		raw, ok, err := kv.Get(k.key)
		if err != nil {
			return snap, fmt.Errorf("get %s: %w", k.key, err)
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), k.dst); err != nil {
			return snap, fmt.Errorf("decode %s: %w", k.key, err)
		}
	}
	return snap, nil
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
