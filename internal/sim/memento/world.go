package memento

import (
	"errors"
	"fmt"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ids"
	"geocoin.ai/internal/sim/model"
)

var (
	ErrDuplicateCell = errors.New("cell already loaded")
	ErrBadCoinID     = errors.New("bad coin id")
)

// Snapshot is the unit of persistence: one memento per known cache, the
// player's coins and the player's trail.
type Snapshot struct {
	Caches      []string     `json:"mementoArray"`
	PlayerCoins []CoinRecord `json:"playerCoins"`
	PlayerTrail []grid.Point `json:"playerMovementArray"`
}

// World is the live state a Snapshot is taken from.
type World struct {
	Caches []*model.Cache
	Player *model.Player
	Trail  []grid.Point
}

// Decoded is what DecodeWorld could rebuild. PlayerCoins are already held by
// the player.
type Decoded struct {
	Caches      []*model.Cache
	PlayerCoins []*model.Coin
	Trail       []grid.Point
}

func EncodeWorld(w World) (Snapshot, error) {
	snap := Snapshot{
		Caches:      make([]string, 0, len(w.Caches)),
		PlayerCoins: []CoinRecord{},
		PlayerTrail: make([]grid.Point, len(w.Trail)),
	}
	for _, c := range w.Caches {
		s, err := ToMemento(c)
		if err != nil {
			return Snapshot{}, fmt.Errorf("encode cache %s: %w", c.ID(), err)
		}
		snap.Caches = append(snap.Caches, s)
	}
	if w.Player != nil {
		snap.PlayerCoins = Records(w.Player.Coins)
	}
	copy(snap.PlayerTrail, w.Trail)
	return snap, nil
}

// DecodeWorld rebuilds caches and the player's inventory. Bad entries are
// skipped and reported; the load never aborts. The first holder of a coin id
// keeps it (caches in order, then the player), and a second cache for an
// already loaded cell is skipped.
func DecodeWorld(g *grid.Grid, snap Snapshot) (Decoded, []error) {
	var (
		out   Decoded
		errs  []error
		owner = map[string]string{}
		cells = map[*grid.Cell]bool{}
	)

	for idx, s := range snap.Caches {
		c, err := FromMemento(g, s)
		if err != nil {
			errs = append(errs, fmt.Errorf("memento %d: %w", idx, err))
			continue
		}
		if cells[c.Cell] {
			errs = append(errs, fmt.Errorf("memento %d: cache %s: %w", idx, c.ID(), ErrDuplicateCell))
			continue
		}
		cells[c.Cell] = true

		kept := c.Coins[:0]
		for _, coin := range c.Coins {
			if prev, dup := owner[coin.ID]; dup {
				errs = append(errs, fmt.Errorf("memento %d: coin %s already held by %s: %w", idx, coin.ID, prev, ErrDuplicateCoin))
				continue
			}
			owner[coin.ID] = "cache " + c.ID()
			kept = append(kept, coin)
		}
		c.Coins = kept
		out.Caches = append(out.Caches, c)
	}

	for idx, rec := range snap.PlayerCoins {
		if _, _, _, ok := ids.ParseCoinID(rec.ID); !ok {
			errs = append(errs, fmt.Errorf("player coin %d %q: %w", idx, rec.ID, ErrBadCoinID))
			continue
		}
		if prev, dup := owner[rec.ID]; dup {
			errs = append(errs, fmt.Errorf("player coin %s already held by %s: %w", rec.ID, prev, ErrDuplicateCoin))
			continue
		}
		owner[rec.ID] = "player"
		out.PlayerCoins = append(out.PlayerCoins, &model.Coin{ID: rec.ID, Holder: model.PlayerHolder()})
	}

	out.Trail = make([]grid.Point, len(snap.PlayerTrail))
	copy(out.Trail, snap.PlayerTrail)
	return out, errs
}
