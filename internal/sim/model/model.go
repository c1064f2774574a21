package model

import (
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/ids"
)

type HolderKind uint8

const (
	HolderNone HolderKind = iota
	HolderCache
	HolderPlayer
)

func (k HolderKind) String() string {
	switch k {
	case HolderCache:
		return "cache"
	case HolderPlayer:
		return "player"
	default:
		return "none"
	}
}

// Holder says who currently possesses a coin. CacheID is set only for
// HolderCache and is the owning cache's cell key.
type Holder struct {
	Kind    HolderKind
	CacheID string
}

func CacheHolder(cacheID string) Holder { return Holder{Kind: HolderCache, CacheID: cacheID} }
func PlayerHolder() Holder              { return Holder{Kind: HolderPlayer} }

// Coin ids never change; Holder moves with the coin.
type Coin struct {
	ID     string
	Holder Holder
}

// Cache is a coin container anchored to one cell. Coins is a stack: the tail
// is the most recently added coin.
type Cache struct {
	Cell  *grid.Cell
	Coins []*Coin
}

// NewCache mints n fresh coins "<i>:<j>:<seq>" held by the new cache.
func NewCache(cell *grid.Cell, n int) *Cache {
	c := &Cache{Cell: cell, Coins: make([]*Coin, 0, n)}
	holder := CacheHolder(c.ID())
	for seq := 0; seq < n; seq++ {
		c.Coins = append(c.Coins, &Coin{ID: ids.CoinID(cell.I, cell.J, seq), Holder: holder})
	}
	return c
}

func (c *Cache) ID() string { return c.Cell.Key() }

func (c *Cache) Holder() Holder { return CacheHolder(c.ID()) }

func (c *Cache) CoinIDs() []string { return coinIDs(c.Coins) }

type Player struct {
	Coords grid.Point
	Cell   *grid.Cell
	Coins  []*Coin
}

func (p *Player) CoinIDs() []string { return coinIDs(p.Coins) }

func coinIDs(coins []*Coin) []string {
	out := make([]string, len(coins))
	for i, c := range coins {
		out[i] = c.ID
	}
	return out
}
