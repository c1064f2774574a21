// Package luck derives reproducible pseudo-random values from cell keys.
//
// Values are a pure function of the key's string form, so any cell's spawn
// status and starting richness can be recomputed on demand without ever
// materializing the grid. Never pass time or other non-deterministic input.
package luck

import (
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"geocoin.ai/internal/sim/grid"
)

const (
	DefaultSpawnProbability = 0.1
	DefaultMaxInitialCoins  = 100

	initialValueSalt = "initialValue"
)

// HashFunc maps a key string to a value in [0, 1).
type HashFunc func(key string) float64

// XXHash hashes key with xxHash64 and scales the top 53 bits into [0, 1).
func XXHash(key string) float64 {
	h := xxhash.Sum64String(key)
	return float64(h>>11) / (1 << 53)
}

// Key joins parts with "," the way the cell keys are written, e.g.
// Key(0, 0, "initialValue") == "0,0,initialValue".
func Key(parts ...any) string {
	ss := make([]string, len(parts))
	for i, p := range parts {
		ss[i] = fmt.Sprint(p)
	}
	return strings.Join(ss, ",")
}

type Config struct {
	SpawnProbability float64
	MaxInitialCoins  int
	Hash             HashFunc
}

type Generator struct {
	spawnProbability float64
	maxInitialCoins  int
	hash             HashFunc
}

func New(cfg Config) *Generator {
	if cfg.SpawnProbability <= 0 || math.IsNaN(cfg.SpawnProbability) {
		cfg.SpawnProbability = DefaultSpawnProbability
	}
	if cfg.MaxInitialCoins <= 0 {
		cfg.MaxInitialCoins = DefaultMaxInitialCoins
	}
	if cfg.Hash == nil {
		cfg.Hash = XXHash
	}
	return &Generator{
		spawnProbability: cfg.SpawnProbability,
		maxInitialCoins:  cfg.MaxInitialCoins,
		hash:             cfg.Hash,
	}
}

// Hash returns the value for Key(parts...), clamped into [0, 1).
func (g *Generator) Hash(parts ...any) float64 {
	v := g.hash(Key(parts...))
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return math.Nextafter(1, 0)
	}
	return v
}

// SpawnDecision reports whether c may host a cache.
func (g *Generator) SpawnDecision(c *grid.Cell) bool {
	return g.Hash(c.I, c.J) < g.spawnProbability
}

// InitialCoins is the coin count a freshly spawned cache at c starts with.
func (g *Generator) InitialCoins(c *grid.Cell) int {
	return int(math.Floor(g.Hash(c.I, c.J, initialValueSalt) * float64(g.maxInitialCoins)))
}

func (g *Generator) SpawnProbability() float64 { return g.spawnProbability }
func (g *Generator) MaxInitialCoins() int      { return g.maxInitialCoins }
