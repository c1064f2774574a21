package world

import (
	"github.com/google/uuid"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/luck"
	"geocoin.ai/internal/sim/tuning"
)

type Config struct {
	SessionID string

	TileDegrees      float64
	Radius           int
	SpawnProbability float64
	MaxInitialCoins  int
	CoinsPerClick    int
	Start            grid.Point

	// 0 disables periodic snapshots.
	SnapshotEveryEvents int

	// Hash overrides the generator's hash; nil means luck.XXHash.
	Hash luck.HashFunc
}

func ConfigFromTuning(t tuning.Tuning) Config {
	return Config{
		TileDegrees:         t.TileDegrees,
		Radius:              t.NeighborhoodRadius,
		SpawnProbability:    t.SpawnProbability,
		MaxInitialCoins:     t.MaxInitialCoins,
		CoinsPerClick:       t.CoinsPerClick,
		Start:               grid.Point{Lat: t.Start.Lat, Lng: t.Start.Lng},
		SnapshotEveryEvents: t.SnapshotEveryEvents,
	}
}

func (c Config) withDefaults() Config {
	d := ConfigFromTuning(tuning.Defaults())
	if c.SessionID == "" {
		c.SessionID = uuid.NewString()
	}
	if c.TileDegrees <= 0 {
		c.TileDegrees = d.TileDegrees
	}
	if c.Radius < 0 {
		c.Radius = 0
	}
	if c.SpawnProbability <= 0 {
		c.SpawnProbability = d.SpawnProbability
	}
	if c.MaxInitialCoins <= 0 {
		c.MaxInitialCoins = d.MaxInitialCoins
	}
	if c.CoinsPerClick <= 0 {
		c.CoinsPerClick = d.CoinsPerClick
	}
	if c.SnapshotEveryEvents < 0 {
		c.SnapshotEveryEvents = 0
	}
	return c
}
