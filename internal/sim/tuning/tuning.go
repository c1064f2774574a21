package tuning

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TileDegrees        float64 `yaml:"tile_degrees"`
	NeighborhoodRadius int     `yaml:"neighborhood_radius"`
	SpawnProbability   float64 `yaml:"spawn_probability"`
	MaxInitialCoins    int     `yaml:"max_initial_coins"`
	CoinsPerClick      int     `yaml:"coins_per_click"`
	Start              Point   `yaml:"start"`

	// 0 disables periodic snapshots.
	SnapshotEveryEvents int `yaml:"snapshot_every_events"`
}

type Point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Defaults are the values the game shipped with: a 1e-4 degree tile, a
// 13-tile radius and a start in front of the Oakes College classroom.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:     "1.0",
		TileDegrees:         1e-4,
		NeighborhoodRadius:  13,
		SpawnProbability:    0.1,
		MaxInitialCoins:     100,
		CoinsPerClick:       1,
		Start:               Point{Lat: 36.98949379578401, Lng: -122.06277128548504},
		SnapshotEveryEvents: 50,
	}
}

// Load reads path over Defaults, so omitted keys keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if !(t.TileDegrees > 0) || math.IsInf(t.TileDegrees, 0) {
		errs = append(errs, fmt.Errorf("tile_degrees must be > 0, got %v", t.TileDegrees))
	}
	if t.NeighborhoodRadius < 0 {
		errs = append(errs, fmt.Errorf("neighborhood_radius must be >= 0, got %d", t.NeighborhoodRadius))
	}
	if !(t.SpawnProbability > 0 && t.SpawnProbability <= 1) {
		errs = append(errs, fmt.Errorf("spawn_probability must be in (0,1], got %v", t.SpawnProbability))
	}
	if t.MaxInitialCoins <= 0 {
		errs = append(errs, fmt.Errorf("max_initial_coins must be > 0, got %d", t.MaxInitialCoins))
	}
	if t.CoinsPerClick <= 0 {
		errs = append(errs, fmt.Errorf("coins_per_click must be > 0, got %d", t.CoinsPerClick))
	}
	if t.SnapshotEveryEvents < 0 {
		errs = append(errs, fmt.Errorf("snapshot_every_events must be >= 0, got %d", t.SnapshotEveryEvents))
	}
	return errors.Join(errs...)
}
