package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "tile_degrees: 0.001\nneighborhood_radius: 2\nstart:\n  lat: 1.5\n  lng: -2.5\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.TileDegrees != 0.001 || tu.NeighborhoodRadius != 2 {
		t.Fatalf("overrides not applied: %+v", tu)
	}
	if tu.Start.Lat != 1.5 || tu.Start.Lng != -2.5 {
		t.Fatalf("start not applied: %+v", tu.Start)
	}
	if tu.SpawnProbability != 0.1 || tu.MaxInitialCoins != 100 || tu.CoinsPerClick != 1 {
		t.Fatalf("defaults lost: %+v", tu)
	}
}

func TestLoad_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("tile_degrees: 0\ncoins_per_click: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "tile_degrees") || !strings.Contains(err.Error(), "coins_per_click") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}

func TestShippedConfigLoads(t *testing.T) {
	tu, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu != Defaults() {
		t.Fatalf("configs/tuning.yaml drifted from Defaults: %+v", tu)
	}
}
