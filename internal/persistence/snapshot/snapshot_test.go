package snapshot

import (
	"path/filepath"
	"testing"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/memento"
)

func sample() SnapshotV1 {
	return SnapshotV1{
		Header:             Header{Version: Version, SessionID: "s-1", Seq: 42, CreatedAt: 1000},
		TileDegrees:        1,
		NeighborhoodRadius: 2,
		SpawnProbability:   0.1,
		MaxInitialCoins:    100,
		Player:             grid.Point{Lat: 2.5, Lng: -0.5},
		Tracking:           true,
		World: memento.Snapshot{
			Caches: []string{
				`{"cell":{"i":2,"j":-1},"coins":[{"id":"2:-1:0"},{"id":"2:-1:1"}]}`,
				`{"cell":{"i":0,"j":0},"coins":[]}`,
			},
			PlayerCoins: []memento.CoinRecord{{ID: "2:-1:2"}},
			PlayerTrail: []grid.Point{{Lat: 2.5, Lng: -0.5}},
		},
	}
}

func TestWriteReadSnapshot(t *testing.T) {
	p := filepath.Join(t.TempDir(), "snapshots", FileName(42))
	in := sample()
	if err := WriteSnapshot(p, in); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	h, err := ReadHeader(p)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h != in.Header {
		t.Fatalf("header mismatch: %+v", h)
	}

	out, err := ReadSnapshot(p)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if out.Player != in.Player || !out.Tracking || out.NeighborhoodRadius != 2 {
		t.Fatalf("fields mismatch: %+v", out)
	}
	if len(out.World.Caches) != 2 || out.World.Caches[0] != in.World.Caches[0] {
		t.Fatalf("caches mismatch: %+v", out.World.Caches)
	}

	tot := out.Totals()
	if tot.Caches != 2 || tot.CacheCoins != 2 || tot.PlayerCoins != 1 || tot.TrailLen != 1 || tot.BadMementos != 0 {
		t.Fatalf("unexpected totals: %+v", tot)
	}
}

func TestReadSnapshot_RejectsVersion(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.snap.zst")
	in := sample()
	in.Header.Version = 99
	if err := WriteSnapshot(p, in); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSnapshot(p); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestFileNameSorts(t *testing.T) {
	if FileName(9) >= FileName(10) {
		t.Fatalf("file names must sort by seq: %s %s", FileName(9), FileName(10))
	}
}
