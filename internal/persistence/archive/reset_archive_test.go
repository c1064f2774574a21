package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/sim/memento"
)

func TestArchiveResetSnapshot_CopiesAndWritesMeta(t *testing.T) {
	dataDir := t.TempDir()
	snap := snapshot.SnapshotV1{
		Header:      snapshot.Header{Version: snapshot.Version, SessionID: "s1", Seq: 7, Reason: "reset"},
		TileDegrees: 1,
		World: memento.Snapshot{
			Caches:      []string{`{"cell":{"i":0,"j":0},"coins":[{"id":"0:0:0"},{"id":"0:0:1"}]}`},
			PlayerCoins: []memento.CoinRecord{{ID: "0:0:2"}},
		},
	}
	src := filepath.Join(dataDir, "snapshots", snapshot.FileName(7))
	if err := snapshot.WriteSnapshot(src, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	meta, archivedPath, ok, err := ArchiveResetSnapshot(dataDir, src, snap)
	if err != nil || !ok {
		t.Fatalf("archive: ok=%v err=%v", ok, err)
	}
	if filepath.Base(filepath.Dir(archivedPath)) != "reset_000000000007" {
		t.Fatalf("unexpected archive dir %s", archivedPath)
	}
	back, err := snapshot.ReadSnapshot(archivedPath)
	if err != nil || back.Header.SessionID != "s1" {
		t.Fatalf("archived snapshot unreadable: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(filepath.Dir(archivedPath), "meta.json"))
	if err != nil {
		t.Fatalf("meta.json: %v", err)
	}
	var onDisk ResetArchiveMeta
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatal(err)
	}
	if onDisk.ArchiveID == "" || onDisk.ArchiveID != meta.ArchiveID {
		t.Fatalf("archive id mismatch: %q vs %q", onDisk.ArchiveID, meta.ArchiveID)
	}
	if onDisk.Caches != 1 || onDisk.CacheCoins != 2 || onDisk.PlayerCoins != 1 {
		t.Fatalf("unexpected meta: %+v", onDisk)
	}
}

func TestArchiveResetSnapshot_IgnoresOtherReasons(t *testing.T) {
	snap := snapshot.SnapshotV1{Header: snapshot.Header{Reason: "periodic"}}
	_, _, ok, err := ArchiveResetSnapshot(t.TempDir(), "unused", snap)
	if err != nil || ok {
		t.Fatalf("expected no archive, ok=%v err=%v", ok, err)
	}
}
