package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"geocoin.ai/internal/persistence/snapshot"
)

type ResetArchiveMeta struct {
	ArchiveID   string `json:"archive_id"`
	SessionID   string `json:"session_id"`
	Seq         uint64 `json:"seq"`
	Snapshot    string `json:"snapshot"`
	CreatedAt   string `json:"created_at"`
	Caches      int    `json:"caches"`
	CacheCoins  int    `json:"cache_coins"`
	PlayerCoins int    `json:"player_coins"`
	TrailLen    int    `json:"trail_len"`
}

// ArchiveResetSnapshot copies a pre-reset snapshot into
// dataDir/archives/reset_<seq>/ next to a meta.json. Snapshots taken for any
// other reason are left alone and archived=false is returned.
func ArchiveResetSnapshot(dataDir, snapshotPath string, snap snapshot.SnapshotV1) (meta ResetArchiveMeta, archivedPath string, archived bool, err error) {
	if snap.Header.Reason != "reset" {
		return meta, "", false, nil
	}

	archiveDir := filepath.Join(dataDir, "archives", fmt.Sprintf("reset_%012d", snap.Header.Seq))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return meta, "", false, err
	}
	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return meta, "", false, err
	}

	tot := snap.Totals()
	meta = ResetArchiveMeta{
		ArchiveID:   uuid.NewString(),
		SessionID:   snap.Header.SessionID,
		Seq:         snap.Header.Seq,
		Snapshot:    filepath.Base(dst),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		Caches:      tot.Caches,
		CacheCoins:  tot.CacheCoins,
		PlayerCoins: tot.PlayerCoins,
		TrailLen:    tot.TrailLen,
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return meta, dst, true, err
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644); err != nil {
		return meta, dst, true, err
	}
	return meta, dst, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
