package main

import (
	"context"
	"log"
	"path/filepath"

	"geocoin.ai/internal/persistence/archive"
	"geocoin.ai/internal/persistence/snapshot"
)

// runSnapshotWriter persists snapshots handed over by the session until ctx
// is done. Pre-reset snapshots are also archived.
func runSnapshotWriter(ctx context.Context, snapCh <-chan snapshot.SnapshotV1, snapDir, dataDir string, idx runtimeIndex, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snapCh:
			writeSnapshot(snap, snapDir, dataDir, idx, logger)
		}
	}
}

func writeSnapshot(snap snapshot.SnapshotV1, snapDir, dataDir string, idx runtimeIndex, logger *log.Logger) {
	path := filepath.Join(snapDir, snapshot.FileName(snap.Header.Seq))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Printf("snapshot write: %v", err)
		return
	}
	if idx != nil {
		idx.RecordSnapshot(path, snap)
	}

	meta, archivedPath, ok, err := archive.ArchiveResetSnapshot(dataDir, path, snap)
	if err != nil {
		logger.Printf("archive reset snapshot: %v", err)
		return
	}
	if ok {
		logger.Printf("archived pre-reset world seq=%d caches=%d coins=%d", meta.Seq, meta.Caches, meta.CacheCoins+meta.PlayerCoins)
		if idx != nil {
			idx.RecordReset(meta, archivedPath)
		}
	}
}
