package main

import (
	"log"

	"geocoin.ai/internal/config"
	"geocoin.ai/internal/persistence/archive"
	"geocoin.ai/internal/persistence/indexdb"
	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.EventLogger
	Close() error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	RecordReset(meta archive.ResetArchiveMeta, archivedPath string)
	Stats() indexdb.Stats
}

func openRuntimeIndex(cfg config.Server, logger *log.Logger) (runtimeIndex, error) {
	if !cfg.IndexEnabled() {
		logger.Printf("index backend disabled (%s)", cfg.IndexBackend)
		return nil, nil
	}
	idx, err := indexdb.OpenSQLite(cfg.IndexPath())
	if err != nil {
		return nil, err
	}
	return idx, nil
}
