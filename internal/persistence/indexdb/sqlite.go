package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"geocoin.ai/internal/persistence/archive"
	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index of session events, snapshots and
// reset archives. Writes are queued and committed in batches by one goroutine;
// when the queue is full they are dropped and counted. The JSONL event log
// stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropEvent    atomic.Uint64
	dropSnapshot atomic.Uint64
	dropReset    atomic.Uint64
	written      atomic.Uint64
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqSnapshot
	reqReset
)

type req struct {
	kind reqKind

	event    world.EventEntry
	snapshot snapshotRow
	reset    resetRow
}

type snapshotRow struct {
	Seq         uint64
	SessionID   string
	Reason      string
	Path        string
	Caches      int
	CacheCoins  int
	PlayerCoins int
	TrailLen    int
}

type resetRow struct {
	ArchiveID  string
	SessionID  string
	Seq        uint64
	Path       string
	CacheCoins int
	RecordedAt string
}

type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	WrittenTotal      uint64 `json:"written_total"`
	DropEventTotal    uint64 `json:"drop_event_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
	DropResetTotal    uint64 `json:"drop_reset_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY,
			t_ms INTEGER NOT NULL,
			kind TEXT NOT NULL,
			cell TEXT,
			coin_id TEXT,
			amount INTEGER NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT,
			known_caches INTEGER NOT NULL,
			visible_caches INTEGER NOT NULL,
			player_coins INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind_seq ON events(kind, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_events_cell_seq ON events(cell, seq);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			seq INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			path TEXT NOT NULL,
			caches INTEGER NOT NULL,
			cache_coins INTEGER NOT NULL,
			player_coins INTEGER NOT NULL,
			trail_len INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq, reason)
		);`,
		`CREATE TABLE IF NOT EXISTS resets (
			archive_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			snapshot_path TEXT NOT NULL,
			cache_coins INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		WrittenTotal:      s.written.Load(),
		DropEventTotal:    s.dropEvent.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		DropResetTotal:    s.dropReset.Load(),
	}
}

func (s *SQLiteIndex) WriteEvent(e world.EventEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqEvent, event: e}:
	default:
		s.dropEvent.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	tot := snap.Totals()
	r := snapshotRow{
		Seq:         snap.Header.Seq,
		SessionID:   snap.Header.SessionID,
		Reason:      snap.Header.Reason,
		Path:        path,
		Caches:      tot.Caches,
		CacheCoins:  tot.CacheCoins,
		PlayerCoins: tot.PlayerCoins,
		TrailLen:    tot.TrailLen,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

func (s *SQLiteIndex) RecordReset(meta archive.ResetArchiveMeta, archivedPath string) {
	if s == nil || s.closed.Load() || meta.ArchiveID == "" {
		return
	}
	r := resetRow{
		ArchiveID:  meta.ArchiveID,
		SessionID:  meta.SessionID,
		Seq:        meta.Seq,
		Path:       archivedPath,
		CacheCoins: meta.CacheCoins,
		RecordedAt: meta.CreatedAt,
	}
	select {
	case s.ch <- req{kind: reqReset, reset: r}:
	default:
		s.dropReset.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(seq,t_ms,kind,cell,coin_id,amount,ok,error,known_caches,visible_caches,player_coins,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(seq,session_id,reason,path,caches,cache_coins,player_coins,trail_len) VALUES(?,?,?,?,?,?,?,?)`)
	insertReset, _ := s.db.Prepare(`INSERT OR REPLACE INTO resets(archive_id,session_id,seq,snapshot_path,cache_coins,recorded_at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertEvent, insertSnapshot, insertReset} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err == nil {
			s.written.Add(uint64(opCount))
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEvent:
			e := r.event
			raw, _ := json.Marshal(e)
			exec(insertEvent,
				int64(e.Seq), e.TimeMS, e.Kind, e.Cell, e.CoinID, e.Amount, e.OK, e.Error,
				e.KnownCaches, e.VisibleCaches, e.PlayerCoins, string(raw))
		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot,
				int64(sn.Seq), sn.SessionID, sn.Reason, sn.Path,
				sn.Caches, sn.CacheCoins, sn.PlayerCoins, sn.TrailLen)
		case reqReset:
			rs := r.reset
			exec(insertReset, rs.ArchiveID, rs.SessionID, int64(rs.Seq), rs.Path, rs.CacheCoins, rs.RecordedAt)
		}
		// Commit eagerly when the queue drains so readers see fresh rows.
		if len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
