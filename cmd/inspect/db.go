package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 20, "result limit")
	kind := fs.String("kind", "", "event kind filter (events)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "session.sqlite")
	}
	if *limit <= 0 {
		*limit = 20
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runQuery(db, q, *kind, *limit); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: inspect db [-data ./data|-db PATH] [-limit N] [-kind K] snapshots|resets|events|cells")
		os.Exit(2)
	}
}

func runQuery(db *sql.DB, q, kind string, limit int) error {
	switch q {
	case "snapshots":
		rows, err := db.Query(`SELECT seq,session_id,reason,path,caches,cache_coins,player_coins,trail_len FROM snapshots ORDER BY seq DESC LIMIT ?`, limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Seq         int64  `json:"seq"`
				SessionID   string `json:"session_id"`
				Reason      string `json:"reason"`
				Path        string `json:"path"`
				Caches      int    `json:"caches"`
				CacheCoins  int    `json:"cache_coins"`
				PlayerCoins int    `json:"player_coins"`
				TrailLen    int    `json:"trail_len"`
			}
			if err := rows.Scan(&r.Seq, &r.SessionID, &r.Reason, &r.Path, &r.Caches, &r.CacheCoins, &r.PlayerCoins, &r.TrailLen); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(os.Stdout, r)
		}
		return rows.Err()

	case "resets":
		rows, err := db.Query(`SELECT archive_id,session_id,seq,snapshot_path,cache_coins,recorded_at FROM resets ORDER BY recorded_at DESC LIMIT ?`, limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				ArchiveID  string `json:"archive_id"`
				SessionID  string `json:"session_id"`
				Seq        int64  `json:"seq"`
				Path       string `json:"snapshot_path"`
				CacheCoins int    `json:"cache_coins"`
				RecordedAt string `json:"recorded_at"`
			}
			if err := rows.Scan(&r.ArchiveID, &r.SessionID, &r.Seq, &r.Path, &r.CacheCoins, &r.RecordedAt); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(os.Stdout, r)
		}
		return rows.Err()

	case "events":
		query := `SELECT seq,t_ms,kind,COALESCE(cell,''),amount,ok,COALESCE(error,'') FROM events`
		qargs := []any{}
		if kind != "" {
			query += ` WHERE kind=?`
			qargs = append(qargs, strings.ToUpper(kind))
		}
		query += ` ORDER BY seq DESC LIMIT ?`
		qargs = append(qargs, limit)
		rows, err := db.Query(query, qargs...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Seq    int64  `json:"seq"`
				TimeMS int64  `json:"t_ms"`
				Kind   string `json:"kind"`
				Cell   string `json:"cell,omitempty"`
				Amount int    `json:"amount,omitempty"`
				OK     bool   `json:"ok"`
				Error  string `json:"error,omitempty"`
			}
			if err := rows.Scan(&r.Seq, &r.TimeMS, &r.Kind, &r.Cell, &r.Amount, &r.OK, &r.Error); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(os.Stdout, r)
		}
		return rows.Err()

	case "cells":
		// Net coins taken out of each cache by successful transfers.
		rows, err := db.Query(`SELECT cell, SUM(amount) AS net, COUNT(*) AS n FROM events WHERE ok=1 AND cell IS NOT NULL AND cell<>'' GROUP BY cell ORDER BY net DESC LIMIT ?`, limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Cell string `json:"cell"`
				Net  int    `json:"net_collected"`
				N    int    `json:"transfers"`
			}
			if err := rows.Scan(&r.Cell, &r.Net, &r.N); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(os.Stdout, r)
		}
		return rows.Err()
	}
	return fmt.Errorf("unknown query: %s", q)
}
