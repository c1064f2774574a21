package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	persistlog "geocoin.ai/internal/persistence/log"
	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/persistence/store"
	"geocoin.ai/internal/sim/tuning"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "store":
			storeCmd(os.Args[2:])
			return
		case "events":
			eventsCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: inspect snapshot|store|events|db [flags]")
	os.Exit(2)
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	path := fs.String("path", "", "path to .snap.zst (default: latest under -dir)")
	dir := fs.String("dir", "./data/snapshots", "snapshot directory")
	_ = fs.Parse(args)

	p := strings.TrimSpace(*path)
	if p == "" {
		p = latestSnapshot(*dir)
	}
	if p == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found")
		os.Exit(2)
	}
	snap, err := snapshot.ReadSnapshot(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d session=%s seq=%d reason=%s tile=%g radius=%d\n",
		snap.Header.Version, snap.Header.SessionID, snap.Header.Seq, snap.Header.Reason, snap.TileDegrees, snap.NeighborhoodRadius)
	rep := summarize(snap.TileDegrees, snap.World)
	printJSON(os.Stdout, rep)
	if rep.Audit != "ok" {
		os.Exit(1)
	}
}

func storeCmd(args []string) {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	backend := fs.String("backend", "file", "store backend: file|sqlite")
	path := fs.String("path", "./data/store.json.zst", "store path")
	tuningPath := fs.String("tuning", "./configs/tuning.yaml", "tuning.yaml for the tile size")
	_ = fs.Parse(args)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		tune = tuning.Defaults()
	}
	kv, err := store.Open(*backend, *path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer kv.Close()

	snap, err := readStore(kv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read store:", err)
		os.Exit(1)
	}
	rep := summarize(tune.TileDegrees, snap)
	printJSON(os.Stdout, rep)
	if rep.Audit != "ok" {
		os.Exit(1)
	}
}

func eventsCmd(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	files, err := persistlog.EventFiles(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	sum := newEventSummary()
	for _, f := range files {
		entries, err := persistlog.ReadEvents(f)
		sum.add(entries)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
	}
	sum.Files = len(files)
	printJSON(os.Stdout, sum)
}

func latestSnapshot(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestSeq uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || seq > bestSeq {
			bestSeq = seq
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
