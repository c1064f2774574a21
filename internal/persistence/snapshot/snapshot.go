package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/memento"
)

const Version = 1

type Header struct {
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"` // events processed
	CreatedAt int64  `json:"created_at_unix_ms"`
	Reason    string `json:"reason,omitempty"` // periodic, admin or reset
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	TileDegrees        float64 `json:"tile_degrees"`
	NeighborhoodRadius int     `json:"neighborhood_radius"`
	SpawnProbability   float64 `json:"spawn_probability"`
	MaxInitialCoins    int     `json:"max_initial_coins"`

	Player   grid.Point `json:"player"`
	Tracking bool       `json:"tracking"`

	World memento.Snapshot `json:"world"`
}

// Totals counts caches and coins in the snapshot without decoding mementos
// into a live grid.
type Totals struct {
	Caches      int
	CacheCoins  int
	PlayerCoins int
	TrailLen    int
	BadMementos int
}

func (s SnapshotV1) Totals() Totals {
	t := Totals{
		PlayerCoins: len(s.World.PlayerCoins),
		TrailLen:    len(s.World.PlayerTrail),
	}
	dec, errs := memento.DecodeWorld(grid.New(s.TileDegrees), memento.Snapshot{Caches: s.World.Caches})
	t.BadMementos = len(errs)
	t.Caches = len(dec.Caches)
	for _, c := range dec.Caches {
		t.CacheCoins += len(c.Coins)
	}
	return t
}

// WriteSnapshot writes a JSON header line followed by the gob-encoded snapshot,
// zstd-compressed. The file is written next to path and renamed into place.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, snap); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(f *os.File, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the leading header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()
	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// FileName is the on-disk name for a snapshot taken at seq.
func FileName(seq uint64) string {
	return fmt.Sprintf("%012d.snap.zst", seq)
}
