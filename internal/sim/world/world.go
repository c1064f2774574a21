package world

import (
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"geocoin.ai/internal/persistence/snapshot"
	"geocoin.ai/internal/sim/caches"
	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/luck"
	"geocoin.ai/internal/sim/model"
)

// Store is the durable key-value store the session writes through.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear() error
}

// Renderer receives display updates. Calls happen on the session goroutine
// and must not block.
type Renderer interface {
	Show(c *model.Cache)
	Hide(c *model.Cache)
	Update(c *model.Cache)
	PlayerUpdated(p PlayerView)
}

type EventLogger interface {
	WriteEvent(entry EventEntry) error
}

type EventEntry struct {
	Seq    uint64      `json:"seq"`
	TimeMS int64       `json:"t_ms"`
	Kind   string      `json:"kind"`
	Cell   string      `json:"cell,omitempty"`
	CoinID string      `json:"coin_id,omitempty"`
	Amount int         `json:"amount,omitempty"`
	Point  *grid.Point `json:"point,omitempty"`
	OK     bool        `json:"ok"`
	Error  string      `json:"error,omitempty"`

	KnownCaches   int `json:"known_caches"`
	VisibleCaches int `json:"visible_caches"`
	PlayerCoins   int `json:"player_coins"`
	Spawned       int `json:"spawned,omitempty"`
}

type PlayerView struct {
	Point    grid.Point   `json:"point"`
	Cell     string       `json:"cell"`
	Coins    []string     `json:"coins"`
	Trail    []grid.Point `json:"trail"`
	Tracking bool         `json:"tracking"`
}

// WorldState is everything a session owns. Only the session goroutine touches
// it.
type WorldState struct {
	Caches   *caches.Set
	Player   *model.Player
	Trail    []grid.Point
	Tracking bool
}

type Deps struct {
	Store    Store
	Renderer Renderer
	Events   []EventLogger
	Logger   *log.Logger
	Now      func() time.Time
}

// Session is a single-player world. All state is accessed only from the
// goroutine running Run (or the caller of Apply in tests).
type Session struct {
	cfg Config

	grid  *grid.Grid
	gen   *luck.Generator
	state WorldState

	store    Store
	renderer Renderer
	events   []EventLogger
	logger   *log.Logger
	now      func() time.Time

	inbox    chan Event
	stop     chan struct{}
	stopOnce sync.Once

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1
	sinceSnap    int

	seq      atomic.Uint64
	rejected atomic.Uint64
	spawned  atomic.Uint64
	resets   atomic.Uint64
	skipped  atomic.Uint64
	metrics  atomic.Value
}

func New(cfg Config, deps Deps) *Session {
	cfg = cfg.withDefaults()
	g := grid.New(cfg.TileDegrees)
	gen := luck.New(luck.Config{
		SpawnProbability: cfg.SpawnProbability,
		MaxInitialCoins:  cfg.MaxInitialCoins,
		Hash:             cfg.Hash,
	})
	s := &Session{
		cfg:  cfg,
		grid: g,
		gen:  gen,
		state: WorldState{
			Caches: caches.NewSet(gen),
			Player: &model.Player{Coords: cfg.Start, Cell: g.CellAt(cfg.Start)},
		},
		store:    deps.Store,
		renderer: deps.Renderer,
		events:   deps.Events,
		logger:   deps.Logger,
		now:      deps.Now,
		inbox:    make(chan Event, 64),
		stop:     make(chan struct{}),
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.publishMetrics()
	return s
}

func (s *Session) Config() Config    { return s.cfg }
func (s *Session) Grid() *grid.Grid  { return s.grid }
func (s *Session) State() WorldState { return s.state }

func (s *Session) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { s.snapshotSink = ch }

func (s *Session) playerView() PlayerView {
	p := s.state.Player
	return PlayerView{
		Point:    p.Coords,
		Cell:     p.Cell.Key(),
		Coins:    p.CoinIDs(),
		Trail:    s.trailCopy(),
		Tracking: s.state.Tracking,
	}
}

type nopRenderer struct{}

func (nopRenderer) Show(*model.Cache)        {}
func (nopRenderer) Hide(*model.Cache)        {}
func (nopRenderer) Update(*model.Cache)      {}
func (nopRenderer) PlayerUpdated(PlayerView) {}
