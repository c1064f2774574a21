package world

import (
	"errors"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/memento"
)

type EventKind string

const (
	EventMoveTo    EventKind = "MOVE_TO"
	EventStep      EventKind = "STEP"
	EventGeolocate EventKind = "GEOLOCATE"
	EventTracking  EventKind = "TRACKING"
	EventCollect   EventKind = "COLLECT"
	EventDeposit   EventKind = "DEPOSIT"
	EventReset     EventKind = "RESET"
	EventRefresh   EventKind = "REFRESH"
	EventLocate    EventKind = "LOCATE"

	// Reset followed by Refresh inside one handler.
	EventResetRefresh EventKind = "RESET_REFRESH"

	// Read-only requests from other goroutines.
	EventState    EventKind = "STATE"
	EventSnapshot EventKind = "SNAPSHOT"
)

var (
	ErrUnknownCache = errors.New("unknown cache")
	ErrCacheHidden  = errors.New("cache not visible")
	ErrBadCoinID    = memento.ErrBadCoinID
	ErrUnknownEvent = errors.New("unknown event")
	ErrStopped      = errors.New("session stopped")
	ErrSinkBusy     = errors.New("snapshot sink backpressure")
)

// Event is one input to the session. Only the fields its Kind uses are read.
type Event struct {
	Kind     EventKind
	Point    grid.Point
	DI, DJ   int
	Cell     string
	CoinID   string
	Tracking bool

	// OnState runs on the session goroutine right after an EventState view is
	// taken, before any later event is applied.
	OnState func(StateView)

	// Resp, if set, receives the Result. It should be buffered.
	Resp chan Result
}

type Result struct {
	Err error
	// Point is set by LOCATE and by movement events.
	Point grid.Point
	State *StateView
}

func (r Result) OK() bool { return r.Err == nil }

// StateView is a copy of the session safe to hand to other goroutines.
type StateView struct {
	SessionID string      `json:"session_id"`
	Seq       uint64      `json:"seq"`
	Player    PlayerView  `json:"player"`
	Visible   []CacheView `json:"visible"`
	Known     int         `json:"known_caches"`
	Radius    int         `json:"radius"`
	Tile      float64     `json:"tile_degrees"`
}

type CacheView struct {
	Cell   string      `json:"cell"`
	I      int         `json:"i"`
	J      int         `json:"j"`
	Bounds grid.Bounds `json:"bounds"`
	Coins  []string    `json:"coins"`
}
