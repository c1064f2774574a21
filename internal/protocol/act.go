package protocol

import (
	"fmt"
	"math"
)

// Actions carried by ACT.
const (
	ActMoveTo    = "MOVE_TO"
	ActStep      = "STEP"
	ActGeolocate = "GEOLOCATE"
	ActTracking  = "TRACKING"
	ActCollect   = "COLLECT"
	ActDeposit   = "DEPOSIT"
	ActReset     = "RESET"
	ActLocate    = "LOCATE"
)

// ACT (client -> server)
type ActMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	ID              string   `json:"id"`
	Action          string   `json:"action"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	DI              int      `json:"di,omitempty"`
	DJ              int      `json:"dj,omitempty"`
	Cell            string   `json:"cell,omitempty"`
	CoinID          string   `json:"coin_id,omitempty"`
	Tracking        *bool    `json:"tracking,omitempty"`
}

// Validate checks that the fields an action needs are present. It does not
// check that targets exist.
func (a ActMsg) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("missing id")
	}
	switch a.Action {
	case ActMoveTo, ActGeolocate:
		if a.Lat == nil || a.Lng == nil {
			return fmt.Errorf("%s requires lat and lng", a.Action)
		}
		if !finite(*a.Lat) || !finite(*a.Lng) {
			return fmt.Errorf("%s: non-finite coordinate", a.Action)
		}
	case ActStep:
		if a.DI == 0 && a.DJ == 0 {
			return fmt.Errorf("STEP requires di or dj")
		}
	case ActTracking:
		if a.Tracking == nil {
			return fmt.Errorf("TRACKING requires tracking")
		}
	case ActCollect, ActDeposit:
		if a.Cell == "" {
			return fmt.Errorf("%s requires cell", a.Action)
		}
	case ActLocate:
		if a.CoinID == "" {
			return fmt.Errorf("LOCATE requires coin_id")
		}
	case ActReset:
	default:
		return fmt.Errorf("unknown action %q", a.Action)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
