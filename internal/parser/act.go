package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"geocoin.ai/internal/protocol"
	"geocoin.ai/internal/sim/ids"
)

// ErrLocal marks commands the client answers itself (look, inventory, help,
// quit).
var ErrLocal = errors.New("local command")

// ToAct builds the ACT message for a parsed command.
func ToAct(cmd Command, id string) (protocol.ActMsg, error) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ID:              id,
	}
	switch cmd.Verb {
	case "north", "south", "east", "west":
		n := 1
		if len(cmd.Args) == 1 {
			v, err := strconv.Atoi(cmd.Args[0])
			if err != nil || v <= 0 {
				return act, fmt.Errorf("%w: tile count %q", ErrArgs, cmd.Args[0])
			}
			n = v
		}
		act.Action = protocol.ActStep
		switch cmd.Verb {
		case "north":
			act.DI = n
		case "south":
			act.DI = -n
		case "east":
			act.DJ = n
		case "west":
			act.DJ = -n
		}
	case "move", "geolocate":
		lat, err1 := strconv.ParseFloat(strings.TrimSuffix(cmd.Args[0], ","), 64)
		lng, err2 := strconv.ParseFloat(cmd.Args[1], 64)
		if err1 != nil || err2 != nil {
			return act, fmt.Errorf("%w: coordinates %v", ErrArgs, cmd.Args)
		}
		act.Action = protocol.ActMoveTo
		if cmd.Verb == "geolocate" {
			act.Action = protocol.ActGeolocate
		}
		act.Lat, act.Lng = &lat, &lng
	case "track":
		on, err := parseSwitch(cmd.Args[0])
		if err != nil {
			return act, err
		}
		act.Action = protocol.ActTracking
		act.Tracking = &on
	case "collect", "deposit":
		cell, err := parseCell(cmd.Args)
		if err != nil {
			return act, err
		}
		act.Action = protocol.ActCollect
		if cmd.Verb == "deposit" {
			act.Action = protocol.ActDeposit
		}
		act.Cell = cell
	case "locate":
		if _, _, _, ok := ids.ParseCoinID(cmd.Args[0]); !ok {
			return act, fmt.Errorf("%w: coin id %q", ErrArgs, cmd.Args[0])
		}
		act.Action = protocol.ActLocate
		act.CoinID = cmd.Args[0]
	case "reset":
		act.Action = protocol.ActReset
	default:
		return act, ErrLocal
	}
	return act, nil
}

// parseCell accepts "i,j" or "i j".
func parseCell(args []string) (string, error) {
	key := strings.Join(args, ",")
	i, j, ok := ids.ParseCellKey(key)
	if !ok {
		return "", fmt.Errorf("%w: cell %q", ErrArgs, strings.Join(args, " "))
	}
	return ids.CellKey(i, j), nil
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", ErrArgs, s)
}
