package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"geocoin.ai/internal/protocol"
)

// view is the client's copy of what the server has shown it.
type view struct {
	mu      sync.Mutex
	welcome protocol.WelcomeMsg
	player  protocol.Player
	caches  map[string]protocol.Cache
}

func newView() *view {
	return &view{caches: map[string]protocol.Cache{}}
}

// apply folds one server message into the view and returns a line worth
// printing, or "".
func (v *view) apply(msg []byte) (string, error) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	switch base.Type {
	case protocol.TypeWelcome:
		var m protocol.WelcomeMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return "", err
		}
		v.welcome = m
		v.player = m.Player
		return fmt.Sprintf("connected to session %s at %s (cell %s)", m.SessionID, fmtPoint(m.Player.Point), m.Player.Cell), nil
	case protocol.TypeShow, protocol.TypeUpdate:
		var m protocol.CacheMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return "", err
		}
		v.caches[m.Cache.Cell] = m.Cache
		return "", nil
	case protocol.TypeHide:
		var m protocol.HideMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return "", err
		}
		delete(v.caches, m.Cell)
		return "", nil
	case protocol.TypePlayer:
		var m protocol.PlayerMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return "", err
		}
		v.player = m.Player
		return "", nil
	case protocol.TypeResult:
		var m protocol.ResultMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return "", err
		}
		return v.resultLine(m), nil
	}
	return "", nil
}

func (v *view) resultLine(m protocol.ResultMsg) string {
	if !m.OK {
		return fmt.Sprintf("%s failed: %s (%s)", m.Ref, m.Message, m.Code)
	}
	if m.Point != nil {
		return fmt.Sprintf("%s ok: %s, %d coins", m.Ref, fmtPoint(*m.Point), len(v.player.Coins))
	}
	return fmt.Sprintf("%s ok: %d coins", m.Ref, len(v.player.Coins))
}

// look lists visible caches nearest first.
func (v *view) look(w io.Writer) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(w, "you are at %s (cell %s), tracking=%v\n", fmtPoint(v.player.Point), v.player.Cell, v.player.Tracking)
	if len(v.caches) == 0 {
		fmt.Fprintln(w, "no caches in sight")
		return
	}
	list := make([]protocol.Cache, 0, len(v.caches))
	for _, c := range v.caches {
		list = append(list, c)
	}
	pi, pj := cellIndex(v.player.Cell)
	sort.Slice(list, func(a, b int) bool {
		da, db := dist(list[a], pi, pj), dist(list[b], pi, pj)
		if da != db {
			return da < db
		}
		return list[a].Cell < list[b].Cell
	})
	for _, c := range list {
		fmt.Fprintf(w, "  cache %-10s %3d coins\n", c.Cell, len(c.Coins))
	}
}

func (v *view) inventory(w io.Writer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(w, "%d coins\n", len(v.player.Coins))
	if len(v.player.Coins) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(v.player.Coins, " "))
	}
}

func fmtPoint(p protocol.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func cellIndex(key string) (int, int) {
	var i, j int
	_, _ = fmt.Sscanf(key, "%d,%d", &i, &j)
	return i, j
}

func dist(c protocol.Cache, i, j int) int {
	return abs(c.I-i) + abs(c.J-j)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
