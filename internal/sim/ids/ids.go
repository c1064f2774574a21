package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// CellKey is the stable string key of a cell, "<i>,<j>".
func CellKey(i, j int) string {
	return fmt.Sprintf("%d,%d", i, j)
}

func ParseCellKey(key string) (i, j int, ok bool) {
	parts := strings.Split(strings.TrimSpace(key), ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	i, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	j, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return i, j, true
}

// CoinID is "<i>:<j>:<seq>" where (i, j) is the originating cache's cell and
// seq the coin's index in that cache's initial generation.
func CoinID(i, j, seq int) string {
	return fmt.Sprintf("%d:%d:%d", i, j, seq)
}

func ParseCoinID(id string) (i, j, seq int, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	i, err1 := strconv.Atoi(parts[0])
	j, err2 := strconv.Atoi(parts[1])
	seq, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || seq < 0 {
		return 0, 0, 0, false
	}
	return i, j, seq, true
}
