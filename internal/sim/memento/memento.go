// Package memento converts caches to and from their durable string form.
//
// A memento is {"cell":{"i":I,"j":J},"coins":[{"id":"..."},...]}. The holder of
// each coin is not written; it is always the cache being restored.
package memento

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"geocoin.ai/internal/sim/grid"
	"geocoin.ai/internal/sim/model"
)

var (
	ErrDuplicateCoin = errors.New("duplicate coin id")
	ErrSchema        = errors.New("memento schema violation")
)

//go:embed memento.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("memento.schema.json", schemaJSON)

type cellDoc struct {
	I int `json:"i"`
	J int `json:"j"`
}

// CoinRecord is the serialized form of one coin.
type CoinRecord struct {
	ID string `json:"id"`
}

type doc struct {
	Cell  cellDoc      `json:"cell"`
	Coins []CoinRecord `json:"coins"`
}

func ToMemento(c *model.Cache) (string, error) {
	if c == nil || c.Cell == nil {
		return "", errors.New("nil cache")
	}
	d := doc{
		Cell:  cellDoc{I: c.Cell.I, J: c.Cell.J},
		Coins: Records(c.Coins),
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromMemento rebuilds a cache on the canonical cell of g. The returned coins
// are new values held by the new cache.
func FromMemento(g *grid.Grid, s string) (*model.Cache, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode memento: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	var d doc
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, fmt.Errorf("decode memento: %w", err)
	}

	cache := &model.Cache{Cell: g.Canonical(d.Cell.I, d.Cell.J)}
	holder := cache.Holder()
	cache.Coins = make([]*model.Coin, 0, len(d.Coins))
	seen := make(map[string]bool, len(d.Coins))
	for _, rec := range d.Coins {
		if seen[rec.ID] {
			return nil, fmt.Errorf("cache %s coin %s: %w", cache.ID(), rec.ID, ErrDuplicateCoin)
		}
		seen[rec.ID] = true
		cache.Coins = append(cache.Coins, &model.Coin{ID: rec.ID, Holder: holder})
	}
	return cache, nil
}

// Records lists coins in holder order.
func Records(coins []*model.Coin) []CoinRecord {
	out := make([]CoinRecord, len(coins))
	for i, c := range coins {
		out[i] = CoinRecord{ID: c.ID}
	}
	return out
}
