// Package ledger is the only place coins change hands.
package ledger

import (
	"errors"
	"fmt"

	"geocoin.ai/internal/sim/model"
)

var (
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrNilParty          = errors.New("nil cache or player")
)

// Transfer moves |amount| coins between cache and player. amount > 0 collects
// from the cache, amount < 0 deposits into it, 0 is a no-op. Coins move one at
// a time from the source tail to the destination tail, so Transfer(n) is the
// same as n calls of Transfer(±1). When the source holds fewer than |amount|
// coins nothing changes and ErrInsufficientCoins is returned.
func Transfer(amount int, cache *model.Cache, player *model.Player) error {
	if cache == nil || player == nil {
		return ErrNilParty
	}
	switch {
	case amount > 0:
		if len(cache.Coins) < amount {
			return fmt.Errorf("collect %d from %s (has %d): %w", amount, cache.ID(), len(cache.Coins), ErrInsufficientCoins)
		}
		cache.Coins, player.Coins = move(amount, cache.Coins, player.Coins, model.PlayerHolder())
	case amount < 0:
		n := -amount
		if len(player.Coins) < n {
			return fmt.Errorf("deposit %d into %s (player has %d): %w", n, cache.ID(), len(player.Coins), ErrInsufficientCoins)
		}
		player.Coins, cache.Coins = move(n, player.Coins, cache.Coins, cache.Holder())
	}
	return nil
}

// Collect moves the top coin of cache to player.
func Collect(cache *model.Cache, player *model.Player) error { return Transfer(1, cache, player) }

// Deposit moves the top coin of player into cache.
func Deposit(cache *model.Cache, player *model.Player) error { return Transfer(-1, cache, player) }

func move(n int, src, dst []*model.Coin, to model.Holder) ([]*model.Coin, []*model.Coin) {
	for k := 0; k < n; k++ {
		last := len(src) - 1
		coin := src[last]
		src[last] = nil
		src = src[:last]
		coin.Holder = to
		dst = append(dst, coin)
	}
	return src, dst
}

// Audit checks that every coin is referenced by exactly one holder list and
// that its Holder tag names that list.
func Audit(caches []*model.Cache, player *model.Player) error {
	seen := make(map[string]string)
	claim := func(coin *model.Coin, owner string, want model.Holder) error {
		if coin == nil {
			return fmt.Errorf("nil coin held by %s", owner)
		}
		if prev, dup := seen[coin.ID]; dup {
			return fmt.Errorf("coin %s held by both %s and %s", coin.ID, prev, owner)
		}
		seen[coin.ID] = owner
		if coin.Holder != want {
			return fmt.Errorf("coin %s in %s tagged %s/%s", coin.ID, owner, coin.Holder.Kind, coin.Holder.CacheID)
		}
		return nil
	}
	for _, c := range caches {
		if c == nil {
			continue
		}
		h := c.Holder()
		for _, coin := range c.Coins {
			if err := claim(coin, "cache "+c.ID(), h); err != nil {
				return err
			}
		}
	}
	if player != nil {
		for _, coin := range player.Coins {
			if err := claim(coin, "player", model.PlayerHolder()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Total counts coins across all holders.
func Total(caches []*model.Cache, player *model.Player) int {
	n := 0
	for _, c := range caches {
		if c != nil {
			n += len(c.Coins)
		}
	}
	if player != nil {
		n += len(player.Coins)
	}
	return n
}
