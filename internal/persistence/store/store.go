// Package store is the durable key-value store behind a session. Values are
// always written whole; there is no merge or partial update.
package store

import "errors"

// Keys written by the session.
const (
	KeyMementos      = "mementoArray"
	KeyPlayerCoins   = "playerCoins"
	KeyPlayerHistory = "playerMovementArray"
)

var ErrClosed = errors.New("store closed")

// Open picks a backend by name: "memory", "file" (path is the document) or
// "sqlite" (path is the database).
func Open(backend, path string) (KV, error) {
	switch backend {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		s, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.New("unknown store backend: " + backend)
	}
}

// KV is implemented by every backend.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear() error
	Close() error
}
