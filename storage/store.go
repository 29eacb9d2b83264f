// Package storage is the key-value blob boundary behind the client's local
// state. Values are opaque byte slices replaced wholesale on every Put.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Store is a durable key-value blob store.
//
// Get reports a missing key with ok=false and a nil error. Put replaces the
// value in a single step: a failed Put leaves the previous value readable.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(sqlitePath(dir))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
