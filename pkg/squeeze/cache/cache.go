// Package cache remembers which PDFs have already been optimized so
// repeat runs and watch mode skip them. An entry matches only while the
// file's size and mtime are unchanged; any external edit invalidates
// it.
package cache

import (
	"errors"
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/logging"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// Cache provides high-level skip tracking over the badger store.
type Cache struct {
	store  *Store
	logger *logging.Logger
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}

	return &Cache{
		store:  store,
		logger: logging.Get("cache"),
	}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

// IsFresh reports whether target was optimized since it last changed.
// A fresh target can be skipped without invoking Ghostscript.
func (c *Cache) IsFresh(target types.Target) bool {
	entry, err := c.store.Get(target.Path)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		c.logger.Warn("cache lookup failed", "path", target.Path, "error", err)
		return false
	}

	return entry.Size == target.Size && entry.Mtime == target.ModTime.UnixNano()
}

// Record marks target as optimized at its current size and mtime.
// Called after a successful run, including no-gain outcomes: a file
// Ghostscript could not shrink will not shrink next time either.
func (c *Cache) Record(target types.Target) error {
	entry := &Entry{
		Size:        target.Size,
		Mtime:       target.ModTime.UnixNano(),
		OptimizedAt: time.Now().Unix(),
	}
	return c.store.Put(target.Path, entry)
}

// Invalidate drops the entry for a path.
func (c *Cache) Invalidate(path string) error {
	return c.store.Delete(path)
}

// Clear removes all entries.
func (c *Cache) Clear() error {
	return c.store.Clear()
}

// Count returns the number of tracked files.
func (c *Cache) Count() (int, error) {
	return c.store.Count()
}
