// Package recent keeps the bounded history of recently viewed listings.
//
// The history is a single JSON array stored under StorageKey, least recent
// first and most recent last. It never holds more than Capacity entries and
// never holds two entries with the same id.
package recent

import (
	"encoding/json"
	"sync"

	"phocaforme/model"
	"phocaforme/storage"

	"github.com/sirupsen/logrus"
)

const (
	StorageKey = "recentCard"
	Capacity   = 5
)

// Cache is best effort: read problems look like an empty history and write
// problems are logged, never returned.
type Cache struct {
	mu    sync.Mutex
	store storage.Store
	log   logrus.FieldLogger
}

func New(store storage.Store) *Cache {
	return &Cache{
		store: store,
		log:   logrus.WithField("component", "recent"),
	}
}

// Load returns the history, least recent first. The result is never nil.
func (c *Cache) Load() []model.ViewedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *Cache) load() []model.ViewedItem {
	data, ok, err := c.store.Get(StorageKey)
	if err != nil {
		c.log.WithError(err).Warn("failed to read recently viewed history")
		return []model.ViewedItem{}
	}
	if !ok || len(data) == 0 {
		return []model.ViewedItem{}
	}

	var items []model.ViewedItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.log.WithError(err).Debug("discarding unreadable recently viewed history")
		return []model.ViewedItem{}
	}
	return normalize(items, Capacity)
}

// Record moves item to the most recent position, replacing any entry with
// the same id, and evicts from the least recent end beyond Capacity.
func (c *Cache) Record(item model.ViewedItem) {
	if item.ID == "" {
		c.log.Debug("ignoring viewed item without id")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.save(Push(c.load(), item, Capacity))
}

// Forget drops the entry with the given id, if any.
func (c *Cache) Forget(id model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.load()
	kept := Remove(items, id)
	if len(kept) == len(items) {
		return
	}
	c.save(kept)
}

// Clear removes the whole history.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(StorageKey); err != nil {
		c.log.WithError(err).Warn("failed to clear recently viewed history")
	}
}

func (c *Cache) save(items []model.ViewedItem) {
	data, err := json.Marshal(items)
	if err != nil {
		c.log.WithError(err).Warn("failed to encode recently viewed history")
		return
	}
	if err := c.store.Put(StorageKey, data); err != nil {
		c.log.WithError(err).WithField("entries", len(items)).Warn("failed to persist recently viewed history")
	}
}

// Push returns a new list with item appended as most recent. An existing
// entry with the same id is removed first; the oldest entries are evicted
// while the list is longer than capacity. items is not modified.
func Push(items []model.ViewedItem, item model.ViewedItem, capacity int) []model.ViewedItem {
	out := make([]model.ViewedItem, 0, len(items)+1)
	for _, it := range items {
		if it.ID != item.ID {
			out = append(out, it)
		}
	}
	out = append(out, item)
	if capacity > 0 && len(out) > capacity {
		out = out[len(out)-capacity:]
	}
	return out
}

// Remove returns a new list without the entry for id.
func Remove(items []model.ViewedItem, id model.ID) []model.ViewedItem {
	out := make([]model.ViewedItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// normalize repairs a history written by someone else: entries without id
// are dropped, a repeated id keeps its most recent occurrence, and the list
// is cut to capacity from the least recent end.
func normalize(items []model.ViewedItem, capacity int) []model.ViewedItem {
	out := make([]model.ViewedItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		out = Push(out, it, 0)
	}
	if len(out) > capacity {
		out = out[len(out)-capacity:]
	}
	return out
}
