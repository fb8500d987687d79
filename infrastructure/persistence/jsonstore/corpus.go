package jsonstore

import (
	"context"
	"sync"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
	pkgerrors "recall-backend/pkg/errors"
)

// CorpusReader adapts a JSON item dump to the corpus accessor port.
// The raw item store is owned by an external backend; this adapter
// only reads. The file is loaded lazily on first use and cached for
// the process lifetime.
type CorpusReader struct {
	path string

	mu     sync.RWMutex
	items  []*entities.Item
	byID   map[string]*entities.Item
	loaded bool
}

// NewCorpusReader creates a corpus reader over the given items file
func NewCorpusReader(path string) *CorpusReader {
	return &CorpusReader{path: path}
}

// ListItems returns all items matching the filter
func (c *CorpusReader) ListItems(ctx context.Context, filter *ports.ItemFilter) ([]*entities.Item, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if filter == nil {
		return append([]*entities.Item{}, c.items...), nil
	}

	var matched []*entities.Item
	for _, item := range c.items {
		if filter.Project != "" && item.Project != filter.Project {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

// GetItem returns a single item or a NotFound error
func (c *CorpusReader) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.byID[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("item " + id)
	}
	return item, nil
}

func (c *CorpusReader) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	var items []*entities.Item
	if err := readCollection(c.path, &items); err != nil {
		return pkgerrors.NewPersistenceError("read corpus", err)
	}

	c.items = items
	c.byID = make(map[string]*entities.Item, len(items))
	for _, item := range items {
		c.byID[item.ID] = item
	}
	c.loaded = true
	return nil
}
