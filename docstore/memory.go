package docstore

import (
	"context"
	"sort"
	"sync"
)

type memoryBackend struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

// NewMemoryStore keeps documents in process memory. It understands the same
// filter subset the services send to MongoDB.
func NewMemoryStore() Store {
	return newStore(&memoryBackend{collections: make(map[string][]Document)})
}

func (m *memoryBackend) insertOne(_ context.Context, collection string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], clone(doc))
	return nil
}

func (m *memoryBackend) matching(collection string, filter Filter) []Document {
	var out []Document
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func (m *memoryBackend) find(_ context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.matching(collection, filter)
	if opts.SortField != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i][opts.SortField], docs[j][opts.SortField])
			if opts.SortDesc {
				return c > 0
			}
			return c < 0
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(docs)) {
			docs = nil
		} else {
			docs = docs[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(docs)) > opts.Limit {
		docs = docs[:opts.Limit]
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, clone(d))
	}
	return out, nil
}

func (m *memoryBackend) findOne(_ context.Context, collection string, filter Filter) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			return clone(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryBackend) updateOne(_ context.Context, collection string, filter Filter, set Document) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			for k, v := range set {
				doc[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryBackend) deleteOne(_ context.Context, collection string, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	for i, doc := range docs {
		if matches(doc, filter) {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryBackend) count(_ context.Context, collection string, filter Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.matching(collection, filter))), nil
}

func (m *memoryBackend) sum(_ context.Context, collection string, filter Filter, field string) (float64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		total   float64
		matched int64
	)
	for _, doc := range m.matching(collection, filter) {
		matched++
		if f, ok := toFloat(doc[field]); ok {
			total += f
		}
	}
	return total, matched, nil
}

func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
