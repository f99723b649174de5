package database

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store.  It backs local development and tests
// and follows the same semantics as MySQLStore.
type MemoryStore struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]*memDoc
}

type memDoc struct {
	seq    int64
	fields map[string]json.RawMessage
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]map[string]*memDoc{}}
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	id := newID()
	if err := m.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encodeBody(doc, id)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[collection]
	if coll == nil {
		coll = map[string]*memDoc{}
		m.collections[collection] = coll
	}
	if existing, ok := coll[id]; ok {
		existing.fields = fields
		return nil
	}
	m.seq++
	coll[id] = &memDoc{seq: m.seq, fields: fields}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	d, ok := m.collections[collection][id]
	var body []byte
	var err error
	if ok {
		body, err = json.Marshal(d.fields)
	}
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (m *MemoryStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if err := checkField(k); err != nil {
			return err
		}
		if k == "id" {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded[k] = b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	next := make(map[string]json.RawMessage, len(d.fields)+len(encoded))
	for k, v := range d.fields {
		next[k] = v
	}
	for k, v := range encoded {
		next[k] = v
	}
	d.fields = next
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

func (m *MemoryStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]*memDoc, 0)
	ids := map[*memDoc]string{}
	for id, d := range m.collections[collection] {
		if matches(d.fields, q.Filters) {
			matched = append(matched, d)
			ids[d] = id
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, _ := textValue(matched[i].fields[q.OrderBy])
			b, _ := textValue(matched[j].fields[q.OrderBy])
			if q.Desc {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]Document, 0, len(matched))
	var err error
	for _, d := range matched {
		var body []byte
		body, err = json.Marshal(d.fields)
		if err != nil {
			break
		}
		out = append(out, Document{ID: ids[d], Body: body})
	}
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matches(fields map[string]json.RawMessage, filters []Filter) bool {
	for _, f := range filters {
		v, ok := textValue(fields[f.Field])
		if !ok {
			return false
		}
		switch f.Op {
		case Eq:
			if v != f.Value {
				return false
			}
		case Gte:
			if v < f.Value {
				return false
			}
		case Lte:
			if v > f.Value {
				return false
			}
		}
	}
	return true
}
