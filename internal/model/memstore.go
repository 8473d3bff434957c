package model

import (
	"context"
	"sort"
	"sync"
)

// Object is the in-memory instance used by MemStore.
type Object struct {
	ID     int64
	Str    string
	Fields Values
}

func (o *Object) PK() int64     { return o.ID }
func (o *Object) Label() string { return o.Str }
func (o *Object) Get(field string) any {
	return o.Fields[field]
}

type memData struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]*Object
}

// MemStore is an in-memory Store. It backs unit tests and makes the API and
// CRUD layers usable without a database. Tenant views produced by ForTenant
// share the underlying data.
type MemStore struct {
	meta *Meta
	data *memData

	// LabelFunc derives the display label of a created or updated object.
	LabelFunc func(Values) string
	// TenantOf extracts the owning tenant of an instance; required for
	// ForTenant to have an effect.
	TenantOf func(Instance) string

	tenant string
}

func NewMemStore(meta *Meta) *MemStore {
	return &MemStore{
		meta: meta,
		data: &memData{rows: make(map[int64]*Object)},
	}
}

func (s *MemStore) Meta() *Meta { return s.meta }

// ForTenant returns a view of the store restricted to one tenant.
func (s *MemStore) ForTenant(tenant string) Store {
	view := *s
	view.tenant = tenant
	return &view
}

func (s *MemStore) visible(o *Object) bool {
	if s.tenant == "" || s.TenantOf == nil {
		return true
	}
	return s.TenantOf(o) == s.tenant
}

// ordered assumes the read lock is held.
func (s *MemStore) ordered() []*Object {
	out := make([]*Object, 0, len(s.data.rows))
	for _, o := range s.data.rows {
		if s.visible(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) Count(ctx context.Context) (int, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	return len(s.ordered()), nil
}

func (s *MemStore) List(ctx context.Context, offset, limit int) ([]Instance, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	all := s.ordered()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []Instance{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]Instance, 0, end-offset)
	for _, o := range all[offset:end] {
		out = append(out, o)
	}
	return out, nil
}

func (s *MemStore) ByPK(ctx context.Context, pk int64) (Instance, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	o, ok := s.data.rows[pk]
	if !ok || !s.visible(o) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *MemStore) ByPKs(ctx context.Context, pks []int64) ([]Instance, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]Instance, 0, len(pks))
	for _, pk := range pks {
		if o, ok := s.data.rows[pk]; ok && s.visible(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *MemStore) Create(ctx context.Context, values Values) (Instance, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	s.data.seq++
	o := &Object{ID: s.data.seq, Fields: Values{}}
	for k, v := range values {
		o.Fields[k] = v
	}
	if s.LabelFunc != nil {
		o.Str = s.LabelFunc(o.Fields)
	}
	s.data.rows[o.ID] = o
	return o, nil
}

func (s *MemStore) Update(ctx context.Context, pk int64, values Values) (Instance, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	o, ok := s.data.rows[pk]
	if !ok || !s.visible(o) {
		return nil, ErrNotFound
	}
	for k, v := range values {
		o.Fields[k] = v
	}
	if s.LabelFunc != nil {
		o.Str = s.LabelFunc(o.Fields)
	}
	return o, nil
}

func (s *MemStore) Delete(ctx context.Context, pk int64) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	o, ok := s.data.rows[pk]
	if !ok || !s.visible(o) {
		return ErrNotFound
	}
	delete(s.data.rows, pk)
	return nil
}
