package document

import (
	"context"
	"sort"
	"sync"
)

// InMemory is a map-backed Store used in tests.
type InMemory struct {
	mu   sync.Mutex
	docs map[string]*Document
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[string]*Document)}
}

func (s *InMemory) Create(_ context.Context, d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	if d.Metadata != nil {
		cp.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			cp.Metadata[k] = v
		}
	}
	s.docs[d.ID] = &cp
	return nil
}

func (s *InMemory) Find(_ context.Context, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerID string) ([]*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Document
	for _, d := range s.docs {
		if d.OwnerID == ownerID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *InMemory) DeleteByOwner(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.docs {
		if d.OwnerID == ownerID {
			delete(s.docs, id)
		}
	}
	return nil
}
