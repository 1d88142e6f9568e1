package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory is a slice-backed Store used in tests.
type InMemory struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	if e.Details != nil {
		cp.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			cp.Details[k] = v
		}
	}
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *InMemory) List(_ context.Context, q Query) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	var out []*Entry
	for _, e := range s.entries {
		if q.UserID != "" && (e.UserID == nil || *e.UserID != q.UserID) {
			continue
		}
		if q.Action != "" && e.Action != q.Action {
			continue
		}
		if q.EntityType != "" && e.EntityType != q.EntityType {
			continue
		}
		if q.EntityID != "" && e.EntityID != q.EntityID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) Anonymize(_ context.Context, userID string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.entries {
		if e.UserID != nil && *e.UserID == userID {
			e.UserID = nil
			e.Details = anonymizationMarker(userID, now)
			n++
		}
	}
	return n, nil
}
