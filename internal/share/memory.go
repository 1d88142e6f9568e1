package share

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory is a map-backed Store used in tests.
type InMemory struct {
	mu     sync.Mutex
	shares map[string]*Share
}

func NewInMemory() *InMemory {
	return &InMemory{shares: make(map[string]*Share)}
}

func (s *InMemory) Upsert(_ context.Context, sh *Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shares {
		if existing.DocumentID == sh.DocumentID && existing.GranteeID == sh.GranteeID {
			existing.Permission = sh.Permission
			existing.ExpiresAt = sh.ExpiresAt
			existing.UpdatedAt = sh.UpdatedAt
			sh.ID = existing.ID
			sh.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	cp := *sh
	s.shares[sh.ID] = &cp
	return nil
}

func (s *InMemory) Find(_ context.Context, id string) (*Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shares[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (s *InMemory) Exists(_ context.Context, documentID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shares {
		if sh.DocumentID == documentID && sh.GranteeID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) ListForDocument(_ context.Context, documentID string) ([]*Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Share
	for _, sh := range s.shares {
		if sh.DocumentID == documentID {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) ListActiveForGrantee(_ context.Context, granteeID string, now time.Time) ([]*Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Share
	for _, sh := range s.shares {
		// Same bound as the SQL filter: expires_at is null or expires_at > now.
		if sh.GranteeID == granteeID && (sh.ExpiresAt == nil || sh.ExpiresAt.After(now)) {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shares[id]; !ok {
		return ErrNotFound
	}
	delete(s.shares, id)
	return nil
}

func (s *InMemory) RemoveForDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sh := range s.shares {
		if sh.DocumentID == documentID {
			delete(s.shares, id)
		}
	}
	return nil
}

func (s *InMemory) RemoveForGrantee(_ context.Context, granteeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sh := range s.shares {
		if sh.GranteeID == granteeID {
			delete(s.shares, id)
		}
	}
	return nil
}

func sortNewestFirst(shares []*Share) {
	sort.Slice(shares, func(i, j int) bool { return shares[i].CreatedAt.After(shares[j].CreatedAt) })
}
