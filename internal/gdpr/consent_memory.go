package gdpr

import (
	"context"
	"sort"
	"sync"
)

// InMemoryConsents is a map-backed ConsentStore used in tests.
type InMemoryConsents struct {
	mu       sync.Mutex
	consents map[string]*Consent
}

func NewInMemoryConsents() *InMemoryConsents {
	return &InMemoryConsents{consents: make(map[string]*Consent)}
}

func (s *InMemoryConsents) Upsert(_ context.Context, c *Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.consents {
		if existing.UserID == c.UserID && existing.Type == c.Type {
			existing.Granted = c.Granted
			existing.GrantedAt = c.GrantedAt
			existing.RevokedAt = c.RevokedAt
			existing.IP = c.IP
			existing.UserAgent = c.UserAgent
			existing.UpdatedAt = c.UpdatedAt
			c.ID = existing.ID
			return nil
		}
	}
	cp := *c
	s.consents[c.ID] = &cp
	return nil
}

func (s *InMemoryConsents) ListForUser(_ context.Context, userID string) ([]*Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Consent
	for _, c := range s.consents {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (s *InMemoryConsents) RemoveForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.consents {
		if c.UserID == userID {
			delete(s.consents, id)
		}
	}
	return nil
}
