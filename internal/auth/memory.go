package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"securevault.org/internal/ids"
)

var _ Store = (*InMemory)(nil)

// InMemory implements Store with a mutex-guarded map. Primarily for tests and
// local runs without PostgreSQL.
type InMemory struct {
	mu    sync.Mutex
	users map[string]*User
	codes map[string]*OTPCode
}

func NewInMemory() *InMemory {
	return &InMemory{
		users: make(map[string]*User),
		codes: make(map[string]*OTPCode),
	}
}

func (s *InMemory) Users() UserStore { return (*memUserStore)(s) }
func (s *InMemory) OTP() OTPStore    { return (*memOTPStore)(s) }

type memUserStore InMemory

func (s *memUserStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memUserStore) Find(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUserStore) UpdateName(ctx context.Context, id string, firstName, lastName *string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if firstName != nil {
		u.FirstName = *firstName
	}
	if lastName != nil {
		u.LastName = *lastName
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (s *memUserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type memOTPStore InMemory

func (s *memOTPStore) Create(ctx context.Context, code *OTPCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code.ID == "" {
		code.ID = ids.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	cp := *code
	s.codes[code.ID] = &cp
	return nil
}

func (s *memOTPStore) PurgeStale(ctx context.Context, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.codes {
		if c.UserID == userID && (c.ExpiresAt.Before(now) || c.Used) {
			delete(s.codes, id)
		}
	}
	return nil
}

func (s *memOTPStore) Consume(ctx context.Context, userID, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var candidates []*OTPCode
	for _, c := range s.codes {
		if c.UserID == userID && c.Code == code && !c.Used && !c.ExpiresAt.Before(now) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	candidates[0].Used = true
	return nil
}
