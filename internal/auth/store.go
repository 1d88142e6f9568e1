package auth

import (
	"context"
	"time"
)

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	Users() UserStore
	OTP() OTPStore
}

// UserStore manages vault accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// UpdateName rectifies the mutable profile fields. Nil pointers leave the
	// corresponding column untouched.
	UpdateName(ctx context.Context, id string, firstName, lastName *string) (*User, error)
	Delete(ctx context.Context, id string) error
}

// OTPStore manages one-time codes.
type OTPStore interface {
	Create(ctx context.Context, code *OTPCode) error
	// PurgeStale removes the user's expired or already used codes.
	PurgeStale(ctx context.Context, userID string, now time.Time) error
	// Consume flips used=false to true on the newest row matching
	// {userID, code, unexpired}. The match and the flip run as one
	// conditional update so concurrent verifications of the same code have
	// exactly one winner. Returns ErrNotFound when no row matched.
	Consume(ctx context.Context, userID, code string, now time.Time) error
}
