package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"securevault.org/internal/obs"
)

const defaultOTPTTL = 2 * time.Minute

// Service implements the two-step login flow: password check issuing a
// one-time code, then OTP verification minting a session token.
type Service struct {
	store  Store
	signer *TokenSigner
	now    func() time.Time

	otpTTL  time.Duration
	echoOTP bool
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithOTPTTL overrides the one-time code validity window.
func WithOTPTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.otpTTL = ttl
		}
	}
}

// WithOTPEcho controls whether login responses carry the generated code.
// Development profiles only; production delivers codes out of band.
func WithOTPEcho(echo bool) ServiceOption {
	return func(s *Service) { s.echoOTP = echo }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the auth service.
func NewService(store Store, signer *TokenSigner, opts ...ServiceOption) *Service {
	svc := &Service{
		store:   store,
		signer:  signer,
		now:     time.Now,
		otpTTL:  defaultOTPTTL,
		echoOTP: true,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Login verifies credentials and issues a fresh one-time code. Stale codes
// for the user are purged first, so after a successful login exactly one
// live code exists.
func (s *Service) Login(ctx context.Context, email, password string) (OTPChallenge, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		obs.CountLogin("denied")
		return OTPChallenge{}, ErrUnauthorized
	}
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		obs.CountLogin("denied")
		if errors.Is(err, ErrNotFound) {
			return OTPChallenge{}, ErrUnauthorized
		}
		return OTPChallenge{}, err
	}
	if !user.Active {
		obs.CountLogin("denied")
		return OTPChallenge{}, ErrUnauthorized
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		obs.CountLogin("denied")
		return OTPChallenge{}, ErrUnauthorized
	}

	now := s.now().UTC()
	if err := s.store.OTP().PurgeStale(ctx, user.ID, now); err != nil {
		return OTPChallenge{}, err
	}
	code, err := GenerateOTPCode()
	if err != nil {
		return OTPChallenge{}, err
	}
	rec := &OTPCode{
		UserID:    user.ID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.otpTTL),
	}
	if err := s.store.OTP().Create(ctx, rec); err != nil {
		return OTPChallenge{}, err
	}

	obs.CountLogin("ok")
	challenge := OTPChallenge{Message: "OTP code generated"}
	if s.echoOTP {
		challenge.Code = code
	}
	return challenge, nil
}

// VerifyOTP consumes a one-time code and mints a session token. A code that
// verified once never verifies again.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		obs.CountOTPVerification("denied")
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if !user.Active {
		obs.CountOTPVerification("denied")
		return Session{}, ErrUnauthorized
	}

	if err := s.store.OTP().Consume(ctx, user.ID, code, s.now().UTC()); err != nil {
		obs.CountOTPVerification("denied")
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidOTP
		}
		return Session{}, err
	}

	principal := Principal{ID: user.ID, Email: user.Email, Role: user.Role}
	token, err := s.signer.Sign(principal)
	if err != nil {
		return Session{}, err
	}

	obs.CountOTPVerification("ok")
	return Session{
		AccessToken: token,
		User: UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
	}, nil
}

// Authenticate validates a bearer token and returns the principal embedded
// in its claims. No store round trip: the token is self-contained.
func (s *Service) Authenticate(token string) (Principal, error) {
	return s.signer.Verify(token)
}

// Profile returns the caller's own account, password hash stripped.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := s.store.Users().Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// RequireRole returns ErrUnauthorized unless the principal holds one of the
// given roles.
func RequireRole(p Principal, roles ...Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return ErrUnauthorized
}
