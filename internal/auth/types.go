package auth

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleBankOfficer Role = "BANK_OFFICER"
	RoleUser        Role = "USER"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBankOfficer, RoleUser:
		return true
	}
	return false
}

// User is a vault account. PasswordHash is a bcrypt digest and never leaves
// this package.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the fields safe to expose to other users.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// PublicProfile is the cross-user visible slice of an account.
type PublicProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// OTPCode is a single-use second-factor code. Used is monotonic: once true it
// never flips back, which is what makes replay impossible.
type OTPCode struct {
	ID        string
	UserID    string
	Code      string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Principal is the verified identity threaded through request handling.
type Principal struct {
	ID    string
	Email string
	Role  Role
}

// OTPChallenge is the result of a successful password check. Code is empty
// unless the service is configured to echo codes (development profile).
type OTPChallenge struct {
	Message string `json:"message"`
	Code    string `json:"otpCode,omitempty"`
}

// Session is the result of a successful OTP verification.
type Session struct {
	AccessToken string      `json:"accessToken"`
	User        UserSummary `json:"user"`
}

// UserSummary mirrors the user fields returned alongside a fresh token.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role"`
}
