package httpapi

import (
	"net/http"
	"strings"

	"securevault.org/internal/audit"
	"securevault.org/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"otpCode"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	challenge, err := a.auth.Login(r.Context(), email, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionLoginOTPIssued,
		EntityType: audit.EntityUser,
		Details: map[string]any{
			"email":  strings.ToLower(email),
			"client": clientSummary(r.UserAgent()),
		},
		Origin: requestOrigin(r),
	})
	writeJSON(w, http.StatusOK, challenge)
}

func (a *API) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req verifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, r, http.StatusBadRequest, "email and otpCode are required")
		return
	}

	session, err := a.auth.VerifyOTP(r.Context(), req.Email, strings.TrimSpace(req.Code))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	userID := session.User.ID
	a.auditor.Record(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionLoginVerified,
		EntityType: audit.EntityUser,
		EntityID:   userID,
		Details: map[string]any{
			"client": clientSummary(r.UserAgent()),
		},
		Origin: requestOrigin(r),
	})
	writeJSON(w, http.StatusOK, session)
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}

	user, err := a.auth.Profile(r.Context(), principal.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auth.UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	})
}

// handleAdminPing exists so deployments can probe role enforcement end to
// end.
func (a *API) handleAdminPing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireRole(w, r, auth.RoleAdmin)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "admin access confirmed",
		"user":    principal.Email,
	})
}
