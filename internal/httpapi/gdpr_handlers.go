package httpapi

import (
	"net/http"
	"strings"

	"securevault.org/internal/gdpr"
)

type rectifyRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	bundle, err := a.gdpr.Export(r.Context(), principal.ID, requestOrigin(r))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="data-export.json"`)
	writeJSON(w, http.StatusOK, bundle)
}

// handleData serves the erasure and rectification rights on one route.
func (a *API) handleData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodDelete:
		a.eraseData(w, r)
	case http.MethodPatch:
		a.rectifyData(w, r)
	default:
		methodNotAllowed(w, r, http.MethodDelete, http.MethodPatch)
	}
}

func (a *API) eraseData(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	if err := a.gdpr.Erase(r.Context(), principal.ID, requestOrigin(r)); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "personal data erased"})
}

func (a *API) rectifyData(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	var req rectifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.gdpr.Rectify(r.Context(), principal.ID, gdpr.RectifyInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, requestOrigin(r))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (a *API) handleConsentsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	consents, err := a.gdpr.Consents(r.Context(), principal.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": consents})
}

func (a *API) handleConsentResource(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/v1/gdpr/consents/")
	if raw == "" || strings.Contains(raw, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	consentType, err := gdpr.ParseConsentType(strings.ToUpper(raw))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPost:
		c, err := a.gdpr.GrantConsent(r.Context(), principal.ID, consentType, requestOrigin(r))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	case http.MethodDelete:
		c, err := a.gdpr.RevokeConsent(r.Context(), principal.ID, consentType, requestOrigin(r))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodDelete)
	}
}
