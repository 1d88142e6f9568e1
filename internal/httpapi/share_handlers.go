package httpapi

import (
	"net/http"
	"strings"
	"time"

	"securevault.org/internal/audit"
	"securevault.org/internal/share"
)

type grantShareRequest struct {
	SharedWithID string `json:"sharedWithId"`
	Permission   string `json:"permission"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
}

type updatePermissionRequest struct {
	Permission string `json:"permission"`
}

func (a *API) grantShare(w http.ResponseWriter, r *http.Request, documentID string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}

	var req grantShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.SharedWithID) == "" {
		writeError(w, r, http.StatusBadRequest, "sharedWithId is required")
		return
	}
	permission, err := share.ParsePermission(req.Permission)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	var expiresAt *time.Time
	if strings.TrimSpace(req.ExpiresAt) != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "expiresAt must be RFC 3339")
			return
		}
		t = t.UTC()
		expiresAt = &t
	}

	view, err := a.shares.Grant(r.Context(), principal.ID, documentID, share.GrantInput{
		GranteeID:  strings.TrimSpace(req.SharedWithID),
		Permission: permission,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.recordShareEvent(r, principal.ID, audit.ActionDocumentShared, view.ID, map[string]any{
		"documentId": documentID,
		"sharedWith": view.Grantee.ID,
		"permission": string(view.Permission),
	})
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) listShares(w http.ResponseWriter, r *http.Request, documentID string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	views, err := a.shares.ListForDocument(r.Context(), principal.ID, documentID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (a *API) revokeShare(w http.ResponseWriter, r *http.Request, documentID, shareID string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	if err := a.shares.Revoke(r.Context(), principal.ID, documentID, shareID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.recordShareEvent(r, principal.ID, audit.ActionShareRevoked, shareID, map[string]any{
		"documentId": documentID,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "share revoked"})
}

func (a *API) updateSharePermission(w http.ResponseWriter, r *http.Request, documentID, shareID string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}

	var req updatePermissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	permission, err := share.ParsePermission(req.Permission)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	view, err := a.shares.UpdatePermission(r.Context(), principal.ID, documentID, shareID, permission)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.recordShareEvent(r, principal.ID, audit.ActionShareUpdated, shareID, map[string]any{
		"documentId": documentID,
		"permission": string(permission),
	})
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleSharedWithMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	docs, err := a.shares.SharedWithMe(r.Context(), principal.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": docs})
}

func (a *API) recordShareEvent(r *http.Request, userID string, action audit.Action, shareID string, details map[string]any) {
	a.auditor.Record(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     action,
		EntityType: audit.EntityShare,
		EntityID:   shareID,
		Details:    details,
		Origin:     requestOrigin(r),
	})
}
