package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"securevault.org/internal/audit"
	"securevault.org/internal/auth"
	"securevault.org/internal/document"
	"securevault.org/internal/gdpr"
	"securevault.org/internal/share"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleDomainError maps sentinel errors from any subsystem onto HTTP codes.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, document.ErrForbidden),
		errors.Is(err, share.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrNotFound),
		errors.Is(err, document.ErrNotFound),
		errors.Is(err, share.ErrNotFound),
		errors.Is(err, share.ErrUnknownGrantee),
		errors.Is(err, audit.ErrNotFound),
		errors.Is(err, gdpr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, document.ErrInvalidFile),
		errors.Is(err, document.ErrInvalidCategory),
		errors.Is(err, share.ErrSelfShare),
		errors.Is(err, share.ErrExpiryInPast),
		errors.Is(err, share.ErrInvalidPermission),
		errors.Is(err, share.ErrDocumentMismatch),
		errors.Is(err, gdpr.ErrInvalidConsentType),
		errors.Is(err, gdpr.ErrNothingToRectify):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
