package httpapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"securevault.org/internal/audit"
	"securevault.org/internal/document"
)

type documentResponse struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"ownerId"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	MIMEType    string            `json:"mimeType"`
	Size        int64             `json:"size"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func documentView(d *document.Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Category:    string(d.Category),
		MIMEType:    d.MIMEType,
		Size:        d.Size,
		Description: d.Description,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (a *API) handleDocumentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.uploadDocument(w, r)
	case http.MethodGet:
		a.listDocuments(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

// handleDocumentResource dispatches /v1/documents/{id}[...] subroutes.
func (a *API) handleDocumentResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			a.getDocument(w, r, id)
		case http.MethodDelete:
			a.deleteDocument(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
	case len(parts) == 2 && parts[1] == "download":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.downloadDocument(w, r, id)
	case len(parts) == 2 && parts[1] == "shares":
		switch r.Method {
		case http.MethodPost:
			a.grantShare(w, r, id)
		case http.MethodGet:
			a.listShares(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
		}
	case len(parts) == 3 && parts[1] == "shares":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		a.revokeShare(w, r, id, parts[2])
	case len(parts) == 4 && parts[1] == "shares" && parts[3] == "permission":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.updateSharePermission(w, r, id, parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) uploadDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	category, err := document.ParseCategory(r.FormValue("category"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, document.MaxFileSize+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read file")
		return
	}

	doc, err := a.docs.Upload(r.Context(), document.UploadInput{
		OwnerID:      principal.ID,
		Name:         strings.TrimSpace(r.FormValue("name")),
		OriginalName: header.Filename,
		Category:     category,
		DeclaredMIME: declaredMIME(header),
		Description:  strings.TrimSpace(r.FormValue("description")),
		Data:         data,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	a.recordDocumentEvent(r, principal.ID, audit.ActionDocumentUploaded, doc.ID, map[string]any{
		"name":     doc.Name,
		"category": string(doc.Category),
		"size":     doc.Size,
	})
	w.Header().Set("Location", "/v1/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, documentView(doc))
}

func (a *API) listDocuments(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	docs, err := a.docs.ListByOwner(r.Context(), principal.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	items := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, documentView(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	doc, err := a.docs.Get(r.Context(), id, principal.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.recordDocumentEvent(r, principal.ID, audit.ActionDocumentViewed, doc.ID, nil)
	writeJSON(w, http.StatusOK, documentView(doc))
}

func (a *API) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	doc, rc, err := a.docs.Open(r.Context(), id, principal.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	defer rc.Close()

	filename := doc.Metadata[document.MetaOriginalName]
	if filename == "" {
		filename = doc.Name
	}
	w.Header().Set("Content-Type", doc.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(filename, `"`, "")+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; nothing useful left to send.
		return
	}
	a.recordDocumentEvent(r, principal.ID, audit.ActionDocumentFetched, doc.ID, nil)
}

func (a *API) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireRole(w, r)
	if !ok {
		return
	}
	if err := a.docs.Delete(r.Context(), id, principal.ID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	a.recordDocumentEvent(r, principal.ID, audit.ActionDocumentDeleted, id, nil)
	writeJSON(w, http.StatusOK, map[string]any{"message": "document deleted"})
}

func (a *API) recordDocumentEvent(r *http.Request, userID string, action audit.Action, docID string, details map[string]any) {
	a.auditor.Record(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     action,
		EntityType: audit.EntityDocument,
		EntityID:   docID,
		Details:    details,
		Origin:     requestOrigin(r),
	})
}

func declaredMIME(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
