package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"securevault.org/internal/audit"
	"securevault.org/internal/auth"
	"securevault.org/internal/document"
	"securevault.org/internal/gdpr"
	"securevault.org/internal/obs"
	"securevault.org/internal/share"
)

// ReadyProbe reports whether downstream dependencies are reachable.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP boundary of the vault.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	docs       *document.Service
	shares     *share.Service
	auditor    *audit.Recorder
	feed       *audit.Feed
	gdpr       *gdpr.Service
	readyProbe ReadyProbe
	maxUpload  int64
	version    string
}

// Config wires the API's collaborators.
type Config struct {
	Auth      *auth.Service
	Documents *document.Service
	Shares    *share.Service
	Auditor   *audit.Recorder
	Feed      *audit.Feed
	GDPR      *gdpr.Service
	Ready     ReadyProbe
	MaxUpload int64
	Version   string
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       cfg.Auth,
		docs:       cfg.Documents,
		shares:     cfg.Shares,
		auditor:    cfg.Auditor,
		feed:       cfg.Feed,
		gdpr:       cfg.GDPR,
		readyProbe: cfg.Ready,
		maxUpload:  cfg.MaxUpload,
		version:    cfg.Version,
	}
	if a.maxUpload <= 0 {
		a.maxUpload = document.MaxFileSize
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/verify-otp", a.handleVerifyOTP)
	a.mux.HandleFunc("/v1/auth/profile", a.handleProfile)
	a.mux.HandleFunc("/v1/auth/admin", a.handleAdminPing)

	a.mux.HandleFunc("/v1/documents", a.handleDocumentsCollection)
	a.mux.HandleFunc("/v1/documents/shared/with-me", a.handleSharedWithMe)
	a.mux.HandleFunc("/v1/documents/", a.handleDocumentResource)

	a.mux.HandleFunc("/v1/audit/logs", a.handleAuditLogs)
	a.mux.HandleFunc("/v1/audit/logs/my", a.handleMyAuditLogs)
	a.mux.HandleFunc("/v1/audit/logs/entity/", a.handleEntityAuditLogs)
	a.mux.HandleFunc("/v1/audit/stream", a.handleAuditStream)

	a.mux.HandleFunc("/v1/gdpr/export", a.handleExport)
	a.mux.HandleFunc("/v1/gdpr/data", a.handleData)
	a.mux.HandleFunc("/v1/gdpr/consents", a.handleConsentsCollection)
	a.mux.HandleFunc("/v1/gdpr/consents/", a.handleConsentResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux. The body cap leaves
// room for the multipart envelope around a maximum-size upload.
func (a *API) Handler() http.Handler {
	h := obs.Instrument(a.mux)
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxUpload+1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "securevault-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "securevault-api",
		"version": a.version,
	})
}
