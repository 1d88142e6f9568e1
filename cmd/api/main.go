package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"securevault.org/internal/audit"
	"securevault.org/internal/auth"
	"securevault.org/internal/blob"
	"securevault.org/internal/config"
	"securevault.org/internal/document"
	"securevault.org/internal/gdpr"
	"securevault.org/internal/httpapi"
	"securevault.org/internal/obs"
	"securevault.org/internal/share"
)

var version = "1.0.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("VAULT_COMMIT"))

	cfg := config.FromEnv()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	blobs, err := blob.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Ephemeral secret: fine for local runs, useless for a fleet.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("generate jwt secret: %v", err)
		}
		secret = hex.EncodeToString(buf)
		log.Println("VAULT_JWT_SECRET not set; using an ephemeral signing secret")
	}

	var (
		authStore    auth.Store
		docStore     document.Store
		shareStore   share.Store
		auditStore   audit.Store
		consentStore gdpr.ConsentStore
	)
	if db != nil {
		authStore = auth.NewPGStore(db)
		docStore = document.NewPGStore(db)
		shareStore = share.NewPGStore(db)
		auditStore = audit.NewPGStore(db)
		consentStore = gdpr.NewPGConsentStore(db)
	} else {
		log.Println("VAULT_PG_DSN not set; running on in-memory stores")
		authStore = auth.NewInMemory()
		docStore = document.NewInMemory()
		shareStore = share.NewInMemory()
		auditStore = audit.NewInMemory()
		consentStore = gdpr.NewInMemoryConsents()
	}

	signer := auth.NewTokenSigner(secret, cfg.TokenTTL)
	authSvc := auth.NewService(authStore, signer,
		auth.WithOTPTTL(cfg.OTPTTL),
		auth.WithOTPEcho(cfg.EchoOTP),
	)

	feed := audit.NewFeed()
	auditor := audit.NewRecorder(auditStore, audit.WithFeed(feed))

	shareSvc := share.NewService(shareStore, docStore, authStore.Users())
	docSvc := document.NewService(docStore, blobs, shareSvc)
	gdprSvc := gdpr.NewService(authStore.Users(), docSvc, shareSvc, consentStore, auditor)

	api := httpapi.New(httpapi.Config{
		Auth:      authSvc,
		Documents: docSvc,
		Shares:    shareSvc,
		Auditor:   auditor,
		Feed:      feed,
		GDPR:      gdprSvc,
		Ready:     httpapi.ReadyProbe{DB: db},
		MaxUpload: cfg.MaxUploadSize,
		Version:   version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting securevault-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
