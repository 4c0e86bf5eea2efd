// Copyright 2025 Edgaze
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"edgaze/platform/admin"
	"edgaze/platform/auth"
	"edgaze/platform/bugs"
	"edgaze/platform/common/ratelimit"
	"edgaze/platform/reports"
	"edgaze/platform/runs"
	"edgaze/platform/shared/logger"
)

// Run is the exported entry point for the API service. It wires every
// component from environment configuration and blocks until shutdown.
//
// Environment variables used:
//   - PORT: HTTP server port (default: 8080)
//   - DATABASE_URL or DATABASE_HOST/PORT/NAME/USER/PASSWORD/SSLMODE
//   - JWT_SECRET: HS256 signing secret for bearer tokens
//   - REDIS_URL: rate limiter backend (optional; limiter fails open)
//   - MINIO_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET: attachment storage (optional)
//   - CORS_ORIGIN: allowed origin (default: *)
func Run() error {
	log := logger.New("edgaze-api")

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		// The server still starts; gated reads fail and the diagnostics
		// endpoints explain why.
		log.Warn("", "Database unreachable at startup", map[string]interface{}{
			"error": err.Error(),
		})
	}

	resolver := auth.NewResolver([]byte(cfg.JWTSecret))
	adminChecker := auth.NewAdminChecker(db)

	// Run accounting and diagnostics.
	runsRepo := runs.NewPostgresRepository(db)
	runsService := runs.NewService(runsRepo, adminChecker, log)
	diagnostics := runs.NewDiagnostics(runsRepo, cfg.DatabaseURL != "", log)
	runsHandler := runs.NewHandler(resolver, runsService, diagnostics, log)

	// Operator surface.
	adminService := admin.NewService(admin.NewPostgresRepository(db), log)
	adminHandler := admin.NewHandler(resolver, adminChecker, adminService, log)

	// Listing reports.
	reportsService := reports.NewService(reports.NewPostgresRepository(db), log)
	reportsHandler := reports.NewHandler(resolver, reportsService, log)

	// Bug reports: Redis and object storage are both optional. Without
	// Redis the limiter fails open; without object storage attachment
	// uploads degrade to warnings.
	var limiter *ratelimit.Limiter
	if cfg.RedisURL != "" {
		client, err := ratelimit.NewClient(cfg.RedisURL)
		if err != nil {
			log.Warn("", "Redis unavailable, bug report rate limiting disabled", map[string]interface{}{
				"error": err.Error(),
			})
			limiter = ratelimit.New(nil, "bugs", cfg.BugReportsPerMin, log)
		} else {
			defer client.Close()
			limiter = ratelimit.New(client, "bugs", cfg.BugReportsPerMin, log)
		}
	} else {
		limiter = ratelimit.New(nil, "bugs", cfg.BugReportsPerMin, log)
	}

	var store bugs.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := bugs.NewMinioStore(bugs.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Warn("", "Object storage unavailable, attachments will fail with warnings", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			store = minioStore
		}
	}
	if store == nil {
		store = unavailableStore{}
	}
	bugsService := bugs.NewService(bugs.NewPostgresRepository(db), store, log)
	bugsHandler := bugs.NewHandler(resolver, limiter, bugsService, log)

	server := NewServer(db, log, cfg.AllowedOrigins,
		runsHandler, adminHandler, reportsHandler, bugsHandler)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("", "Edgaze API listening", map[string]interface{}{"port": cfg.Port})
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("", "Shutting down", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

// unavailableStore stands in when object storage is not configured. Every
// upload fails, which the bugs service reports as a warning while keeping
// the report row.
type unavailableStore struct{}

func (unavailableStore) Upload(_ context.Context, _, _ string, _ int64, _ io.Reader) error {
	return fmt.Errorf("object storage not configured")
}
