package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edimaudo/daid/internal/application"
	appanalysis "github.com/edimaudo/daid/internal/application/analysis"
	"github.com/edimaudo/daid/internal/config"
	domain "github.com/edimaudo/daid/internal/domain/analysis"
	openaiClient "github.com/edimaudo/daid/internal/infra/ai/openai"
	mysqlp "github.com/edimaudo/daid/internal/infra/db/mysql"
	postgresp "github.com/edimaudo/daid/internal/infra/db/postgres"
	"github.com/edimaudo/daid/internal/infra/httpserver"
	minioStore "github.com/edimaudo/daid/internal/infra/storage"
	"github.com/edimaudo/daid/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	svc := &appanalysis.Service{
		Clock: application.SystemClock{},
		Mode:  domain.Mode(cfg.AI.Mode),
	}

	// Missing credential degrades the analysis endpoint instead of refusing
	// to start: pages and health stay up, /api/generate_analysis returns a
	// configuration error.
	if cfg.AI.APIKey != "" {
		svc.Generator = openaiClient.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	} else {
		log.Printf("WARNING: %s not set, analysis endpoint will fail until it is", config.CredentialEnv)
	}

	checkers := map[string]middleware.HealthChecker{}

	// optional analysis history
	var db *sql.DB
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		svc.Repo = mysqlp.NewAnalysisRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		svc.Repo = postgresp.NewAnalysisRepository(db)
	case "none":
	default:
		log.Fatalf("unknown database driver %q", cfg.Database.Driver)
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// optional raw output archive
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Archive = store
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		APIKey:         cfg.Server.APIKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthCheckers: checkers,
		RateLimit:      10,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (mode=%s)", addr, cfg.AI.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
