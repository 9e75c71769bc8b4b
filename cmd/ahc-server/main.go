package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/afero"

	"github.com/vetport/ahc-service/internal/blobstore"
	"github.com/vetport/ahc-service/internal/config"
	"github.com/vetport/ahc-service/internal/generator"
	"github.com/vetport/ahc-service/internal/handler"
	"github.com/vetport/ahc-service/internal/logging"
	"github.com/vetport/ahc-service/internal/router"
	"github.com/vetport/ahc-service/internal/storage"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
)

const shutdownTimeout = 10 * time.Second

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			fmt.Printf("ahc-server %s (built %s)\n", version, buildTime)
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting ahc-server", "version", version, "addr", cfg.Address(), "blob_driver", cfg.BlobDriver)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create blob store: %w", err)
	}

	subs := storage.NewSubmissionRepository(pool)
	templates := storage.NewTemplateRepository(pool)
	audit := storage.NewAuditRepository(pool)

	fetch := generator.NewHTTPFetcher(cfg.FetchTimeout)
	gen := generator.NewService(subs, templates, audit, blobs, fetch, log)

	mux := router.New(
		cfg.JWTSecret,
		log,
		handler.NewIntakeHandler(subs, templates, audit, log),
		handler.NewSubmissionHandler(subs, templates, audit, log),
		handler.NewTemplateHandler(templates, fetch),
		handler.NewGenerateHandler(gen),
	)
	if cfg.BlobDriver == config.DriverFS {
		mux.Handle("/artifacts/*", http.StripPrefix("/artifacts/",
			http.FileServer(http.Dir(cfg.BlobDir))))
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Address())
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case sig := <-signalCh:
		log.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-serverErrCh
		return nil

	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// migrate applies the embedded schema migrations over database/sql; the
// pgx stdlib driver is registered by the blank import.
func migrate(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return storage.Migrate(db)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.BlobDriver {
	case config.DriverS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	case config.DriverFS:
		return blobstore.NewFSStore(afero.NewOsFs(), cfg.BlobDir, cfg.BlobBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown blob driver: %s", cfg.BlobDriver)
	}
}
