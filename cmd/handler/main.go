package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sungenyeint/money-tracker/internal/auth"
	"github.com/sungenyeint/money-tracker/internal/config"
	"github.com/sungenyeint/money-tracker/internal/handler"
	"github.com/sungenyeint/money-tracker/internal/ledger"
	"github.com/sungenyeint/money-tracker/internal/services"
	"golang.org/x/sync/errgroup"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type store interface {
	ledger.Store
	Close() error
}

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	cfg := config.Load()

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Initialize Services
	txStore, err := newStore(cfg)
	if err != nil {
		slog.Error("failed to init transaction store", "backend", cfg.DataBackend, "error", err)
		os.Exit(1)
	}
	defer txStore.Close()

	verifier, err := newVerifier(cfg)
	if err != nil {
		slog.Error("failed to init token verifier", "auth_mode", cfg.AuthMode, "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Ledger:          ledger.NewService(txStore),
		ImportContainer: cfg.ImportContainer,
		ImportQueue:     cfg.ImportQueue,
	}

	if cfg.ImportEnabled() {
		blobService, err := services.NewBlobService(cfg.BlobServiceURL)
		if err != nil {
			slog.Error("failed to init BlobService", "error", err)
			os.Exit(1)
		}
		queueService, err := services.NewQueueService(cfg.QueueServiceURL)
		if err != nil {
			slog.Error("failed to init QueueService", "error", err)
			os.Exit(1)
		}
		deps.Blob = blobService
		deps.Queue = queueService
	} else {
		slog.Info("csv import disabled, blob or queue storage not configured")
	}

	if cfg.EmailEnabled() {
		emailService, err := services.NewEmailService(nil, cfg.CommunicationServicesEndpoint, cfg.SenderEmail)
		if err != nil {
			slog.Warn("failed to init EmailService (continuing without import reports)", "error", err)
		} else {
			deps.Email = emailService
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           loggingMiddleware(deps.Routes(auth.Middleware(verifier))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "port", cfg.Port, "backend", cfg.DataBackend, "auth_mode", cfg.AuthMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		txStore.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newStore(cfg *config.Config) (store, error) {
	switch cfg.DataBackend {
	case "sqlite":
		return services.NewSQLiteService(cfg.SQLiteDBPath)
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		return services.NewMemoryStore(), nil
	default:
		return services.NewDatabaseService(cfg.TableServiceURL, cfg.TransactionsTable)
	}
}

func newVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.AuthMode == "hmac" {
		return auth.NewHMACVerifier([]byte(cfg.AuthHMACSecret), "", "")
	}
	return auth.NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.AuthCertsURL, nil)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs method, path and status. Bodies and headers are not
// logged since they carry bearer tokens and financial data.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", duration)
	})
}
