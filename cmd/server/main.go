package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/auth"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/config"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/push/redispush"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/service"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/storage/sqlite"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/pkg/logging"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		logging.Setup()
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	authn := auth.NewPasswordAuthenticator(store)
	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		admin, err := authn.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		if err != nil {
			slog.Error("Failed to seed admin account", "error", err)
			os.Exit(1)
		}
		slog.Info("Admin account ready", "user_id", admin.ID, "username", admin.Username)
	}
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	rdb, err := redispush.Connect(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	api := service.NewServer(store, authn, jwtManager, redispush.New(rdb))

	// Wrap with h2c for HTTP/2 without TLS
	handler := h2c.NewHandler(corsMiddleware(api.Handler()), &http2.Server{})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Village server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Village server stopped")
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
