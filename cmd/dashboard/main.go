package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/config"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/dashboard"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/push/redispush"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/render"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/session"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/transport"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Dashboard failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadDashboard()
	if err != nil {
		logging.Setup()
		return err
	}
	// Tables go to stdout, logs to stderr.
	slog.SetDefault(logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redispush.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)
	client := transport.NewHTTPClient(cfg.APIBaseURL)

	profile, err := signIn(ctx, client, sessions, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessions.Clear(context.Background(), cfg.Username); err != nil {
			slog.Warn("Failed to clear session", "error", err)
		}
	}()

	dash, err := dashboard.New(client, profile.Viewer, dashboard.LogNotifier{})
	if err != nil {
		return err
	}

	var mu sync.Mutex
	redraw := func(eventType string) {
		mu.Lock()
		defer mu.Unlock()
		slog.Debug("Redrawing dashboard", "trigger", eventType)

		fmt.Fprintf(os.Stdout, "\n== %s (%s) ==\n", profile.Name, profile.Viewer.Role)
		if err := draw(os.Stdout, dash); err != nil {
			slog.Error("Render failed", "error", err)
		}
	}

	router := events.NewRouter(redispush.New(rdb), profile.Viewer, dash.Targets(), events.OnChange(redraw))
	if err := router.Connect(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		slog.Info("Shutting down dashboard")
		if err := router.Disconnect(); err != nil {
			slog.Warn("Push disconnect failed", "error", err)
		}
		<-router.Done()
	case <-router.Done():
		slog.Warn("Push connection lost, restart the dashboard to reconnect")
	}
	return nil
}

// draw prints the viewer's tables. Residents see their own bill statuses;
// admins see one settlement row per bill instead.
func draw(w io.Writer, dash *dashboard.Session) error {
	if !visibility.IsAdmin(dash.Viewer()) {
		return render.BillViews(w, dash.BillViews())
	}
	settlements, err := dash.Settlements()
	if err != nil {
		return err
	}
	return render.Settlements(w, settlements)
}

// signIn reuses a saved, unexpired session or logs in and saves a new one.
func signIn(ctx context.Context, client *transport.HTTPClient, sessions session.Store, cfg *config.Dashboard) (session.Profile, error) {
	profile, err := sessions.Load(ctx, cfg.Username)
	switch {
	case err == nil && profile.Token != "":
		client.SetToken(profile.Token)
		slog.Info("Resumed saved session", "user_id", profile.Viewer.ID)
		return profile, nil
	case err != nil && !errors.Is(err, session.ErrNoSession):
		slog.Warn("Failed to load saved session", "error", err)
	}

	profile, err = dashboard.Login(ctx, client, cfg.Username, cfg.Password)
	if err != nil {
		return session.Profile{}, fmt.Errorf("failed to log in: %w", err)
	}
	if err := sessions.Save(ctx, cfg.Username, profile); err != nil {
		slog.Warn("Failed to save session", "error", err)
	}
	return profile, nil
}
