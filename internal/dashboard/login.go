package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/session"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/transport"
)

// Login exchanges credentials for a token, installs it on client and returns
// the profile to persist.
func Login(ctx context.Context, client *transport.HTTPClient, username, password string) (session.Profile, error) {
	if username == "" {
		return session.Profile{}, invalid("username", "is required")
	}
	if password == "" {
		return session.Profile{}, invalid("password", "is required")
	}

	slog.Info("Login request received", "username", username)
	raw, err := client.Send(ctx, http.MethodPost, "/login", models.LoginInput{Username: username, Password: password})
	if err != nil {
		slog.Warn("Login failed", "username", username, "error", err)
		return session.Profile{}, err
	}

	var res models.LoginResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return session.Profile{}, fmt.Errorf("failed to decode login response: %w", err)
	}
	if res.Token == "" || !res.User.Viewer().Valid() {
		return session.Profile{}, fmt.Errorf("login response has no token or user")
	}

	client.SetToken(res.Token)
	slog.Info("Login successful", "user_id", res.User.ID, "role", res.User.Role.String())
	return session.Profile{
		Viewer:   res.User.Viewer(),
		Name:     res.User.Name,
		Username: res.User.Username,
		Token:    res.Token,
	}, nil
}
