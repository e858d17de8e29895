package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/auth"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// login authenticates an approved account and returns a bearer token.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decode(r, &in); err != nil {
		fail(w, "Login", err)
		return
	}
	slog.Info("Login request received", "username", in.Username)

	if in.Username == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, auth.ErrInvalidCredentials)
		return
	}

	user, err := s.authn.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrNotApproved) {
			err = auth.ErrInvalidCredentials
		}
		fail(w, "Login", err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		fail(w, "Login", err)
		return
	}

	slog.Info("User logged in successfully", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, models.LoginResult{Token: token, User: *user})
}

// register creates a pending resident. Admins are told so they can approve it.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decode(r, &in); err != nil {
		fail(w, "Register", err)
		return
	}
	slog.Info("Register request received", "username", in.Username)

	user, err := s.authn.Register(r.Context(), in)
	if err != nil {
		fail(w, "Register", err)
		return
	}

	slog.Info("User registered successfully", "user_id", user.ID)
	s.publish(r.Context(), events.EventUserRegistered, user, admins())
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}
