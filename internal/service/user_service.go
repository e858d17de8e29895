package service

import (
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

// userUpdate is the body of PUT /users/{id}. Absent fields are left unchanged.
// Only admins may change status or role.
type userUpdate struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Status  string  `json:"status"`
	Role    string  `json:"role"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		fail(w, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, values(users))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !visibility.OwnedVisible(id, viewer(r)) {
		fail(w, "GetUser", notFoundErr("user", id))
		return
	}
	user, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		fail(w, "GetUser", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v := viewer(r)
	slog.Info("UpdateUser request received", "user_id", id, "by", v.ID)

	if !visibility.OwnedVisible(id, v) {
		fail(w, "UpdateUser", notFoundErr("user", id))
		return
	}
	var in userUpdate
	if err := decode(r, &in); err != nil {
		fail(w, "UpdateUser", err)
		return
	}
	if (in.Status != "" || in.Role != "") && !visibility.IsAdmin(v) {
		fail(w, "UpdateUser", errAdminOnly)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		fail(w, "UpdateUser", err)
		return
	}
	setIf(&user.Name, in.Name)
	setIf(&user.Phone, in.Phone)
	setIf(&user.Email, in.Email)
	setIf(&user.Address, in.Address)
	if in.Status != "" {
		status, err := models.ParseUserStatus(in.Status)
		if err != nil {
			fail(w, "UpdateUser", &models.FieldError{Field: "status", Message: err.Error()})
			return
		}
		user.Status = status
	}
	if in.Role != "" {
		role, err := models.ParseRole(in.Role)
		if err != nil {
			fail(w, "UpdateUser", &models.FieldError{Field: "role", Message: err.Error()})
			return
		}
		user.Role = role
	}
	user.UpdatedAt = s.now()

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		fail(w, "UpdateUser", err)
		return
	}

	slog.Info("User updated", "user_id", user.ID, "status", user.Status)
	s.publish(r.Context(), events.EventUserUpdated, user, admins())
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	slog.Info("DeleteUser request received", "user_id", id)

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		fail(w, "DeleteUser", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func setIf(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
