package service

import (
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

func (s *Server) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListAnnouncements(r.Context())
	if err != nil {
		fail(w, "ListAnnouncements", err)
		return
	}
	writeJSON(w, http.StatusOK, values(list))
}

func (s *Server) getAnnouncement(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAnnouncement(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, "GetAnnouncement", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcement": a})
}

func (s *Server) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	v, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var in models.AnnouncementInput
	if err := decode(r, &in); err != nil {
		fail(w, "CreateAnnouncement", err)
		return
	}
	slog.Info("CreateAnnouncement request received", "title", in.Title)
	if err := in.Validate(); err != nil {
		fail(w, "CreateAnnouncement", err)
		return
	}

	a := &models.Announcement{Title: in.Title, Content: in.Content, Tag: in.Tag, AuthorID: v.ID}
	if err := s.store.CreateAnnouncement(r.Context(), a); err != nil {
		fail(w, "CreateAnnouncement", err)
		return
	}

	s.publish(r.Context(), events.EventAnnouncementCreated, a, broadcast())
	writeJSON(w, http.StatusCreated, map[string]any{"announcement": a})
}

func (s *Server) updateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var in models.AnnouncementInput
	if err := decode(r, &in); err != nil {
		fail(w, "UpdateAnnouncement", err)
		return
	}
	slog.Info("UpdateAnnouncement request received", "announcement_id", id)
	if err := in.Validate(); err != nil {
		fail(w, "UpdateAnnouncement", err)
		return
	}

	a, err := s.store.GetAnnouncement(r.Context(), id)
	if err != nil {
		fail(w, "UpdateAnnouncement", err)
		return
	}
	a.Title, a.Content, a.Tag = in.Title, in.Content, in.Tag
	if err := s.store.UpdateAnnouncement(r.Context(), a); err != nil {
		fail(w, "UpdateAnnouncement", err)
		return
	}

	s.publish(r.Context(), events.EventAnnouncementUpdated, a, broadcast())
	writeJSON(w, http.StatusOK, map[string]any{"announcement": a})
}

func (s *Server) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	slog.Info("DeleteAnnouncement request received", "announcement_id", id)

	if err := s.store.DeleteAnnouncement(r.Context(), id); err != nil {
		fail(w, "DeleteAnnouncement", err)
		return
	}

	s.publish(r.Context(), events.EventAnnouncementDeleted, map[string]string{"announcement_id": id}, broadcast())
	writeJSON(w, http.StatusOK, map[string]string{"message": "announcement deleted"})
}
