package service

import (
	"log/slog"
	"net/http"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/events"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/visibility"
)

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	docs, err := s.store.ListDocuments(r.Context(), ownerFilter(v))
	if err != nil {
		fail(w, "ListDocuments", err)
		return
	}
	writeJSON(w, http.StatusOK, visibility.OwnedBy(values(docs), v))
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		fail(w, "GetDocument", err)
		return
	}
	if !visibility.OwnedVisible(doc.UploadedBy, viewer(r)) {
		fail(w, "GetDocument", notFoundErr("document", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

// createDocument records a document filed by the caller.
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	var in models.DocumentInput
	if err := decode(r, &in); err != nil {
		fail(w, "CreateDocument", err)
		return
	}
	slog.Info("CreateDocument request received", "user_id", v.ID, "document_name", in.Name)
	if err := in.Validate(); err != nil {
		fail(w, "CreateDocument", err)
		return
	}

	doc := &models.Document{
		Name:       in.Name,
		FilePath:   in.FilePath,
		UploadedBy: v.ID,
		UploadedAt: s.now(),
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		fail(w, "CreateDocument", err)
		return
	}

	slog.Info("Document created", "document_id", doc.ID)
	s.publish(r.Context(), events.EventDocumentCreated, doc, ownerAndAdmins(doc.UploadedBy))
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Document uploaded successfully", "document": doc})
}

// deleteDocument lets admins and the uploader remove a document.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slog.Info("DeleteDocument request received", "document_id", id)

	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		fail(w, "DeleteDocument", err)
		return
	}
	if !visibility.OwnedVisible(doc.UploadedBy, viewer(r)) {
		fail(w, "DeleteDocument", notFoundErr("document", id))
		return
	}
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		fail(w, "DeleteDocument", err)
		return
	}

	s.publish(r.Context(), events.EventDocumentDeleted, map[string]string{"document_id": id}, ownerAndAdmins(doc.UploadedBy))
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}
