package models

import "time"

// Document is a file a resident or admin has filed with the village office.
type Document struct {
	ID         string    `json:"document_id"`
	Name       string    `json:"document_name"`
	FilePath   string    `json:"file_path"`
	UploadedBy string    `json:"uploaded_by_user_id"`
	UploadedAt time.Time `json:"upload_date"`
}

func (d Document) Key() string { return d.ID }

func (d Document) Complete() bool {
	return d.ID != "" && d.UploadedBy != "" && d.Name != ""
}

func (d Document) OwnerID() string { return d.UploadedBy }
