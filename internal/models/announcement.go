package models

import "time"

// Announcement is a notice published by an admin to every viewer.
type Announcement struct {
	ID          string    `json:"announcement_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tag         string    `json:"tag,omitempty"`
	AuthorID    string    `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

func (a Announcement) Key() string { return a.ID }

func (a Announcement) Complete() bool {
	return a.ID != "" && a.Title != ""
}
