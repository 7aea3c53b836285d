package models

import "time"

// Post is a single blog entry.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"` // empty until an image is attached
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasImage reports whether an image reference is attached.
func (p Post) HasImage() bool { return p.ImageURL != "" }

// Post event types published on the live feed.
const (
	PostCreated = "created"
	PostUpdated = "updated"
	PostDeleted = "deleted"
)

// PostEvent describes a change to a post.
type PostEvent struct {
	Type       string    `json:"type"` // created | updated | deleted
	PostID     string    `json:"post_id"`
	Post       *Post     `json:"post,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
