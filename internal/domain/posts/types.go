package posts

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("post not found")
	ErrAuthorNotFound    = errors.New("post author not found")
	QueryTimeoutDuration = time.Second * 5
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) OwnerID() int64 { return p.UserID }

type Patch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

// Apply merges p into post in memory the same way Update merges it in SQL
// with COALESCE.
func (p Patch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.ImageURL != nil {
		post.ImageURL = p.ImageURL
	}
}
