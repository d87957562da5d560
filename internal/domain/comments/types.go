package comments

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("comment not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrAuthorNotFound    = errors.New("comment author not found")
	QueryTimeoutDuration = time.Second * 5
)

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) OwnerID() int64 { return c.UserID }

type Patch struct {
	Content *string
}

// Apply mirrors the COALESCE merge Update runs in SQL.
func (p Patch) Apply(c *Comment) {
	if p.Content != nil {
		c.Content = *p.Content
	}
}
