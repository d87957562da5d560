package reviews

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("review not found")
	QueryTimeoutDuration = time.Second * 5
)

// Review is a user's opinion about an external game, keyed by game_id.
type Review struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	UserID    *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Patch holds the fields of a partial update; nil fields keep their value.
type Patch struct {
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

// Apply mirrors the COALESCE merge Update runs in SQL.
func (p Patch) Apply(r *Review) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
}
