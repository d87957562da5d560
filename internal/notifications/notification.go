package notifications

import (
	"context"
	"strconv"
	"time"

	"gamehub/internal/domain/posts"

	"github.com/google/uuid"
)

type Type string

const TypePostCreated Type = "new_post"

// Notification is one broadcast about something that happened in the
// application. Payload is encoded as JSON by sinks that need bytes.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Payload   any       `json:"payload"`
}

func PostCreated(p *posts.Post) Notification {
	return Notification{
		ID:        uuid.New(),
		Type:      TypePostCreated,
		CreatedAt: time.Now().UTC(),
		Payload:   p,
	}
}

// Publisher accepts notifications for asynchronous delivery. Notify never
// blocks and never fails the caller.
type Publisher interface {
	Notify(n Notification)
}

// Sink delivers a notification to one destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// pushContent returns what a device displays for n.
func pushContent(n Notification) (string, string, map[string]string) {
	data := map[string]string{
		"type": string(n.Type),
		"id":   n.ID.String(),
	}
	switch n.Type {
	case TypePostCreated:
		if p, ok := n.Payload.(*posts.Post); ok {
			data["post_id"] = strconv.FormatInt(p.ID, 10)
			data["screen"] = "posts/" + strconv.FormatInt(p.ID, 10)
			return "New post", p.Title, data
		}
	}
	return "GameHub", "Something new happened", data
}

// NopPublisher drops every notification.
type NopPublisher struct{}

func (NopPublisher) Notify(Notification) {}
