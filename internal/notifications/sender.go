package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender is the subset of the Expo client the broadcaster uses.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
}
