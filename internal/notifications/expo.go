package notifications

import (
	"context"
	"fmt"

	"github.com/9ssi7/exponent"
)

// Expo accepts at most 100 messages per request.
const expoBatchSize = 100

type TokenStore interface {
	ListAll(ctx context.Context) ([]string, error)
	RemoveTokens(ctx context.Context, tokens []string) error
}

// ExpoBroadcaster pushes a notification to every registered device and
// forgets devices Expo no longer knows.
type ExpoBroadcaster struct {
	push   PushSender
	tokens TokenStore
}

func NewExpoBroadcaster(push PushSender, tokens TokenStore) *ExpoBroadcaster {
	return &ExpoBroadcaster{push: push, tokens: tokens}
}

func (b *ExpoBroadcaster) Name() string { return "expo" }

func (b *ExpoBroadcaster) Deliver(ctx context.Context, n Notification) error {
	tokens, err := b.tokens.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list push tokens: %w", err)
	}
	tokens = dedupe(tokens)
	if len(tokens) == 0 {
		return nil
	}

	title, body, data := pushContent(n)
	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data:  data,
		})
	}

	var unregistered []string
	for start := 0; start < len(msgs); start += expoBatchSize {
		end := min(start+expoBatchSize, len(msgs))
		batch := msgs[start:end]
		resps, err := b.push.Publish(ctx, batch)
		if err != nil {
			return fmt.Errorf("publish push batch %d-%d: %w", start, end, err)
		}
		unregistered = append(unregistered, unregisteredTokens(batch, resps)...)
	}

	if len(unregistered) == 0 {
		return nil
	}
	if err := b.tokens.RemoveTokens(ctx, unregistered); err != nil {
		return fmt.Errorf("remove %d unregistered push tokens: %w", len(unregistered), err)
	}
	return nil
}

// unregisteredTokens returns the recipients Expo answered with
// DeviceNotRegistered. Tickets come back in message order, one per message.
func unregisteredTokens(batch []*exponent.Message, resps []*exponent.MessageResponse) []string {
	var out []string
	for i, resp := range resps {
		if resp == nil || resp.IsOk() || resp.Details["error"] != string(exponent.ErrorMsgDeviceNotRegistered) {
			continue
		}

		msg := resp.MessageItem
		if msg == nil && i < len(batch) {
			msg = batch[i]
		}
		if msg == nil {
			continue
		}
		for _, to := range msg.To {
			if to != nil {
				out = append(out, string(*to))
			}
		}
	}
	return out
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
