package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gamehub/internal/domain/posts"

	"github.com/9ssi7/exponent"
	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu    sync.Mutex
	name  string
	err   error
	panic bool
	got   []Notification
	done  chan struct{}
}

func newRecordingSink(name string) *recordingSink {
	return &recordingSink{name: name, done: make(chan struct{}, 16)}
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	defer func() { s.done <- struct{}{} }()
	if s.panic {
		panic("boom")
	}
	s.mu.Lock()
	s.got = append(s.got, n)
	s.mu.Unlock()
	return s.err
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sink %s was not called", s.name)
	}
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	failing := newRecordingSink("failing")
	failing.err = errors.New("unreachable")
	panicking := newRecordingSink("panicking")
	panicking.panic = true
	ok := newRecordingSink("ok")

	d := NewDispatcher(zap.NewNop().Sugar(), 4, failing, panicking, ok)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	n := PostCreated(&posts.Post{ID: 7, Title: "hello", UserID: 1})
	d.Notify(n)

	failing.wait(t)
	panicking.wait(t)
	ok.wait(t)

	ok.mu.Lock()
	defer ok.mu.Unlock()
	require.Len(t, ok.got, 1)
	assert.Equal(t, n.ID, ok.got[0].ID)
	assert.Equal(t, TypePostCreated, ok.got[0].Type)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := newRecordingSink("ok")
	d := NewDispatcher(zap.NewNop().Sugar(), 1, sink)

	d.Notify(PostCreated(&posts.Post{ID: 1}))
	d.Notify(PostCreated(&posts.Post{ID: 2}))

	assert.Len(t, d.queue, 1)
}

type fakePush struct {
	batches [][]*exponent.Message
	err     error
	// dead tokens get a DeviceNotRegistered ticket
	dead map[string]bool
}

func (f *fakePush) Publish(_ context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	f.batches = append(f.batches, msgs)
	if f.err != nil {
		return nil, f.err
	}

	resps := make([]*exponent.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp := &exponent.MessageResponse{MessageItem: m, Status: "ok"}
		if f.dead[string(*m.To[0])] {
			resp.Status = "error"
			resp.Message = "not a registered push notification recipient"
			resp.Details = exponent.Data{"error": string(exponent.ErrorMsgDeviceNotRegistered)}
		}
		resps = append(resps, resp)
	}
	return resps, nil
}

type fakeTokens struct {
	mu      sync.Mutex
	tokens  []string
	removed []string
}

func newFakeTokens(tokens ...string) *fakeTokens {
	return &fakeTokens{tokens: tokens}
}

func (f *fakeTokens) ListAll(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.tokens...), nil
}

func (f *fakeTokens) RemoveTokens(_ context.Context, tokens []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	drop := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		drop[t] = true
	}
	kept := f.tokens[:0]
	for _, t := range f.tokens {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	f.removed = append(f.removed, tokens...)
	return nil
}

func TestExpoBroadcasterBatches(t *testing.T) {
	tokens := newFakeTokens()
	for i := 0; i < 250; i++ {
		tokens.tokens = append(tokens.tokens, "ExponentPushToken["+string(rune('a'+i%26))+string(rune('a'+i/26))+"]")
	}
	tokens.tokens = append(tokens.tokens, tokens.tokens[0])

	push := &fakePush{}
	b := NewExpoBroadcaster(push, tokens)
	require.NoError(t, b.Deliver(context.Background(), PostCreated(&posts.Post{ID: 3, Title: "new map"})))

	require.Len(t, push.batches, 3)
	assert.Len(t, push.batches[0], 100)
	assert.Len(t, push.batches[2], 50)

	msg := push.batches[0][0]
	assert.Equal(t, "New post", msg.Title)
	assert.Equal(t, "new map", msg.Body)
	assert.Equal(t, "3", msg.Data["post_id"])
	assert.Empty(t, tokens.removed)
}

func TestExpoBroadcasterForgetsUnregisteredDevices(t *testing.T) {
	const (
		live = "ExponentPushToken[live]"
		dead = "ExponentPushToken[dead]"
	)
	tokens := newFakeTokens(live, dead)
	push := &fakePush{dead: map[string]bool{dead: true}}
	b := NewExpoBroadcaster(push, tokens)

	require.NoError(t, b.Deliver(context.Background(), PostCreated(&posts.Post{ID: 1, Title: "first"})))
	assert.Equal(t, []string{dead}, tokens.removed)

	left, err := tokens.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{live}, left)

	require.NoError(t, b.Deliver(context.Background(), PostCreated(&posts.Post{ID: 2, Title: "second"})))
	require.Len(t, push.batches, 2)
	require.Len(t, push.batches[1], 1)
	assert.Equal(t, exponent.Token(live), *push.batches[1][0].To[0])
}

func TestUnregisteredTokensWithoutMessageItem(t *testing.T) {
	a, b := exponent.Token("ExponentPushToken[a]"), exponent.Token("ExponentPushToken[b]")
	batch := []*exponent.Message{{To: []*exponent.Token{&a}}, {To: []*exponent.Token{&b}}}
	resps := []*exponent.MessageResponse{
		{Status: "ok"},
		{Status: "error", Details: exponent.Data{"error": string(exponent.ErrorMsgDeviceNotRegistered)}},
	}
	assert.Equal(t, []string{string(b)}, unregisteredTokens(batch, resps))

	resps[1].Details = exponent.Data{"error": string(exponent.ErrorMsgRateExceeded)}
	assert.Empty(t, unregisteredTokens(batch, resps))
}

func TestExpoBroadcasterNoTokens(t *testing.T) {
	push := &fakePush{}
	b := NewExpoBroadcaster(push, newFakeTokens())
	require.NoError(t, b.Deliver(context.Background(), PostCreated(&posts.Post{ID: 1})))
	assert.Empty(t, push.batches)
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisherEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	k := &KafkaPublisher{writer: w}

	n := PostCreated(&posts.Post{ID: 9, Title: "t", Content: "c", UserID: 2})
	require.NoError(t, k.Deliver(context.Background(), n))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, n.ID.String(), string(w.msgs[0].Key))

	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			ID     int64 `json:"id"`
			UserID int64 `json:"user_id"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "new_post", decoded.Type)
	assert.Equal(t, int64(9), decoded.Payload.ID)
	assert.Equal(t, int64(2), decoded.Payload.UserID)
}
