package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const deliverTimeout = 10 * time.Second

// Dispatcher fans notifications out to its sinks from a single background
// worker. The queue is bounded; when it is full new notifications are dropped.
type Dispatcher struct {
	queue  chan Notification
	sinks  []Sink
	logger *zap.SugaredLogger
}

func NewDispatcher(logger *zap.SugaredLogger, size int, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		queue:  make(chan Notification, size),
		sinks:  sinks,
		logger: logger,
	}
}

func (d *Dispatcher) Notify(n Notification) {
	if len(d.sinks) == 0 {
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warnw("notification queue full, dropping", "id", n.ID, "type", n.Type)
	}
}

// Run delivers queued notifications until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	for _, sink := range d.sinks {
		if err := deliverSafely(ctx, sink, n); err != nil {
			d.logger.Errorw("notification delivery failed", "sink", sink.Name(), "id", n.ID, "type", n.Type, "error", err.Error())
			continue
		}
		d.logger.Debugw("notification delivered", "sink", sink.Name(), "id", n.ID)
	}
}

func deliverSafely(ctx context.Context, sink Sink, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	return sink.Deliver(ctx, n)
}
