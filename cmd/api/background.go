package main

import (
	"context"
	"time"
)

// pruneStalePushTokens deletes push tokens that were not refreshed within
// maxAge, once at start and then every interval until ctx is done.
func (app *application) pruneStalePushTokens(ctx context.Context, every, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			n, err := app.store.PushTokens.PruneStale(ctx, maxAge)
			if err != nil {
				app.logger.Errorf("Error pruning stale push tokens: %v", err)
			} else {
				app.logger.Infof("Pruned %d stale push tokens at %s", n, time.Now().Format(time.RFC1123))
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
