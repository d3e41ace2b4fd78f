package provider

import (
	"context"
	"time"

	"github.com/telecasthq/telecast-backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchConfig bounds how hard a sender leans on its upstream API: at most
// ChunkSize in-flight requests, with Pause between consecutive chunks.
// Both knobs are configuration, not implementation detail; tests shrink
// them instead of mocking timers.
type BatchConfig struct {
	ChunkSize int
	Pause     time.Duration
}

func DefaultBatchConfig() BatchConfig {
	return BatchConfig{ChunkSize: 10, Pause: time.Second}
}

// SendInBatches partitions contacts into fixed-size chunks, sends every
// message in a chunk concurrently, waits for all of them to settle, then
// pauses before the next chunk. No pause follows the final chunk.
//
// Results land in an index-addressed slice, so the returned sequence
// preserves input order and always has exactly one entry per contact.
// providerName tags the results synthesized for contacts never attempted
// because the context was cancelled.
func SendInBatches(ctx context.Context, providerName string, contacts []model.Contact, cfg BatchConfig, send func(context.Context, model.Contact) SendResult) []SendResult {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 10
	}

	results := make([]SendResult, len(contacts))
	for start := 0; start < len(contacts); start += cfg.ChunkSize {
		end := min(start+cfg.ChunkSize, len(contacts))

		var eg errgroup.Group
		for i := start; i < end; i++ {
			i := i
			eg.Go(func() error {
				results[i] = send(ctx, contacts[i])
				return nil
			})
		}
		// All-complete barrier: chunk N+1 starts only after every call in
		// chunk N has settled.
		_ = eg.Wait()

		if end < len(contacts) && cfg.Pause > 0 {
			select {
			case <-time.After(cfg.Pause):
			case <-ctx.Done():
				for i := end; i < len(contacts); i++ {
					results[i] = SendResult{
						ContactID:   contacts[i].ID,
						ContactName: contacts[i].Name,
						Success:     false,
						Error:       ctx.Err().Error(),
						Provider:    providerName,
					}
				}
				return results
			}
		}
	}
	return results
}
