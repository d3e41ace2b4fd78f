package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecasthq/telecast-backend/internal/model"
)

func makeContacts(n int) []model.Contact {
	contacts := make([]model.Contact, n)
	for i := range contacts {
		contacts[i] = model.Contact{ID: i + 1, Name: fmt.Sprintf("Contact %d", i+1)}
	}
	return contacts
}

func TestSendInBatchesOneResultPerContactInOrder(t *testing.T) {
	contacts := makeContacts(25)
	cfg := BatchConfig{ChunkSize: 10, Pause: time.Millisecond}

	results := SendInBatches(context.Background(), WhatsApp, contacts, cfg, func(_ context.Context, c model.Contact) SendResult {
		return SendResult{ContactID: c.ID, ContactName: c.Name, Success: true}
	})

	require.Len(t, results, 25)
	for i, res := range results {
		assert.Equal(t, contacts[i].ID, res.ContactID)
		assert.True(t, res.Success)
	}
}

func TestSendInBatchesFailureDoesNotSuppressSiblings(t *testing.T) {
	contacts := makeContacts(12)
	cfg := BatchConfig{ChunkSize: 10, Pause: time.Millisecond}

	results := SendInBatches(context.Background(), WhatsApp, contacts, cfg, func(_ context.Context, c model.Contact) SendResult {
		if c.ID == 5 {
			return SendResult{ContactID: c.ID, Success: false, Error: "boom"}
		}
		return SendResult{ContactID: c.ID, Success: true}
	})

	require.Len(t, results, 12)
	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
			assert.Equal(t, 5, res.ContactID)
			assert.Equal(t, "boom", res.Error)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestSendInBatchesPausesBetweenChunksButNotAfterLast(t *testing.T) {
	contacts := makeContacts(25)
	pause := 50 * time.Millisecond
	cfg := BatchConfig{ChunkSize: 10, Pause: pause}

	start := time.Now()
	results := SendInBatches(context.Background(), WhatsApp, contacts, cfg, func(_ context.Context, c model.Contact) SendResult {
		return SendResult{ContactID: c.ID, Success: true}
	})
	elapsed := time.Since(start)

	require.Len(t, results, 25)
	// 3 chunks means exactly 2 pauses.
	assert.GreaterOrEqual(t, elapsed, 2*pause)
	assert.Less(t, elapsed, 3*pause)
}

func TestSendInBatchesChunkBarrier(t *testing.T) {
	contacts := makeContacts(30)
	cfg := BatchConfig{ChunkSize: 10, Pause: 0}

	var inFlight, peak int64
	var mu sync.Mutex

	SendInBatches(context.Background(), WhatsApp, contacts, cfg, func(_ context.Context, c model.Contact) SendResult {
		n := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return SendResult{ContactID: c.ID, Success: true}
	})

	assert.LessOrEqual(t, peak, int64(10))
}

func TestSendInBatchesCancellationFailsRemainingContacts(t *testing.T) {
	contacts := makeContacts(20)
	cfg := BatchConfig{ChunkSize: 10, Pause: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	var sent int64

	go func() {
		// Cancel during the inter-chunk pause.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	results := SendInBatches(ctx, WhatsApp, contacts, cfg, func(_ context.Context, c model.Contact) SendResult {
		atomic.AddInt64(&sent, 1)
		return SendResult{ContactID: c.ID, Success: true}
	})

	require.Len(t, results, 20)
	assert.EqualValues(t, 10, atomic.LoadInt64(&sent))
	for _, res := range results[10:] {
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "context canceled")
		assert.Equal(t, WhatsApp, res.Provider)
	}
}
