package queue

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryQueueDeliversToSubscriber(t *testing.T) {
	q := NewInMemoryQueue(zap.NewNop())

	got := make(chan []byte, 1)
	require.NoError(t, q.Subscribe("jobs", func(payload []byte) error {
		got <- payload
		return nil
	}))

	require.NoError(t, q.Publish("jobs", []byte(`{"id":1}`)))

	select {
	case payload := <-got:
		assert.JSONEq(t, `{"id":1}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("payload was not delivered")
	}
}

func TestInMemoryQueueNoSubscribers(t *testing.T) {
	q := NewInMemoryQueue(zap.NewNop())

	err := q.Publish("nobody-home", []byte("hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subscribers")
}

func TestInMemoryQueueRetriesFailedHandler(t *testing.T) {
	q := NewInMemoryQueue(zap.NewNop())

	var attempts int64
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("jobs", func(payload []byte) error {
		if atomic.AddInt64(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))

	require.NoError(t, q.Publish("jobs", []byte("job")))

	select {
	case <-done:
		assert.EqualValues(t, 3, atomic.LoadInt64(&attempts))
	case <-time.After(5 * time.Second):
		t.Fatal("handler never succeeded")
	}
}

func TestInMemoryQueueFansOut(t *testing.T) {
	q := NewInMemoryQueue(zap.NewNop())

	var delivered int64
	done := make(chan struct{}, 2)
	handler := func(payload []byte) error {
		atomic.AddInt64(&delivered, 1)
		done <- struct{}{}
		return nil
	}
	require.NoError(t, q.Subscribe("jobs", handler))
	require.NoError(t, q.Subscribe("jobs", handler))

	require.NoError(t, q.Publish("jobs", []byte("job")))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("not every subscriber got the job")
		}
	}
	assert.EqualValues(t, 2, atomic.LoadInt64(&delivered))
}
