package writequeue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsInOrder(t *testing.T) {
	q := New(nil, nil)
	defer q.Shutdown(context.Background())

	var mu sync.Mutex
	var got []int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		// Submit serially so FIFO order is observable.
		err := q.Submit(context.Background(), func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
			return nil
		})
		require.NoError(t, err)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 10)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestSubmitPropagatesError(t *testing.T) {
	q := New(nil, nil)
	defer q.Shutdown(context.Background())

	wantErr := assert.AnError
	err := q.Submit(context.Background(), func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestSubmitAfterShutdown(t *testing.T) {
	q := New(nil, nil)
	require.NoError(t, q.Shutdown(context.Background()))

	err := q.Submit(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.True(t, q.IsClosed())
}

func TestSubmitHonorsContextCancel(t *testing.T) {
	q := New(nil, nil)
	defer q.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	// Occupy the worker so the cancelled op waits in the queue.
	go q.Submit(context.Background(), func() error {
		<-block
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	err := q.Submit(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(block)
}
