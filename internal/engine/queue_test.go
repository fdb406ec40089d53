package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue[int]()
	for i := 1; i <= 3; i++ {
		require.True(t, q.Enqueue(i))
	}
	assert.Equal(t, 3, q.Len())

	for want := 1; want <= 3; want++ {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestQueue_CloseDrains(t *testing.T) {
	q := newQueue[string]()
	q.Enqueue("a")
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue("b"), "enqueue after close should fail")
	assert.False(t, q.Drained(), "queued items survive close")

	got, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "a", got)
	assert.True(t, q.Drained())

	select {
	case <-q.Wait():
	default:
		t.Fatal("wait channel should be closed after Close")
	}
}

func TestQueue_WaitSignals(t *testing.T) {
	q := newQueue[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(7)
	}()

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("no signal after enqueue")
	}
	got, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newQueue[int]()
	const producers, each = 10, 100

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.Enqueue(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, producers*each, q.Len())
}
