package engine

import (
	"context"

	"go.uber.org/atomic"

	"github.com/roach88/uisync/internal/state"
)

// Source delivers the stream of application state snapshots.
// The returned channel closes when the source is exhausted or ctx ends.
type Source interface {
	Subscribe(ctx context.Context) (<-chan state.Snapshot, error)
}

// Feed is an in-process source that state owners publish to.
// Publish never blocks; snapshots are buffered until the engine reads them.
// A Feed has exactly one subscriber.
type Feed struct {
	q          *queue[state.Snapshot]
	subscribed atomic.Bool
}

// NewFeed creates an open feed.
func NewFeed() *Feed {
	return &Feed{q: newQueue[state.Snapshot]()}
}

// Publish delivers a snapshot. Returns false once the feed is closed.
func (f *Feed) Publish(s state.Snapshot) bool {
	return f.q.Enqueue(s)
}

// Close ends the stream. Snapshots already published are still delivered.
func (f *Feed) Close() {
	f.q.Close()
}

// Subscribe starts delivering published snapshots.
func (f *Feed) Subscribe(ctx context.Context) (<-chan state.Snapshot, error) {
	if f.subscribed.Swap(true) {
		return nil, &RuntimeError{Code: ErrCodeAlreadySubscribed, Message: "feed has a subscriber"}
	}

	out := make(chan state.Snapshot)
	go func() {
		defer close(out)
		for {
			s, ok := f.q.TryDequeue()
			if ok {
				select {
				case out <- s:
					continue
				case <-ctx.Done():
					return
				}
			}
			if f.q.Drained() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-f.q.Wait():
			}
		}
	}()
	return out, nil
}

// SliceSource replays a fixed list of snapshots, then closes.
type SliceSource []state.Snapshot

// Subscribe delivers the snapshots in order.
func (s SliceSource) Subscribe(ctx context.Context) (<-chan state.Snapshot, error) {
	out := make(chan state.Snapshot)
	go func() {
		defer close(out)
		for _, snap := range s {
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
