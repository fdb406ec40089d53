package reconcile

import (
	"context"

	"github.com/roach88/uisync/internal/state"
)

// Sequencer turns a stream of snapshots into (previous, current) pairs.
//
// The first snapshot only primes the sequencer. Every later snapshot yields
// exactly one pair, even if nothing changed; no-op pairs are the
// reconcilers' job to ignore. A Sequencer is not safe for concurrent use
// and cannot be rewound.
type Sequencer struct {
	prev   state.Snapshot
	primed bool
	seq    int64
}

// NewSequencer creates an unprimed sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Observe records s and returns the pair it completes.
// Returns false for the very first snapshot.
func (q *Sequencer) Observe(s state.Snapshot) (state.Pair, bool) {
	if !q.primed {
		q.prev = s
		q.primed = true
		return state.Pair{}, false
	}
	q.seq++
	pair := state.Pair{Seq: q.seq, Prev: q.prev, Curr: s}
	q.prev = s
	return pair, true
}

// Pairs adapts a snapshot channel into a pair channel.
// The returned channel closes when in closes or ctx is cancelled.
func Pairs(ctx context.Context, in <-chan state.Snapshot) <-chan state.Pair {
	out := make(chan state.Pair)
	go func() {
		defer close(out)
		seq := NewSequencer()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-in:
				if !ok {
					return
				}
				pair, ok := seq.Observe(s)
				if !ok {
					continue
				}
				select {
				case out <- pair:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
