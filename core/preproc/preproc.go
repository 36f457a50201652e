// Package preproc implements the preprocessing adapter (spec.md §4.5):
// the routing layer between an external, infinite stream of Beaver triples
// and Input rand-shares, and the per-party forwarding queues that a VM's
// Triple/Input instructions pull from. Triples are consumed FIFO; a
// RandShare tagged with owner id k is consumed LIFO among other RandShares
// tagged k (spec.md §9 "Input rand-share keying").
//
// Both queues are purpose-built slice-backed stores typed directly on
// share.Triple/share.RandShare, rather than routed through the teacher's
// generic core/buffer.Buffer/core/stack.Stack (those store an opaque
// Message/Element interface and gain nothing here beyond a second layer of
// type assertions); the blocking-Pop-with-notify-channel shape they model
// is still the teacher's, just against concrete domain types.
package preproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/republicprotocol/spdz/core/logging"
	"github.com/republicprotocol/spdz/core/share"
)

// DefaultTimeout bounds how long a VM will wait for a preprocessing item
// before giving up (spec.md §7 ChannelTimeout).
const DefaultTimeout = time.Second

// ErrQueueFull is returned when a Push would overflow a queue's fixed
// capacity: the external preprocessing supplier is producing faster than
// the VM consumes.
var ErrQueueFull = errors.New("preproc: queue is full")

// TripleQueue is a bounded FIFO of Beaver triples, safe for one producer
// and one consumer.
type TripleQueue struct {
	mu     sync.Mutex
	cap    int
	items  []share.Triple
	notify chan struct{}
}

// NewTripleQueue returns an empty TripleQueue with the given capacity.
func NewTripleQueue(cap int) *TripleQueue {
	return &TripleQueue{cap: cap, notify: make(chan struct{}, 1)}
}

// Push enqueues t, or returns ErrQueueFull if the queue has reached
// capacity.
func (q *TripleQueue) Push(t share.Triple) error {
	q.mu.Lock()
	full := len(q.items) >= q.cap
	if !full {
		q.items = append(q.items, t)
	}
	q.mu.Unlock()
	if full {
		logging.Errorf("preproc", "triple queue full at capacity %d", q.cap)
		return ErrQueueFull
	}
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop blocks until a triple is available or ctx ends.
func (q *TripleQueue) Pop(ctx context.Context) (share.Triple, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			t := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return t, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			logging.Errorf("preproc", "triple pop timed out: %v", ctx.Err())
			return share.Triple{}, fmt.Errorf("preproc: %w", ctx.Err())
		}
	}
}

// RandShareQueue buckets incoming rand-shares by owner id and serves each
// bucket LIFO, so that the most recently generated mask for a given owner
// is consumed first (spec.md §9).
type RandShareQueue struct {
	mu      sync.Mutex
	cap     int
	buckets map[int][]share.RandShare
	notify  map[int]chan struct{}
}

// NewRandShareQueue returns an empty RandShareQueue; each owner's bucket
// has the given capacity.
func NewRandShareQueue(cap int) *RandShareQueue {
	return &RandShareQueue{
		cap:     cap,
		buckets: make(map[int][]share.RandShare),
		notify:  make(map[int]chan struct{}),
	}
}

func (q *RandShareQueue) notifyChan(owner int) chan struct{} {
	ch, ok := q.notify[owner]
	if !ok {
		ch = make(chan struct{}, 1)
		q.notify[owner] = ch
	}
	return ch
}

// Push enqueues rs into its owner's bucket, or returns ErrQueueFull if that
// bucket has reached capacity.
func (q *RandShareQueue) Push(rs share.RandShare) error {
	q.mu.Lock()
	bucket := q.buckets[rs.PartyID]
	full := len(bucket) >= q.cap
	if !full {
		q.buckets[rs.PartyID] = append(bucket, rs)
	}
	notify := q.notifyChan(rs.PartyID)
	q.mu.Unlock()
	if full {
		logging.Errorf("preproc", "rand-share bucket for owner %d full at capacity %d", rs.PartyID, q.cap)
		return fmt.Errorf("%w: owner %d", ErrQueueFull, rs.PartyID)
	}
	select {
	case notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop blocks until a rand-share tagged owner is available or ctx ends.
func (q *RandShareQueue) Pop(ctx context.Context, owner int) (share.RandShare, error) {
	for {
		q.mu.Lock()
		bucket := q.buckets[owner]
		if len(bucket) > 0 {
			rs := bucket[len(bucket)-1]
			q.buckets[owner] = bucket[:len(bucket)-1]
			q.mu.Unlock()
			return rs, nil
		}
		notify := q.notifyChan(owner)
		q.mu.Unlock()

		select {
		case <-notify:
		case <-ctx.Done():
			logging.Errorf("preproc", "rand-share pop for owner %d timed out: %v", owner, ctx.Err())
			return share.RandShare{}, fmt.Errorf("preproc: %w waiting for rand-share owner %d", ctx.Err(), owner)
		}
	}
}

// Adapter implements vm.Preproc against a TripleQueue and a RandShareQueue,
// bounding every pull with Timeout (spec.md §4.5).
type Adapter struct {
	Triples    *TripleQueue
	RandShares *RandShareQueue
	Timeout    time.Duration
}

// NewAdapter constructs an Adapter with the given queues. Timeout defaults
// to DefaultTimeout.
func NewAdapter(triples *TripleQueue, randShares *RandShareQueue, timeout time.Duration) *Adapter {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{Triples: triples, RandShares: randShares, Timeout: timeout}
}

// NextTriple implements vm.Preproc.
func (a *Adapter) NextTriple() (share.Triple, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	return a.Triples.Pop(ctx)
}

// NextRandShare implements vm.Preproc.
func (a *Adapter) NextRandShare(owner int) (share.RandShare, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	return a.RandShares.Pop(ctx, owner)
}
