package session

import "sync"

// Subscription delivers snapshots to a single observer in publish order. The
// first delivered snapshot is the one current at subscription time
// (replay-latest), followed by every subsequent change.
//
// Delivery is decoupled from publishing through an unbounded FIFO queue drained
// by a pump goroutine, so a slow observer never blocks the store or other
// observers.
type Subscription struct {
	mu    sync.Mutex
	queue []Snapshot

	wake      chan struct{}
	out       chan Snapshot
	done      chan struct{}
	closeOnce sync.Once

	cancel func(*Subscription)
}

func newSubscription(cancel func(*Subscription)) *Subscription {
	sub := &Subscription{
		wake:   make(chan struct{}, 1),
		out:    make(chan Snapshot),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go sub.pump()
	return sub
}

// Snapshots returns the delivery channel. It is closed after Close.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.out
}

// Close unsubscribes from the store and closes the delivery channel. Queued
// but undelivered snapshots are dropped.
func (s *Subscription) Close() {
	s.cancel(s)
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Subscription) enqueue(snap Snapshot) {
	s.mu.Lock()
	s.queue = append(s.queue, snap)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			next := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- next:
			case <-s.done:
				return
			}
		}
	}
}
