// Package events provides an ordered, non-blocking observer used by the
// client to fan out session, lifecycle, lock-state and realtime changes.
//
// Every Stream owns one dispatcher goroutine. Publish appends to an
// unbounded FIFO and returns immediately; listeners are called one at a
// time, in subscription order, with events in publish order.
package events

import (
	"sync"
	"sync/atomic"
)

// Subscription cancels a listener registration.
type Subscription interface {
	Unsubscribe()
}

type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }

type listener[T any] struct {
	id     uint64
	fn     func(T)
	active atomic.Bool
}

type item[T any] struct {
	v   T
	ack chan struct{}
}

type Stream[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []item[T]
	listeners []*listener[T]
	nextID    uint64
	closed    bool
	done      chan struct{}
}

func NewStream[T any]() *Stream[T] {
	s := &Stream[T]{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.dispatch()
	return s
}

// Subscribe registers fn. Events published after Subscribe returns are
// delivered to fn until the subscription is cancelled.
func (s *Stream[T]) Subscribe(fn func(T)) Subscription {
	l := &listener[T]{fn: fn}
	l.active.Store(true)

	s.mu.Lock()
	s.nextID++
	l.id = s.nextID
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(func() { s.remove(l) })
	})
}

func (s *Stream[T]) remove(l *listener[T]) {
	l.active.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.listeners {
		if cur.id == l.id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Publish enqueues v. It never blocks; events published after Close are
// dropped.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, item[T]{v: v})
	s.cond.Signal()
}

// Flush blocks until every event published before the call has been
// delivered. It must not be called from a listener.
func (s *Stream[T]) Flush() {
	ack := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.queue = append(s.queue, item[T]{ack: ack})
	s.cond.Signal()
	s.mu.Unlock()

	<-ack
}

// Close stops accepting events. Already queued events are still delivered;
// Done is closed once the dispatcher exits.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cond.Signal()
}

func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Stream[T]) dispatch() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		it := s.queue[0]
		s.queue[0] = item[T]{}
		s.queue = s.queue[1:]
		listeners := append([]*listener[T](nil), s.listeners...)
		s.mu.Unlock()

		if it.ack != nil {
			close(it.ack)
			continue
		}
		for _, l := range listeners {
			if l.active.Load() {
				l.fn(it.v)
			}
		}
	}
}
