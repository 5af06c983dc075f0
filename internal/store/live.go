package store

import (
	"context"
	"sync"

	"github.com/mmcdole/backlog/internal/domain"
)

// listener is a registered live view.
type listener interface {
	matches(g domain.Game) bool
	publish(games map[int64]domain.Game)
	stop()
}

// subscription renders its result from the memory mirror and queues it on feed.
type subscription[T any] struct {
	match  func(domain.Game) bool
	render func(games map[int64]domain.Game) T
	feed   *feed[T]
}

func (s *subscription[T]) matches(g domain.Game) bool { return s.match(g) }

func (s *subscription[T]) publish(games map[int64]domain.Game) {
	s.feed.push(s.render(games))
}

func (s *subscription[T]) stop() { s.feed.stop() }

// subscribe registers sub, queues its initial result and starts delivery.
func subscribe[T any](ctx context.Context, s *GameStore, sub *subscription[T]) <-chan T {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(sub.feed.out)
		return sub.feed.out
	}
	sub.publish(s.games)
	s.subs[sub] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		sub.feed.run(ctx)
		s.unsubscribe(sub)
	}()
	return sub.feed.out
}

func (s *GameStore) unsubscribe(l listener) {
	s.mu.Lock()
	delete(s.subs, l)
	s.mu.Unlock()
	l.stop()
}

// notify republishes every view that any of the changed rows (before or
// after the mutation) belongs to. Caller holds s.mu for writing, so each
// view sees the mutations in commit order.
func (s *GameStore) notify(changed ...domain.Game) {
	for l := range s.subs {
		for _, g := range changed {
			if l.matches(g) {
				l.publish(s.games)
				break
			}
		}
	}
}

// feed is an unbounded FIFO between the writer and one consumer channel.
// push never blocks, so a slow consumer cannot stall writes.
type feed[T any] struct {
	mu    sync.Mutex
	queue []T
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
	out   chan T
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan T),
	}
}

func (f *feed[T]) push(v T) {
	f.mu.Lock()
	f.queue = append(f.queue, v)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *feed[T]) stop() {
	f.once.Do(func() { close(f.done) })
}

// run delivers queued values in order until ctx is done or the feed stops.
func (f *feed[T]) run(ctx context.Context) {
	defer close(f.out)

	for {
		f.mu.Lock()
		if len(f.queue) == 0 {
			f.mu.Unlock()
			select {
			case <-f.wake:
				continue
			case <-ctx.Done():
				return
			case <-f.done:
				return
			}
		}
		var zero T
		v := f.queue[0]
		f.queue[0] = zero
		f.queue = f.queue[1:]
		f.mu.Unlock()

		select {
		case f.out <- v:
		case <-ctx.Done():
			return
		case <-f.done:
			return
		}
	}
}
