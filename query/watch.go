package query

import (
	"context"
)

// Watch calls fn from the query's notifier goroutine whenever the state
// changes, starting with the current state. Bursts are coalesced: fn always
// sees the latest state but may miss intermediate ones. fn must not block
// for long. The returned func stops delivery.
func (q *Query[T]) Watch(fn func(State[T])) (cancel func()) {
	q.watchMu.Lock()
	id := q.nextWatch
	q.nextWatch++
	q.watchers[id] = fn
	q.watchMu.Unlock()
	q.signal()

	return func() {
		q.watchMu.Lock()
		delete(q.watchers, id)
		q.watchMu.Unlock()
	}
}

// Await blocks until the current generation is applied (Ready or Failed)
// or ctx is done.
func (q *Query[T]) Await(ctx context.Context) (State[T], error) {
	if s := q.State(); s.Settled() {
		return s, nil
	}
	ch := make(chan State[T], 1)
	stop := q.Watch(func(s State[T]) {
		if !s.Settled() {
			return
		}
		select {
		case ch <- s:
		default:
		}
	})
	defer stop()

	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return q.State(), ctx.Err()
	}
}

func (q *Query[T]) signal() {
	select {
	case q.changed <- struct{}{}:
	default:
	}
}

func (q *Query[T]) notifyLoop() {
	for {
		select {
		case <-q.done:
			return
		case <-q.changed:
		}

		s := q.State()
		q.watchMu.Lock()
		fns := make([]func(State[T]), 0, len(q.watchers))
		for _, fn := range q.watchers {
			fns = append(fns, fn)
		}
		q.watchMu.Unlock()

		for _, fn := range fns {
			fn(s)
		}
	}
}
