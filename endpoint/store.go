package endpoint

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/ChainSafe/forest-explorer/metrics"
)

// Store holds the currently selected RPC endpoint. The value is replaced
// wholesale, so readers never need the lock.
type Store struct {
	value atomic.String

	// setMu orders Set calls so subscribers see changes in issue order.
	setMu sync.Mutex

	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

type subscriber struct {
	id uint64
	fn func(string)
}

func NewStore(initial string) *Store {
	s := &Store{}
	s.value.Store(initial)
	return s
}

func (s *Store) Get() string {
	return s.value.Load()
}

// Set replaces the endpoint and runs every subscriber, in subscription
// order, before returning. Subscribers must not call Set themselves.
func (s *Store) Set(v string) {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	s.value.Store(v)
	metrics.EndpointChanged()

	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Subscribe registers fn for every later Set. It does not fire for the
// current value. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(string)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}
