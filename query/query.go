package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ChainSafe/forest-explorer/lotusrpc"
	"github.com/ChainSafe/forest-explorer/metrics"
)

// Source is the upstream endpoint state a query derives from.
type Source interface {
	Get() string
	Subscribe(fn func(endpoint string)) (unsubscribe func())
}

// Fetcher performs one JSON-RPC round trip. *lotusrpc.Client satisfies it.
type Fetcher interface {
	Do(ctx context.Context, endpoint string, r lotusrpc.Request) (*lotusrpc.Response, error)
}

type options struct {
	name    string
	log     *zap.Logger
	timeout time.Duration
}

type Option func(*options)

// WithName labels logs and metrics. Defaults to the request method.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithTimeout bounds each fetch. A fetch that runs out of time fails like
// any other transport error.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Query re-fetches req every time its Source changes and keeps only the
// result of the most recently issued fetch.
type Query[T any] struct {
	name    string
	req     lotusrpc.Request
	extract lotusrpc.Extractor[T]
	fetcher Fetcher
	log     *zap.Logger
	timeout time.Duration

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	closeOnce   sync.Once
	inflight    sync.WaitGroup

	mu     sync.RWMutex
	state  State[T]
	issued uint64 // highest generation dispatched
	closed bool

	watchMu   sync.Mutex
	watchers  map[uint64]func(State[T])
	nextWatch uint64
	changed   chan struct{}
	done      chan struct{}
}

// Subscribe wires a query to src and immediately dispatches generation 0
// against the current endpoint.
func Subscribe[T any](src Source, req lotusrpc.Request, extract lotusrpc.Extractor[T], f Fetcher, opts ...Option) *Query[T] {
	o := options{name: req.Method(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Query[T]{
		name:     o.name,
		req:      req,
		extract:  extract,
		fetcher:  f,
		log:      o.log.With(zap.String("query", o.name)),
		timeout:  o.timeout,
		ctx:      ctx,
		cancel:   cancel,
		watchers: make(map[uint64]func(State[T])),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go q.notifyLoop()

	// Subscribe before reading the endpoint so a concurrent Set is either
	// seen by Get or delivered to react, which waits for mu.
	q.mu.Lock()
	q.unsubscribe = src.Subscribe(q.react)
	q.dispatchLocked(0, src.Get())
	q.mu.Unlock()
	q.signal()

	return q
}

func (q *Query[T]) Name() string { return q.name }

func (q *Query[T]) State() State[T] {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// Value returns the last applied result, if any.
func (q *Query[T]) Value() (T, bool) {
	s := q.State()
	return s.Value, s.HasValue
}

func (q *Query[T]) IsLoading() bool { return q.State().IsLoading() }
func (q *Query[T]) Failed() bool    { return q.State().Failed() }

func (q *Query[T]) react(endpoint string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.dispatchLocked(q.issued+1, endpoint)
	q.mu.Unlock()
	q.signal()
}

// dispatchLocked moves to Loading(gen) and starts the fetch. Superseded
// fetches keep running; apply drops their results.
func (q *Query[T]) dispatchLocked(gen uint64, endpoint string) {
	q.issued = gen
	q.state.Phase = Loading
	q.state.Generation = gen
	q.state.Err = nil

	q.log.Debug("dispatching fetch",
		zap.Uint64("generation", gen),
		zap.String("endpoint", endpoint))

	q.inflight.Add(1)
	metrics.FetchStarted(q.name)
	go q.fetch(gen, endpoint)
}

func (q *Query[T]) fetch(gen uint64, endpoint string) {
	defer q.inflight.Done()

	ctx := q.ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := q.fetcher.Do(ctx, endpoint, q.req)
	q.apply(gen, endpoint, q.resolve(gen, res, err), time.Since(start))
}

func (q *Query[T]) resolve(gen uint64, res *lotusrpc.Response, err error) State[T] {
	if err != nil {
		return State[T]{Phase: Failed, Generation: gen, Err: err}
	}
	if rpcErr := res.Error(); rpcErr != nil {
		q.log.Warn("rpc returned an error member",
			zap.Uint64("generation", gen),
			zap.Int64("code", rpcErr.Code),
			zap.String("message", rpcErr.Message))
	}
	v, ok := q.extract(res.Result())
	return State[T]{Phase: Ready, Generation: gen, Value: v, HasValue: ok}
}

func (q *Query[T]) apply(gen uint64, endpoint string, next State[T], took time.Duration) {
	q.mu.Lock()
	if q.closed || gen != q.issued {
		current := q.issued
		q.mu.Unlock()
		metrics.FetchFinished(q.name, metrics.OutcomeStale, took)
		q.log.Debug("discarding stale result",
			zap.Uint64("generation", gen),
			zap.Uint64("current", current))
		return
	}
	q.state = next
	q.mu.Unlock()

	switch {
	case next.Failed():
		metrics.FetchFinished(q.name, metrics.OutcomeFailed, took)
		q.log.Warn("fetch failed",
			zap.Uint64("generation", gen),
			zap.String("endpoint", endpoint),
			zap.Error(next.Err))
	case next.HasValue:
		metrics.FetchFinished(q.name, metrics.OutcomeReady, took)
		q.log.Debug("fetch ready", zap.Uint64("generation", gen), zap.Duration("took", took))
	default:
		metrics.FetchFinished(q.name, metrics.OutcomeEmpty, took)
		q.log.Debug("fetch ready without value", zap.Uint64("generation", gen))
	}
	q.signal()
}

// Close detaches the query from its source and aborts in-flight fetches.
// The last state stays readable.
func (q *Query[T]) Close() {
	q.closeOnce.Do(func() {
		q.unsubscribe()
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.cancel()
		q.inflight.Wait()
		close(q.done)
	})
}
