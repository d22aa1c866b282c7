package explorer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ChainSafe/forest-explorer/endpoint"
	"github.com/ChainSafe/forest-explorer/lotusrpc"
	"github.com/ChainSafe/forest-explorer/query"
)

// Query names, used as render keys and metric labels.
const (
	NetworkNameQuery    = "StateNetworkName"
	NetworkVersionQuery = "StateNetworkVersion"
)

type Config struct {
	Providers []endpoint.Provider
	// DefaultProvider is a provider name or URL. Empty picks the first
	// provider.
	DefaultProvider string
	// RequestTimeout bounds each fetch; zero leaves only the client timeout.
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Providers:       endpoint.DefaultProviders(),
		DefaultProvider: "calibnet",
		RequestTimeout:  15 * time.Second,
	}
}

// Explorer wires the network name and version queries to one endpoint store.
type Explorer struct {
	catalog *endpoint.Catalog
	store   *endpoint.Store
	log     *zap.Logger

	NetworkName    *query.Query[string]
	NetworkVersion *query.Query[uint64]
}

func New(cfg Config, f query.Fetcher, logger *zap.Logger) (*Explorer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog, err := endpoint.NewCatalog(cfg.Providers)
	if err != nil {
		return nil, err
	}

	initial := cfg.DefaultProvider
	if initial == "" {
		initial = catalog.Providers()[0].Name
	}
	url, err := catalog.Resolve(initial)
	if err != nil {
		return nil, errors.Wrap(err, "default provider")
	}

	e := &Explorer{
		catalog: catalog,
		store:   endpoint.NewStore(url),
		log:     logger,
	}
	opts := func(name string) []query.Option {
		return []query.Option{
			query.WithName(name),
			query.WithLogger(logger),
			query.WithTimeout(cfg.RequestTimeout),
		}
	}
	e.NetworkName = query.Subscribe(e.store, lotusrpc.StateNetworkName(), lotusrpc.AsString, f,
		opts(NetworkNameQuery)...)
	e.NetworkVersion = query.Subscribe(e.store, lotusrpc.StateNetworkVersion(), lotusrpc.AsUint64, f,
		opts(NetworkVersionQuery)...)

	logger.Info("explorer started", zap.String("endpoint", url))
	return e, nil
}

func (e *Explorer) Catalog() *endpoint.Catalog { return e.catalog }
func (e *Explorer) Endpoint() string           { return e.store.Get() }

// Select switches both queries to a provider name or URL.
func (e *Explorer) Select(nameOrURL string) error {
	if err := e.catalog.Select(e.store, nameOrURL); err != nil {
		return err
	}
	e.log.Info("endpoint selected", zap.String("endpoint", e.store.Get()))
	return nil
}

type Snapshot struct {
	Endpoint       string
	NetworkName    query.State[string]
	NetworkVersion query.State[uint64]
}

func (e *Explorer) Snapshot() Snapshot {
	return Snapshot{
		Endpoint:       e.store.Get(),
		NetworkName:    e.NetworkName.State(),
		NetworkVersion: e.NetworkVersion.State(),
	}
}

// Await waits for both queries to settle on their current generation.
func (e *Explorer) Await(ctx context.Context) (Snapshot, error) {
	if _, err := e.NetworkName.Await(ctx); err != nil {
		return e.Snapshot(), err
	}
	if _, err := e.NetworkVersion.Await(ctx); err != nil {
		return e.Snapshot(), err
	}
	return e.Snapshot(), nil
}

// Renderer draws one query's facets. It is called from each query's
// notifier goroutine, so implementations must be safe for concurrent use.
type Renderer interface {
	Render(name string, f query.Facets)
}

// Bind streams both queries to r until the returned func is called.
func (e *Explorer) Bind(r Renderer) (unbind func()) {
	stopName := e.NetworkName.Watch(func(s query.State[string]) {
		r.Render(NetworkNameQuery, s.Facets())
	})
	stopVersion := e.NetworkVersion.Watch(func(s query.State[uint64]) {
		r.Render(NetworkVersionQuery, s.Facets())
	})
	return func() {
		stopName()
		stopVersion()
	}
}

func (e *Explorer) Close() {
	e.NetworkName.Close()
	e.NetworkVersion.Close()
}
