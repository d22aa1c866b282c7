package explorer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"github.com/ChainSafe/forest-explorer/endpoint"
	"github.com/ChainSafe/forest-explorer/lotusrpc"
	"github.com/ChainSafe/forest-explorer/query"
)

// lotusServer answers the two explorer methods with fixed values.
func lotusServer(t *testing.T, name string, version int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		switch gjson.GetBytes(b, "method").String() {
		case lotusrpc.MethodStateNetworkName:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":"` + name + `","id":0}`))
		case lotusrpc.MethodStateNetworkVersion:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":` + strconv.Itoa(version) + `,"id":0}`))
		default:
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"method not found"},"id":0}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(urls ...string) Config {
	cfg := Config{RequestTimeout: time.Second}
	for i, u := range urls {
		cfg.Providers = append(cfg.Providers, endpoint.Provider{Name: "p" + string(rune('1'+i)), URL: u})
	}
	return cfg
}

func newTestExplorer(t *testing.T, cfg Config) *Explorer {
	t.Helper()
	e, err := New(cfg, lotusrpc.New(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func awaitAll(t *testing.T, e *Explorer) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := e.Await(ctx)
	require.NoError(t, err)
	return s
}

func TestExplorerFetchesBoth(t *testing.T) {
	calib := lotusServer(t, "calibrationnet", 21)
	e := newTestExplorer(t, testConfig(calib.URL))
	require.Equal(t, calib.URL, e.Endpoint())

	s := awaitAll(t, e)
	require.Equal(t, calib.URL, s.Endpoint)
	require.Equal(t, "calibrationnet", s.NetworkName.Value)
	require.True(t, s.NetworkName.HasValue)
	require.Equal(t, uint64(21), s.NetworkVersion.Value)
	require.True(t, s.NetworkVersion.HasValue)
}

func TestExplorerSelect(t *testing.T) {
	calib := lotusServer(t, "calibrationnet", 21)
	mainnet := lotusServer(t, "mainnet", 22)
	e := newTestExplorer(t, testConfig(calib.URL, mainnet.URL))
	awaitAll(t, e)

	require.NoError(t, e.Select("p2"))
	require.True(t, e.NetworkName.IsLoading())
	require.True(t, e.NetworkVersion.IsLoading())

	s := awaitAll(t, e)
	require.Equal(t, mainnet.URL, s.Endpoint)
	require.Equal(t, "mainnet", s.NetworkName.Value)
	require.Equal(t, uint64(22), s.NetworkVersion.Value)
	require.Equal(t, uint64(1), s.NetworkName.Generation)
	require.Equal(t, uint64(1), s.NetworkVersion.Generation)

	require.Error(t, e.Select("nope"))
	require.Equal(t, mainnet.URL, e.Endpoint())
}

func TestExplorerFailedEndpoint(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(down.Close)
	e := newTestExplorer(t, testConfig(down.URL))

	s := awaitAll(t, e)
	require.True(t, s.NetworkName.Failed())
	require.True(t, s.NetworkVersion.Failed())
	require.False(t, s.NetworkName.HasValue)
}

func TestNewConfigErrors(t *testing.T) {
	_, err := New(Config{}, lotusrpc.New(), nil)
	require.Error(t, err)

	cfg := testConfig("http://127.0.0.1:1")
	cfg.DefaultProvider = "missing"
	_, err = New(cfg, lotusrpc.New(), nil)
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Len(t, cfg.Providers, 2)
	require.Equal(t, "calibnet", cfg.DefaultProvider)
}

type recordingRenderer struct {
	mu   sync.Mutex
	last map[string]query.Facets
}

func (r *recordingRenderer) Render(name string, f query.Facets) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		r.last = make(map[string]query.Facets)
	}
	r.last[name] = f
}

func (r *recordingRenderer) get(name string) query.Facets {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last[name]
}

func TestExplorerBind(t *testing.T) {
	calib := lotusServer(t, "calibrationnet", 21)
	e := newTestExplorer(t, testConfig(calib.URL))

	r := &recordingRenderer{}
	unbind := e.Bind(r)
	defer unbind()

	require.Eventually(t, func() bool {
		return r.get(NetworkNameQuery).Value == "calibrationnet" &&
			r.get(NetworkVersionQuery).Value == uint64(21)
	}, 2*time.Second, 5*time.Millisecond)
	require.False(t, r.get(NetworkNameQuery).Loading)
}
