package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	_, err := NewCatalog(nil)
	require.Error(t, err)

	_, err = NewCatalog([]Provider{{Name: "x"}})
	require.Error(t, err)

	_, err = NewCatalog([]Provider{{URL: "http://x"}})
	require.Error(t, err)

	_, err = NewCatalog([]Provider{{Name: "x", URL: "http://x"}, {Name: "x", URL: "http://y"}})
	require.Error(t, err)

	c, err := NewCatalog([]Provider{{Name: "x", URL: "http://x"}})
	require.NoError(t, err)
	p, ok := c.Lookup("x")
	require.True(t, ok)
	require.Equal(t, "x", p.Label)
}

func TestCatalogResolve(t *testing.T) {
	c, err := NewCatalog(DefaultProviders())
	require.NoError(t, err)
	require.Len(t, c.Providers(), 2)

	u, err := c.Resolve("calibnet")
	require.NoError(t, err)
	require.Equal(t, GlifCalibnet, u)

	u, err = c.Resolve(" mainnet\n")
	require.NoError(t, err)
	require.Equal(t, GlifMainnet, u)

	u, err = c.Resolve("http://127.0.0.1:1234/rpc/v1")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:1234/rpc/v1", u)

	_, err = c.Resolve("devnet")
	require.Error(t, err)
	_, err = c.Resolve("ftp://example.com")
	require.Error(t, err)
}

func TestCatalogSelect(t *testing.T) {
	c, err := NewCatalog(DefaultProviders())
	require.NoError(t, err)
	s := NewStore(GlifCalibnet)

	var notified []string
	s.Subscribe(func(v string) { notified = append(notified, v) })

	require.NoError(t, c.Select(s, "mainnet"))
	require.Equal(t, GlifMainnet, s.Get())
	require.Error(t, c.Select(s, "nope"))
	require.Equal(t, GlifMainnet, s.Get())
	require.Equal(t, []string{GlifMainnet}, notified)
}
