package lotusrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestMarshal(t *testing.T) {
	b, err := json.Marshal(StateNetworkName())
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","method":"Filecoin.StateNetworkName","params":[],"id":0}`, string(b))

	b, err = json.Marshal(StateNetworkVersion())
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","method":"Filecoin.StateNetworkVersion","params":[[]],"id":0}`, string(b))

	b, err = json.Marshal(NewRequestWithID(7, "Filecoin.ChainHead"))
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","method":"Filecoin.ChainHead","params":[],"id":7}`, string(b))

	var zero Request
	b, err = json.Marshal(zero)
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","method":"","params":[],"id":0}`, string(b))
}

func TestRequestImmutable(t *testing.T) {
	params := []any{"a"}
	r := NewRequest("m", params...)
	params[0] = "b"
	require.Equal(t, []any{"a"}, r.Params())

	p := r.Params()
	p[0] = "c"
	require.Equal(t, []any{"a"}, r.Params())
	require.Equal(t, "m", r.Method())
	require.Equal(t, 0, r.ID())
}
