package lotusrpc

import (
	"encoding/json"
)

const Version = "2.0"

// Filecoin methods queried by the explorer.
const (
	MethodStateNetworkName    = "Filecoin.StateNetworkName"
	MethodStateNetworkVersion = "Filecoin.StateNetworkVersion"
)

// Request describes one JSON-RPC call. It is immutable once built; Params
// hands out a copy.
type Request struct {
	method string
	params []any
	id     int
}

// NewRequest builds a request with id 0. A call with no params is sent as
// "params":[] rather than omitted.
func NewRequest(method string, params ...any) Request {
	return NewRequestWithID(0, method, params...)
}

func NewRequestWithID(id int, method string, params ...any) Request {
	p := make([]any, len(params))
	copy(p, params)
	return Request{method: method, params: p, id: id}
}

// StateNetworkName asks for the network name, e.g. "calibrationnet".
func StateNetworkName() Request {
	return NewRequest(MethodStateNetworkName)
}

// StateNetworkVersion asks for the network version at the heaviest tipset,
// passed as an empty tipset key.
func StateNetworkVersion() Request {
	return NewRequest(MethodStateNetworkVersion, []any{})
}

func (r Request) Method() string { return r.method }
func (r Request) ID() int        { return r.id }

func (r Request) Params() []any {
	p := make([]any, len(r.params))
	copy(p, r.params)
	return p
}

type rpcReq struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// MarshalJSON encodes the JSON-RPC 2.0 request object.
func (r Request) MarshalJSON() ([]byte, error) {
	params := r.params
	if params == nil {
		params = []any{}
	}
	return json.Marshal(rpcReq{
		JSONRPC: Version,
		Method:  r.method,
		Params:  params,
		ID:      r.id,
	})
}
