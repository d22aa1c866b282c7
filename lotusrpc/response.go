package lotusrpc

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// RPCError is the JSON-RPC error member of a response.
type RPCError struct {
	Code    int64
	Message string
}

// Response is a well-formed JSON-RPC response body.
type Response struct {
	StatusCode int
	body       []byte
	root       gjson.Result
}

// ParseResponse checks that body is a JSON object. It does not look at
// result or error.
func ParseResponse(status int, body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response body is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errors.New("response body is not a JSON object")
	}
	return &Response{StatusCode: status, body: body, root: root}, nil
}

func (r *Response) Body() []byte { return r.body }

// Result returns the result member. It does not Exist when the server left
// it out.
func (r *Response) Result() gjson.Result {
	return r.root.Get("result")
}

// Error returns the error member, or nil.
func (r *Response) Error() *RPCError {
	e := r.root.Get("error")
	if !e.IsObject() {
		return nil
	}
	return &RPCError{Code: e.Get("code").Int(), Message: e.Get("message").String()}
}
