package lotusrpc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport: the request could not be sent, no response arrived or
	// the status was not 2xx.
	KindTransport Kind = iota + 1
	// KindProtocol: the body is not JSON or not a JSON-RPC response object.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind     Kind
	Endpoint string
	Method   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("lotusrpc: %s error calling %s on %q: %v", e.Kind, e.Method, e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d", e.StatusCode)
}

func IsTransport(err error) bool { return isKind(err, KindTransport) }
func IsProtocol(err error) bool  { return isKind(err, KindProtocol) }

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
