package lotusrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Client posts JSON-RPC requests to whichever endpoint the caller names.
// It holds no endpoint of its own.
type Client struct {
	http *http.Client
	log  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: defaultTimeout},
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do performs a raw JSON-RPC call against endpoint. The returned error is
// always an *Error classifying the failure; a JSON-RPC error member is not
// a failure and is left on the Response.
func (c *Client) Do(ctx context.Context, endpoint string, r Request) (*Response, error) {
	fail := func(k Kind, err error) (*Response, error) {
		return nil, &Error{Kind: k, Endpoint: endpoint, Method: r.Method(), Err: err}
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fail(KindProtocol, errors.Wrap(err, "encode request"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(KindTransport, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(KindTransport, err)
	}
	defer resp.Body.Close()

	c.log.Debug("got response",
		zap.String("endpoint", endpoint),
		zap.String("method", r.Method()),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(KindTransport, &StatusError{StatusCode: resp.StatusCode})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(KindTransport, errors.Wrap(err, "read body"))
	}
	out, err := ParseResponse(resp.StatusCode, raw)
	if err != nil {
		return fail(KindProtocol, err)
	}
	return out, nil
}
