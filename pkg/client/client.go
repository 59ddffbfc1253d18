package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/replicate/pfetch/pkg/logging"
	"github.com/replicate/pfetch/pkg/version"
)

const maxRedirects = 10

// HTTPClient is the HTTP capability consumed by the downloader. Implementations must follow redirects
// and return the response with an unconsumed body so callers can stream it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	// Maximum number of concurrent connections to a single host. Zero means unlimited.
	MaxConnPerHost int
	// Timeout for establishing a TCP connection. Zero means the dialer default.
	ConnectTimeout time.Duration
	// ResolveOverrides maps host:port to ip:port, bypassing DNS for the listed hosts
	// without affecting the Host header or TLS server name.
	ResolveOverrides map[string]string
}

// Client wraps http.Client with a pooled transport, a User-Agent and redirect logging.
type Client struct {
	*http.Client
}

var _ HTTPClient = &Client{}

type UserAgentTransport struct {
	Transport http.RoundTripper
}

func (t *UserAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	return t.Transport.RoundTrip(req)
}

// NewHTTPClient returns a client suitable for many concurrent range requests against one host.
func NewHTTPClient(opts Options) *Client {
	transport := cleanhttp.DefaultPooledTransport()
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if opts.ConnectTimeout > 0 {
		dialer.Timeout = opts.ConnectTimeout
	}
	transport.DialContext = transportDialContext(dialer, opts.ResolveOverrides)
	if opts.MaxConnPerHost > 0 {
		transport.MaxConnsPerHost = opts.MaxConnPerHost
	}
	// Range responses are already compressed or opaque; transparent gzip would break offsets.
	transport.DisableCompression = true

	return &Client{
		Client: &http.Client{
			Transport:     &UserAgentTransport{Transport: transport},
			CheckRedirect: checkRedirectFunc,
		},
	}
}

// checkRedirectFunc logs each hop and enforces the redirect limit.
func checkRedirectFunc(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	logger := logging.FromContext(req.Context())
	event := logger.Trace().
		Str("redirect_url", req.URL.String()).
		Str("url", via[0].URL.String())
	if req.Response != nil {
		event = event.Int("status", req.Response.StatusCode)
	}
	event.Msg("Redirect")
	return nil
}

// transportDialContext is a wrapper around net.Dialer that allows for overriding DNS lookups via the values passed to
// `--resolve` argument.
func transportDialContext(dialer *net.Dialer, overrides map[string]string) func(context.Context, string, string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if addrOverride := overrides[addr]; addrOverride != "" {
			logger := logging.FromContext(ctx)
			logger.Debug().Str("addr", addr).Str("override", addrOverride).Msg("DNS Override")
			addr = addrOverride
		}
		return dialer.DialContext(ctx, network, addr)
	}
}
