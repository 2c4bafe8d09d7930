// Package network builds the HTTP client every request to the origin goes through.
package network

import (
	"net/http"
	"time"
)

// Options configure the client shared by probes and fetches.
type Options struct {
	// UserAgent is sent with every request unless Headers overrides it.
	UserAgent string
	// Headers are added to every request.
	Headers map[string]string
	// TLSFingerprint routes https requests through a browser-like TLS handshake.
	TLSFingerprint bool
}

// NewClient returns a client configured with opts.
// It sets no overall timeout: each request is bounded by its own context.
func NewClient(opts Options) *http.Client {
	var base http.RoundTripper = newTransport()
	if opts.TLSFingerprint {
		base = &fingerprintTransport{plain: base}
	}

	headers := make(http.Header, len(opts.Headers)+1)
	if opts.UserAgent != "" {
		headers.Set("User-Agent", opts.UserAgent)
	}
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	return &http.Client{
		Transport: &HeaderTransport{Base: base, Headers: headers},
	}
}

// newTransport initializes a tuned http.Transport.
// Requests are serialized, so a small idle pool is enough.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 4
	t.MaxIdleConnsPerHost = 2
	t.IdleConnTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

// HeaderTransport sets fixed headers on every outgoing request.
type HeaderTransport struct {
	Base    http.RoundTripper
	Headers http.Header
}

// RoundTrip implements http.RoundTripper.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, values := range t.Headers {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
