// Package httpclient provides the shared HTTP client used to talk to the
// analysis service.
//
// Callers MUST close response bodies, even on non-2xx status.
//
// The client itself carries no overall timeout. Analysis calls are bounded by
// the submission context so that cancelling a submission aborts the request;
// dial, TLS and header timeouts live on the transport.
package httpclient

import (
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	sharedTransport *http.Transport
	transportOnce   sync.Once

	defaultClient *http.Client
	clientOnce    sync.Once
)

func getSharedTransport() *http.Transport {
	transportOnce.Do(func() {
		sharedTransport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			// Model inference can take a while before the first byte.
			ResponseHeaderTimeout: 120 * time.Second,
		}
	})
	return sharedTransport
}

// Default returns the shared client. It has no Timeout; bound calls with a
// context.
func Default() *http.Client {
	clientOnce.Do(func() {
		defaultClient = &http.Client{Transport: getSharedTransport()}
	})
	return defaultClient
}

// WithTimeout returns a client sharing the pooled transport with an overall
// timeout, for short calls such as health checks.
func WithTimeout(d time.Duration) *http.Client {
	return &http.Client{Transport: getSharedTransport(), Timeout: d}
}
