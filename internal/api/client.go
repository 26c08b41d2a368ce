// Package api provides the shared outbound HTTP client.
//
// Every feed fetch and mutation dispatch goes through one pooled client so
// connections to the spreadsheet host are reused. The transport is wrapped
// with otelhttp so outbound calls carry trace context whenever a tracer
// provider has been installed.
package api

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	mu           sync.RWMutex
	sharedClient *http.Client
)

// init installs a client with default settings so packages work before
// Configure is called.
func init() {
	sharedClient = NewHTTPClient(30*time.Second, 20)
}

// GetHTTPClient returns the shared HTTP client instance.
//
// Usage:
//
//	client := api.GetHTTPClient()
//	resp, err := client.Do(req)
func GetHTTPClient() *http.Client {
	mu.RLock()
	defer mu.RUnlock()
	return sharedClient
}

// Configure replaces the shared client with one using the given settings.
func Configure(timeout time.Duration, maxConns int) {
	SetHTTPClient(NewHTTPClient(timeout, maxConns))
}

// NewHTTPClient creates a new HTTP client with connection pooling.
//
// Connection pool configuration:
//   - MaxIdleConns: maxConns across all hosts
//   - MaxIdleConnsPerHost: half of maxConns (at least 1); only two hosts are
//     ever contacted (the feed export host and the script host)
//   - IdleConnTimeout: 90 seconds
//
// Parameters:
//   - timeout: Maximum time for a complete request (including reading response)
//   - maxConns: Idle connection pool size
//
// Returns:
//   - *http.Client: Configured HTTP client
func NewHTTPClient(timeout time.Duration, maxConns int) *http.Client {
	if maxConns < 1 {
		maxConns = 1
	}
	perHost := maxConns / 2
	if perHost < 1 {
		perHost = 1
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxConns,
		MaxIdleConnsPerHost: perHost,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// SetHTTPClient allows overriding the shared client (useful for testing).
func SetHTTPClient(client *http.Client) {
	mu.Lock()
	defer mu.Unlock()
	sharedClient = client
}
