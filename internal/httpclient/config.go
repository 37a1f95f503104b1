package httpclient

import (
	"time"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	ConnectTimeout      time.Duration     // Dial and TLS handshake timeout
	ReadTimeout         time.Duration     // Time allowed for response headers, then again for the body
	InsecureSkipVerify  bool              // Skip TLS verification
	CustomHeaders       map[string]string // Custom headers to add to all requests
	UserAgent           string            // User-Agent header
	MaxIdleConns        int               // Maximum idle connections
	MaxIdleConnsPerHost int               // Maximum idle connections per host
	IdleConnTimeout     time.Duration     // Idle connection timeout
	KeepAlive           time.Duration     // Keep-alive duration
	EnableHTTP2         bool              // Enable HTTP/2 support (default: true)
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		ConnectTimeout:      10 * time.Second,
		ReadTimeout:         180 * time.Second,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		KeepAlive:           30 * time.Second,
		EnableHTTP2:         true,
		CustomHeaders: map[string]string{
			"Accept": "application/json",
		},
	}
}
