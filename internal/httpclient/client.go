package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// HTTPClient wraps net/http.Client with separate connect and read timeouts.
type HTTPClient struct {
	client     *http.Client
	config     HTTPClientConfig
	logger     zerolog.Logger
	bufferPool sync.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	if config.ConnectTimeout <= 0 {
		return nil, NewValidationError("ConnectTimeout", config.ConnectTimeout, "must be positive")
	}
	if config.ReadTimeout <= 0 {
		return nil, NewValidationError("ReadTimeout", config.ReadTimeout, "must be positive")
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ReadTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.ConnectTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	// Configure HTTP/2 support
	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		} else {
			logger.Debug().Msg("HTTP/2 support enabled")
		}
	}

	logger.Debug().
		Dur("connect_timeout", config.ConnectTimeout).
		Dur("read_timeout", config.ReadTimeout).
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: &http.Client{Transport: transport},
		config: config,
		logger: logger,
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32*1024)
				return &b
			},
		},
	}, nil
}

// Config returns the client's configuration.
func (c *HTTPClient) Config() HTTPClientConfig {
	return c.config
}

// Do sends req and reads the whole response body.
// The read timeout applies to the response headers and then again to the body.
// Transport failures come back as *NetworkError.
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*Response, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	req = req.WithContext(reqCtx)

	for key, value := range c.config.CustomHeaders {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	url := req.URL.String()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, NewNetworkError(url, "request failed", err)
	}
	defer resp.Body.Close()

	timer := time.AfterFunc(c.config.ReadTimeout, cancel)
	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	_, err = io.Copy(buf, resp.Body)
	timedOut := !timer.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if timedOut {
			err = ErrReadTimeout
		}
		return nil, NewNetworkError(url, "failed to read response body", err)
	}

	body := make([]byte, buf.Len())
	copy(body, buf.Bytes())

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// isContextCanceled reports whether err stems from a cancelled request context.
func isContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
