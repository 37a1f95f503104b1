package uploader

import (
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/httpclient"
	"github.com/rs/zerolog"
)

// UploaderBuilder provides a fluent interface for creating an Uploader
type UploaderBuilder struct {
	cfg       config.UploadConfig
	client    *httpclient.HTTPClient
	retryFunc func(*httpclient.RetryHandler) *httpclient.RetryHandler
	logger    zerolog.Logger
}

// NewUploaderBuilder creates a new builder with the default upload configuration
func NewUploaderBuilder(logger zerolog.Logger) *UploaderBuilder {
	return &UploaderBuilder{
		cfg:    config.NewDefaultUploadConfig(),
		logger: logger,
	}
}

// WithConfig sets the upload configuration
func (b *UploaderBuilder) WithConfig(cfg config.UploadConfig) *UploaderBuilder {
	b.cfg = cfg
	return b
}

// WithHTTPClient replaces the HTTP client built from the configuration
func (b *UploaderBuilder) WithHTTPClient(client *httpclient.HTTPClient) *UploaderBuilder {
	b.client = client
	return b
}

// WithRetryOptions adjusts the retry handler after it is created, e.g. to swap its timer
func (b *UploaderBuilder) WithRetryOptions(fn func(*httpclient.RetryHandler) *httpclient.RetryHandler) *UploaderBuilder {
	b.retryFunc = fn
	return b
}

// Build creates a new Uploader
func (b *UploaderBuilder) Build() (*Uploader, error) {
	if b.cfg.APIURL == "" {
		return nil, common.NewValidationError("api_url", b.cfg.APIURL, "upload API URL is required")
	}
	if b.cfg.MaxRetries < 0 {
		return nil, common.NewValidationError("max_retries", b.cfg.MaxRetries, "must be zero or more")
	}

	logger := b.logger.With().Str("component", "Uploader").Logger()

	client := b.client
	if client == nil {
		connect := b.cfg.ConnectTimeout()
		if connect <= 0 {
			connect = time.Duration(config.DefaultUploadConnectTimeout) * time.Second
		}
		read := b.cfg.ReadTimeout()
		if read <= 0 {
			read = time.Duration(config.DefaultUploadReadTimeout) * time.Second
		}

		var err error
		client, err = httpclient.NewHTTPClientBuilder(logger).
			WithConnectTimeout(connect).
			WithReadTimeout(read).
			WithUserAgent(b.cfg.UserAgent).
			WithInsecureSkipVerify(b.cfg.InsecureSkipVerify).
			WithHTTP2(b.cfg.EnableHTTP2).
			Build()
		if err != nil {
			return nil, common.WrapError(err, "failed to create upload HTTP client")
		}
	}

	retry := httpclient.NewRetryHandler(httpclient.RetryHandlerConfig{
		MaxRetries: b.cfg.MaxRetries,
		BaseDelay:  b.cfg.RetryDelay(),
		MaxJitter:  b.cfg.MaxJitter(),
	}, logger)
	if b.retryFunc != nil {
		retry = b.retryFunc(retry)
	}

	bodyLimit := b.cfg.ErrorBodyLimit
	if bodyLimit <= 0 {
		bodyLimit = config.DefaultUploadErrorBodyLimit
	}

	return &Uploader{
		apiURL:    b.cfg.APIURL,
		bodyLimit: bodyLimit,
		client:    client,
		retry:     retry,
		logger:    logger,
	}, nil
}
