package config

import "time"

// UploadConfig defines the price list upload endpoint and its retry policy
type UploadConfig struct {
	APIURL             string `json:"api_url,omitempty" yaml:"api_url,omitempty" validate:"omitempty,url"`
	MaxRetries         int    `json:"max_retries" yaml:"max_retries" validate:"min=0,max=10"`
	RetryDelayMs       int    `json:"retry_delay_ms,omitempty" yaml:"retry_delay_ms,omitempty" validate:"omitempty,min=0"`
	MaxJitterMs        int    `json:"max_jitter_ms,omitempty" yaml:"max_jitter_ms,omitempty" validate:"omitempty,min=0"`
	ConnectTimeoutSecs int    `json:"connect_timeout_secs,omitempty" yaml:"connect_timeout_secs,omitempty" validate:"omitempty,min=1"`
	ReadTimeoutSecs    int    `json:"read_timeout_secs,omitempty" yaml:"read_timeout_secs,omitempty" validate:"omitempty,min=1"`
	ErrorBodyLimit     int    `json:"error_body_limit,omitempty" yaml:"error_body_limit,omitempty" validate:"omitempty,min=1"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	EnableHTTP2        bool   `json:"enable_http2" yaml:"enable_http2"`
}

// NewDefaultUploadConfig creates default upload configuration
func NewDefaultUploadConfig() UploadConfig {
	return UploadConfig{
		MaxRetries:         DefaultUploadMaxRetries,
		RetryDelayMs:       DefaultUploadRetryDelayMs,
		MaxJitterMs:        DefaultUploadMaxJitterMs,
		ConnectTimeoutSecs: DefaultUploadConnectTimeout,
		ReadTimeoutSecs:    DefaultUploadReadTimeout,
		ErrorBodyLimit:     DefaultUploadErrorBodyLimit,
		UserAgent:          DefaultUploadUserAgent,
		EnableHTTP2:        true,
	}
}

func (c UploadConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c UploadConfig) MaxJitter() time.Duration {
	return time.Duration(c.MaxJitterMs) * time.Millisecond
}

func (c UploadConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecs) * time.Second
}

func (c UploadConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}
