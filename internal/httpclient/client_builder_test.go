package httpclient

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientBuilder(t *testing.T) {
	logger := zerolog.Nop()
	builder := NewHTTPClientBuilder(logger)

	client, err := builder.
		WithConnectTimeout(3 * time.Second).
		WithReadTimeout(15 * time.Second).
		WithUserAgent("test-agent").
		WithInsecureSkipVerify(true).
		WithHeader("X-Source", "pricefeed").
		WithHTTP2(false).
		Build()

	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, 3*time.Second, client.Config().ConnectTimeout)
	assert.Equal(t, 15*time.Second, client.Config().ReadTimeout)
	assert.Equal(t, "test-agent", client.Config().UserAgent)
	assert.True(t, client.Config().InsecureSkipVerify)
	assert.False(t, client.Config().EnableHTTP2)
	assert.Equal(t, "pricefeed", client.Config().CustomHeaders["X-Source"])
}

func TestHTTPClientBuilder_DefaultValues(t *testing.T) {
	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithUserAgent("").Build()
	require.NoError(t, err)

	defaults := DefaultHTTPClientConfig()
	assert.Equal(t, defaults.ConnectTimeout, client.Config().ConnectTimeout)
	assert.Equal(t, defaults.ReadTimeout, client.Config().ReadTimeout)
	assert.Equal(t, defaults.UserAgent, client.Config().UserAgent)
	assert.False(t, client.Config().InsecureSkipVerify)
}

func TestHTTPClientBuilder_RejectsZeroTimeouts(t *testing.T) {
	_, err := NewHTTPClientBuilder(zerolog.Nop()).WithConnectTimeout(0).Build()
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "ConnectTimeout", vErr.Field)

	_, err = NewHTTPClientBuilder(zerolog.Nop()).WithReadTimeout(0).Build()
	require.Error(t, err)
}
