package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	cfg := NewDefaultFileLogConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "pricefeed.log")

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info().Msg("hello")
}

func TestLoggerBuilder_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{LogFormat: "json", LogLevel: "debug"}).
		WithConsoleOutput(&buf).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Debug().Str("component", "Watcher").Msg("poll")
	assert.Contains(t, buf.String(), `"component":"Watcher"`)
	assert.Contains(t, buf.String(), `"message":"poll"`)
	assert.Equal(t, zerolog.DebugLevel, l.Options().Level)
}

func TestLoggerBuilder_RunIDSubdirectory(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{LogFile: filepath.Join(dir, "pricefeed.log"), LogFormat: "json"}).
		WithRunID("run-42").
		WithConsoleOutput(&buf).
		Build()
	require.NoError(t, err)

	l.GetZerolog().Info().Msg("started")

	data, err := os.ReadFile(filepath.Join(dir, "runs", "run-42", "pricefeed.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-42"`)
}

func TestLoggerBuilder_InvalidLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLoggerBuilder().
		WithConfig(FileLogConfig{LogLevel: "chatty", LogFormat: "json"}).
		WithConsoleOutput(&buf).
		Build()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, l.Options().Level)
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestLoggerBuilder_RunIDBeforeConfig(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLoggerBuilder().
		WithRunID("run-7").
		WithConfig(FileLogConfig{LogFile: filepath.Join(dir, "pricefeed.log"), LogFormat: "text", MaxLogSizeMB: 5}).
		WithConsoleOutput(&bytes.Buffer{}).
		Build()
	require.NoError(t, err)

	opts := l.Options()
	assert.Equal(t, "run-7", opts.RunID)
	assert.Equal(t, FormatText, opts.Format)
	assert.Equal(t, 5, opts.MaxSizeMB)
	assert.Equal(t, DefaultMaxLogBackups, opts.MaxBackups)
	assert.Equal(t, filepath.Join(dir, "runs", "run-7", "pricefeed.log"), runLogPath(opts))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, parseFormat("JSON"))
	assert.Equal(t, FormatText, parseFormat("text"))
	assert.Equal(t, FormatConsole, parseFormat("whatever"))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	level, err = parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = parseLevel("chatty")
	assert.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}

func TestValidLevelAndFormat(t *testing.T) {
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("Debug"))
	assert.False(t, ValidLevel("chatty"))
	assert.True(t, ValidFormat(""))
	assert.True(t, ValidFormat("TEXT"))
	assert.False(t, ValidFormat("xml"))
}
