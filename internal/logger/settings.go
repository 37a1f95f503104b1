package logger

import (
	"strings"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/rs/zerolog"
)

const (
	DefaultLogFile       = "logs/pricefeed.log"
	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultMaxLogBackups = 3
	DefaultMaxLogSizeMB  = 100
)

// FileLogConfig is the log_config section of the pipeline configuration file.
type FileLogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" validate:"omitempty,min=0"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultFileLogConfig() FileLogConfig {
	return FileLogConfig{
		LogFile:       DefaultLogFile,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}

// Format selects how records are rendered.
type Format int

const (
	FormatConsole Format = iota
	FormatJSON
	// FormatText is the console layout without colors, with the component before the message.
	FormatText
)

var formatNames = map[string]Format{
	"console": FormatConsole,
	"json":    FormatJSON,
	"text":    FormatText,
}

func (f Format) String() string {
	for name, v := range formatNames {
		if v == f {
			return name
		}
	}
	return "console"
}

// ValidFormat reports whether name is empty or a known format.
func ValidFormat(name string) bool {
	if name == "" {
		return true
	}
	_, ok := formatNames[strings.ToLower(name)]
	return ok
}

// ValidLevel reports whether name is empty or a level zerolog understands.
func ValidLevel(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	return err == nil && level != zerolog.NoLevel
}

func parseFormat(name string) Format {
	if f, ok := formatNames[strings.ToLower(name)]; ok {
		return f
	}
	return FormatConsole
}

// parseLevel returns info for an empty or unknown level; the error reports the unknown case.
func parseLevel(name string) (zerolog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, common.NewValidationError("log_level", name, "unknown log level")
	}
	return level, nil
}

// Options is the resolved logger setup for one process.
type Options struct {
	Level      zerolog.Level
	Format     Format
	Console    bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	// RunID tags every record and moves the log file under runs/<RunID>/.
	RunID string
}

func defaultOptions() Options {
	return Options{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		Console:    true,
		MaxSizeMB:  DefaultMaxLogSizeMB,
		MaxBackups: DefaultMaxLogBackups,
	}
}

// options resolves the file section. Unknown levels still produce usable options.
func (c FileLogConfig) options() (Options, error) {
	opts := defaultOptions()
	level, err := parseLevel(c.LogLevel)
	opts.Level = level
	opts.Format = parseFormat(c.LogFormat)
	opts.FilePath = c.LogFile
	if c.MaxLogSizeMB > 0 {
		opts.MaxSizeMB = c.MaxLogSizeMB
	}
	if c.MaxLogBackups > 0 {
		opts.MaxBackups = c.MaxLogBackups
	}
	return opts, err
}
