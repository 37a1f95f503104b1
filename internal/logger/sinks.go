package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// render wraps out in the writer for format. Files never get colors.
func render(format Format, out io.Writer, color bool) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatText:
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
			PartsOrder: []string{
				zerolog.TimestampFieldName,
				zerolog.LevelFieldName,
				"component",
				zerolog.MessageFieldName,
			},
			FieldsExclude: []string{"component"},
		}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !color}
	}
}

// runLogPath places the log file under runs/<run id>/ next to the configured file.
func runLogPath(opts Options) string {
	if opts.RunID == "" {
		return opts.FilePath
	}
	return filepath.Join(filepath.Dir(opts.FilePath), "runs", opts.RunID, filepath.Base(opts.FilePath))
}

// fileSink is a rotating file writer. If the run directory cannot be created it logs to the configured path.
func fileSink(opts Options) io.Writer {
	path := runLogPath(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		path = opts.FilePath
	}
	return render(opts.Format, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
	}, false)
}
