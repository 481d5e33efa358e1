package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/natefinch/lumberjack"
)

// Prefix marks every human-readable log line.
const Prefix = "🧊 "

// Options configures a pipeline logger.
type Options struct {
	Name   string
	Level  string
	JSON   bool
	Output io.Writer
}

// NewLogger creates an hclog logger with UTC timestamps. Human-readable
// output is prefixed line by line; JSON output is left untouched.
func NewLogger(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	level, jsonFormat := ParseLevel(opts.Level)
	jsonFormat = jsonFormat || opts.JSON

	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      level,
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ParseLevel accepts "info", "debug", ... and the "json:<level>" shorthand
// that also switches to JSON output. Unknown levels fall back to info.
func ParseLevel(s string) (hclog.Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	jsonFormat := false
	if rest, ok := strings.CutPrefix(s, "json"); ok {
		jsonFormat = true
		s = strings.TrimPrefix(rest, ":")
	}

	level := hclog.LevelFromString(s)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return level, jsonFormat
}

// Rotation limits for log files.
const (
	MaxLogSizeMB  = 20
	MaxLogBackups = 3
)

// OpenOutput returns a rotating writer for path. An empty path means stderr.
func OpenOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	l := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxLogSizeMB, // megabytes
		MaxBackups: MaxLogBackups,
	}
	return l, l.Close, nil
}
