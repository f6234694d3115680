package tapesoup

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// NewLogger writes text to w and, when config.File is set, JSON lines to that
// file as well. The returned closer releases the file.
func NewLogger(config LogConfig, w io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			return nil, nil, fmt.Errorf("Failed to parse log level [%s]: %w", config.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{slog.NewTextHandler(w, opts)}
	var closer io.Closer = nopCloser{}
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("Failed to open log file [%s]: %w", config.File, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = f
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
