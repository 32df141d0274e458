// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"poker-platform/internal/config"
)

var (
	mu     sync.Mutex
	writer io.Writer = os.Stdout
)

// Init points the global logger at stdout, or at a rotating file when
// cfg.File is set. It returns a closer for the file.
func Init(cfg config.LogConfig) (func() error, error) {
	mu.Lock()
	defer mu.Unlock()

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := openRotatingFile(cfg.File, cfg.MaxMB)
		if err != nil {
			return closeFn, err
		}
		out = f
		closeFn = f.Close
	}
	writer = out
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000", NoColor: cfg.File != ""}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closeFn, nil
}

// Writer is the raw sink behind the global logger, for handlers that
// format their own records.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return writer
}
