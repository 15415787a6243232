package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
)

// Init configures the global zerolog logger. Unknown levels fall back to
// info. pretty switches to human-readable console output.
func Init(level string, pretty bool) {
	InitWriter(os.Stdout, level, pretty)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string, pretty bool) {
	lvl := zerolog.InfoLevel
	if v := strings.TrimSpace(level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			lvl = parsed
		}
	}

	var out io.Writer = w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w}
	}

	mu.Lock()
	output = w
	mu.Unlock()

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Writer is the raw destination configured by Init, for components (the
// HTTP access log) that write their own structured records.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}
