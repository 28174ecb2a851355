package typewriter

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// logState is one installed logger and the component loggers derived from
// it. SetLogger swaps the whole state, so derived loggers never outlive the
// base they were built from.
type logState struct {
	base *slog.Logger

	mu         sync.Mutex
	components map[string]*slog.Logger
}

func newLogState(l *slog.Logger) *logState {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &logState{base: l, components: make(map[string]*slog.Logger)}
}

func (s *logState) component(name string) *slog.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.components[name]
	if !ok {
		l = s.base.With("component", name)
		s.components[name] = l
	}
	return l
}

var logs atomic.Pointer[logState]

func init() {
	logs.Store(newLogState(nil))
}

// SetLogger installs l for typewriter and its sub-packages. Nothing is
// logged until it is called. Pass nil to discard output again.
//
// Levels:
//   - [slog.LevelDebug]: atlas builds, cache clears, page paints, grain pages
//   - [slog.LevelInfo]: font loaded, worker started
//   - [slog.LevelWarn]: failed builds, recovered stage panics, skipped paints
//
// Records from sub-packages carry a "component" attribute naming the
// package (atlas, page, grain, effect, stage).
//
//	typewriter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logs.Store(newLogState(l))
}

// Logger returns the installed logger.
func Logger() *slog.Logger {
	return logs.Load().base
}

// LoggerFor returns the installed logger tagged with component. The
// result is memoized until the next SetLogger.
func LoggerFor(component string) *slog.Logger {
	return logs.Load().component(component)
}
