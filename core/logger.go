package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger used by this package.
//
// A nil *Logger is valid and discards everything, which is the default.
type Logger = logiface.Logger[logiface.Event]

var globalLogger struct {
	sync.RWMutex
	logger *Logger
}

// SetLogger installs the package-wide logger. Pass nil to disable logging.
func SetLogger(logger *Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = logger
}

// getLogger returns the package-wide logger, possibly nil.
func getLogger() *Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	return globalLogger.logger
}

// NewLogger builds a JSON logger writing to w (stderr if nil) at the given
// minimum level.
func NewLogger(w io.Writer, level logiface.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// rejectLogLimiter throttles "task rejected" warnings per executor.
// Rejections are always counted in metrics and stats.
var rejectLogLimiter = catrate.NewLimiter(map[time.Duration]int{
	time.Second: 10,
	time.Minute: 100,
})

// logRejected logs a rejected task at warning level. kind is the log key
// naming the executor ("worker" or "pool").
func logRejected(kind, name, reason string) {
	logger := getLogger()
	if logger == nil {
		return
	}
	if _, ok := rejectLogLimiter.Allow(kind + ":" + name); !ok {
		return
	}
	logger.Warning().
		Str(kind, name).
		Str("reason", reason).
		Log("task rejected")
}
