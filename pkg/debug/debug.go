// Package debug provides conditional debug logging and the warning sink used
// for non-fatal diagnostics.
//
// Debug output is enabled by setting COLPANEL_DEBUG:
//
//	COLPANEL_DEBUG=1 colpanel --columns layout.json
//
// Debug messages go to stderr with timestamps. When disabled every Log call is
// a no-op. Warnings are always emitted.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[COLPANEL_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger

	warnOut io.Writer = os.Stderr
	warnFn  func(msg string)
)

func init() {
	if os.Getenv("COLPANEL_DEBUG") != "" {
		SetEnabled(true)
	}
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled turns debug logging on or off.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug logging to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

func current() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a printf-style debug message.
func Log(format string, args ...any) {
	if l := current(); l != nil {
		l.Printf(format, args...)
	}
}

// LogTiming logs how long name took.
func LogTiming(name string, d time.Duration) {
	if l := current(); l != nil {
		l.Printf("%s took %v", name, d)
	}
}

// LogEnterExit logs entry now and exit with the elapsed time when the
// returned function runs.
//
//	defer debug.LogEnterExit("rebuild")()
func LogEnterExit(name string) func() {
	l := current()
	if l == nil {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		l.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Warnf reports a non-fatal diagnostic. It goes to the installed warning
// handler, or to stderr when none is set. Debug logging also records it.
func Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Log("warning: %s", msg)

	mu.Lock()
	fn, w := warnFn, warnOut
	mu.Unlock()
	if fn != nil {
		fn(msg)
		return
	}
	if w != nil {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

// SetWarningHandler installs fn as the warning sink and returns a function
// restoring the previous one. The TUI uses it to show warnings in its status
// line instead of writing to a terminal it owns.
func SetWarningHandler(fn func(msg string)) (restore func()) {
	mu.Lock()
	prev := warnFn
	warnFn = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		warnFn = prev
		mu.Unlock()
	}
}
