// Package watcher reports edits to a column layout file so the panel can be
// rebuilt from the new definitions.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/colpanel/pkg/debug"
)

// DefaultPollInterval is used when fsnotify is unavailable or disabled.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("layout file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long the file must be quiet before a change
// is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback run after each debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback run on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll disables fsnotify.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one layout file. It watches the parent directory so that
// editors which save by renaming a temp file are still seen.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	mu        sync.RWMutex
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	started   bool
	cancel    context.CancelFunc
	lastMtime time.Time
	lastSize  int64

	changeCh chan struct{}
}

// New creates a watcher for path. It does nothing until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. COLPANEL_FORCE_POLL=1 forces polling mode.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.path)
	switch {
	case err == nil:
		w.lastMtime, w.lastSize = info.ModTime(), info.Size()
	case os.IsPermission(err):
		return ErrPermission
	default:
		// The file may be created later.
		w.lastMtime, w.lastSize = time.Time{}, 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.polling = w.forcePoll || envBool("COLPANEL_FORCE_POLL")

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(w.path))
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.watchEvents(ctx, fsw.Events, fsw.Errors)
		}
	}
	if w.polling {
		go w.watchPolling(ctx)
	}

	w.started = true
	return nil
}

// Stop ends watching. Changed is left open so a pending receive does not
// observe a spurious change.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher fell back to stat polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives after each debounced change. Changes that arrive while a
// previous signal is still unread are coalesced.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) watchEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.onError(ErrFileRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.debouncer.Trigger(w.notify)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		info, err := os.Stat(w.path)
		if err != nil {
			w.mu.Lock()
			existed := !w.lastMtime.IsZero()
			w.lastMtime, w.lastSize = time.Time{}, 0
			w.mu.Unlock()
			switch {
			case os.IsNotExist(err):
				if existed {
					w.onError(ErrFileRemoved)
				}
			case os.IsPermission(err):
				w.onError(ErrPermission)
			default:
				w.onError(err)
			}
			continue
		}

		w.mu.Lock()
		changed := !info.ModTime().Equal(w.lastMtime) || info.Size() != w.lastSize
		w.lastMtime, w.lastSize = info.ModTime(), info.Size()
		w.mu.Unlock()

		if changed {
			w.debouncer.Trigger(w.notify)
		}
	}
}

func (w *Watcher) notify() {
	if !w.IsStarted() {
		return
	}
	debug.Log("watcher: %s changed", w.path)
	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
