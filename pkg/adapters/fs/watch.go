package fs

import (
	"context"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quill/pkg/core"
)

// DebounceWindow coalesces bursts of writes to the same post.
const DebounceWindow = 50 * time.Millisecond

// Watch streams change events for posts whose ID matches pattern. An empty
// pattern matches every post. The channel is closed once ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := r.recursiveAdd(watcher, r.Path); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event)
	d := newDebouncer(DebounceWindow)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer d.stopAndWait(5 * time.Second)
		defer watcher.Close()
		defer r.setWatcherActive(false)
		return r.watchLoop(ctx, watcher, pattern, d, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(fmt.Errorf("watcher failed: %w", err))
			return
		}
		r.config.Logger.Error("watcher failed", "error", err)
	}))

	return events, nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, d *debouncer, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			r.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

			// New directories have to be watched explicitly.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := r.recursiveAdd(watcher, event.Name); err != nil {
					r.config.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}

			e, ok := r.translate(event, pattern)
			if !ok {
				continue
			}
			d.add(e, func(e core.Event) {
				// The channel may be closed if shutdown outlived the drain timeout.
				defer func() { _ = recover() }()
				r.recordEvent()
				select {
				case events <- e:
				case <-ctx.Done():
				}
			})

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			r.config.Logger.Error("fsnotify error", "error", wErr)
			if r.config.ErrorHandler != nil {
				r.config.ErrorHandler(wErr)
			}
		}
	}
}

// translate maps a filesystem event to a post event. Hidden paths, temp
// files and non-post files are ignored.
func (r *Repository) translate(event fsnotify.Event, pattern string) (core.Event, bool) {
	name := filepath.Base(event.Name)
	if filepath.Ext(name) != Ext || isTempFile(name) || strings.HasPrefix(name, ".") {
		return core.Event{}, false
	}

	id, err := r.resolveID(event.Name)
	if err != nil {
		r.config.Logger.Debug("resolveID failed", "path", event.Name, "err", err)
		return core.Event{}, false
	}
	for _, part := range strings.Split(id, "/") {
		if strings.HasPrefix(part, ".") {
			return core.Event{}, false
		}
	}
	if pattern != "" {
		if ok, _ := doublestar.Match(pattern, id); !ok {
			return core.Event{}, false
		}
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	return core.Event{Type: t, ID: id, Timestamp: time.Now().Unix()}, true
}

func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != r.Path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// debouncer delays delivery per post ID so a burst of writes yields one
// event. A CREATE followed by writes within the window stays a CREATE.
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pendingEvent
	wg      sync.WaitGroup
	stopped bool
}

type pendingEvent struct {
	event core.Event
	timer *time.Timer
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, pending: make(map[string]*pendingEvent)}
}

func (d *debouncer) add(e core.Event, deliver func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if p, ok := d.pending[e.ID]; ok {
		if p.timer.Stop() {
			if p.event.Type == core.EventCreate && e.Type == core.EventModify {
				e.Type = core.EventCreate
			}
			p.event = e
			p.timer.Reset(d.window)
			return
		}
		// Timer already fired; its callback owns the old entry.
	}

	p := &pendingEvent{event: e}
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		ev := p.event
		if d.pending[ev.ID] == p {
			delete(d.pending, ev.ID)
		}
		d.mu.Unlock()
		deliver(ev)
	})
	d.pending[e.ID] = p
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, p := range d.pending {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, id)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
