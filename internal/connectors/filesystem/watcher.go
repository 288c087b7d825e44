// Package filesystem watches a directory tree for media file changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher closed")

// ChangeType classifies a file change.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is one media file change.
type Change struct {
	Type ChangeType
	Path string
	Kind domain.Kind
}

// Watcher reports media file changes under a root directory.
type Watcher struct {
	root       string
	extensions domain.ExtensionMap
	debounce   time.Duration

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle interval. Zero emits each event on its own.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithExtensions overrides the extension to kind mapping.
func WithExtensions(m domain.ExtensionMap) Option {
	return func(w *Watcher) {
		if len(m) > 0 {
			w.extensions = m
		}
	}
}

// New creates a watcher for root.
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{
		root:       root,
		extensions: domain.DefaultExtensionMap(),
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching and returns a channel of change batches ordered by
// path. The channel closes when ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan []Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.addTree(fw, w.root); err != nil {
		fw.Close()
		return nil, err
	}
	w.watcher = fw

	out := make(chan []Change)
	go w.loop(ctx, fw, out)
	return out, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- []Change) {
	defer close(out)
	defer fw.Close()

	pending := make(map[string]Change)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() bool {
		if len(pending) == 0 {
			return true
		}
		batch := make([]Change, 0, len(pending))
		for _, c := range pending {
			batch = append(batch, c)
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		clear(pending)
		select {
		case out <- batch:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				w.addNewDir(fw, ev.Name, pending)
			}
			changes := w.handleFsEvent(ev)
			if len(changes) == 0 {
				continue
			}
			for _, c := range changes {
				pending[c.Path] = merge(pending[c.Path], c)
			}
			if w.debounce == 0 {
				if !flush() {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if !flush() {
				return
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// merge keeps "created" for a file that is written again before the flush.
func merge(prev, next Change) Change {
	if prev.Type == ChangeCreated && next.Type == ChangeUpdated {
		return prev
	}
	return next
}

// handleFsEvent converts an fsnotify event into media changes. A sidecar
// event becomes an update of the media files sharing its stem. Irrelevant
// events yield nil.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) []Change {
	if w.hidden(ev.Name) {
		return nil
	}
	ext := filepath.Ext(ev.Name)
	kind := w.extensions.KindFor(ext)
	if kind == domain.KindUnknown {
		if _, ok := domain.SidecarTypeFor(ext); ok && contentEvent(ev) {
			return w.sidecarOwners(ev.Name)
		}
		return nil
	}

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		return []Change{{Type: ChangeDeleted, Path: ev.Name, Kind: kind}}
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		typ := ChangeUpdated
		if ev.Has(fsnotify.Create) {
			typ = ChangeCreated
		}
		return []Change{{Type: typ, Path: ev.Name, Kind: kind}}
	default:
		return nil
	}
}

func contentEvent(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// sidecarOwners returns an update for every media file next to sidecar
// with the same stem.
func (w *Watcher) sidecarOwners(sidecar string) []Change {
	dir := filepath.Dir(sidecar)
	stem := strings.TrimSuffix(filepath.Base(sidecar), filepath.Ext(sidecar))
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Debug("sidecar %s: %v", sidecar, err)
		return nil
	}
	var out []Change
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if !e.Type().IsRegular() || strings.TrimSuffix(name, ext) != stem {
			continue
		}
		kind := w.extensions.KindFor(ext)
		if kind == domain.KindUnknown {
			continue
		}
		p := filepath.Join(dir, name)
		if w.hidden(p) {
			continue
		}
		out = append(out, Change{Type: ChangeUpdated, Path: p, Kind: kind})
	}
	return out
}

// addNewDir watches a directory created after start and queues the media
// files already inside it.
func (w *Watcher) addNewDir(fw *fsnotify.Watcher, path string, pending map[string]Change) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.hidden(path) {
		return
	}
	if err := w.addTree(fw, path); err != nil {
		logger.Warn("watch %s: %v", path, err)
		return
	}
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || w.hidden(p) {
			return nil
		}
		if kind := w.extensions.KindFor(filepath.Ext(p)); kind != domain.KindUnknown {
			pending[p] = Change{Type: ChangeCreated, Path: p, Kind: kind}
		}
		return nil
	})
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// hidden applies isHidden below the root only.
func (w *Watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
