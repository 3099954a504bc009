// Package shaderwatch reports edits to shader source files so the render
// loop can recompile them between frames.
package shaderwatch

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"

	"render-sandbox/core"
)

// Watcher collects changed files in the background. The render loop
// drains them with Pending, which never blocks.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	files   map[string]bool // cleaned absolute paths being watched
	dirs    map[string]bool
	pending map[string]bool

	changed chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New starts a watcher on files. Parent directories are watched instead
// of the files themselves so editors that save by rename are still seen.
func New(files ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	w := &Watcher{
		fsw:     fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		pending: make(map[string]bool),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, f := range files {
		if err := w.Add(f); err != nil {
			w.Close()
			return nil, err
		}
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add starts watching one more file.
func (w *Watcher) Add(file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("shader watcher: %w", err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("shader watcher: watch %q: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	log := core.Logger().With("component", "shaderwatch")
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.mark(filepath.Clean(event.Name)) {
				log.Debug("shader file changed", "path", event.Name, "op", event.Op.String())
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) mark(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[path] {
		return false
	}
	w.pending[path] = true
	select {
	case w.changed <- struct{}{}:
	default:
	}
	return true
}

// Changed is signalled after new paths become pending.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Pending returns and clears the changed files, sorted. Each file is
// reported once no matter how many events it produced.
func (w *Watcher) Pending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	clear(w.pending)
	slices.Sort(out)
	return out
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
