package prefabs

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions selects what a Watcher reports.
type WatchOptions struct {
	Dirs []string
	// Extensions filters changed files by extension, including the dot.
	// Empty reports prefab specs and scripts.
	Extensions []string
	// Debounce drops repeated events for one file inside the window.
	Debounce time.Duration
}

// DefaultExtensions are the file kinds the engine reloads.
var DefaultExtensions = []string{".yaml", ".yml", ".tengo"}

type Watcher struct {
	watcher  *fsnotify.Watcher
	Events   chan string
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
	done     sync.WaitGroup
	exts     []string
	debounce time.Duration
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	return Watch(WatchOptions{Dirs: dirs})
}

// Watch starts watching opts.Dirs. Missing directories are an error.
func Watch(opts WatchOptions) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range opts.Dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	watcher := &Watcher{
		watcher:  w,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		exts:     exts,
		debounce: debounce,
	}
	watcher.done.Add(1)
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.done.Wait()
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// Drain returns the files changed since the last call without blocking.
// Each file is reported once.
func (w *Watcher) Drain() []string {
	var changed []string
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return changed
			}
			if !slices.Contains(changed, name) {
				changed = append(changed, name)
			}
		default:
			return changed
		}
	}
}

// DrainErrors returns a pending watcher error, or nil.
func (w *Watcher) DrainErrors() error {
	select {
	case err := <-w.Errors:
		return err
	default:
		return nil
	}
}

func (w *Watcher) run() {
	defer w.done.Done()
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) matches(path string) bool {
	return hasExtension(path, w.exts)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(exts, ext)
}

func IsSpecFile(path string) bool {
	return hasExtension(path, []string{".yaml", ".yml"})
}

func IsScriptFile(path string) bool {
	return hasExtension(path, []string{".tengo"})
}
