// Package watch turns file system events under definition roots into
// debounced recompilation requests.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before changes are delivered
const DefaultDebounce = 100 * time.Millisecond

// ChangeFunc handles a batch of changed files
type ChangeFunc func(ctx context.Context, files []string) error

// Options configures a Watcher
type Options struct {
	// Filter selects the files that trigger a change. Nil accepts all.
	Filter   func(path string) bool
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher monitors definition directories and reports changes in batches
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	dirs      []string
	filter    func(string) bool
	onChange  ChangeFunc
	logger    *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher over dirs. Directories that do not exist
// are skipped when the watcher starts.
func NewWatcher(dirs []string, onChange ChangeFunc, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	w := &Watcher{
		watcher:   fsw,
		debouncer: NewDebouncer(opts.Debounce),
		dirs:      append([]string(nil), dirs...),
		filter:    opts.Filter,
		onChange:  onChange,
		logger:    opts.Logger,
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.debouncer.SetCallback(func(files []string) {
		w.logger.Info("definitions changed", zap.Strings("files", files))
		if err := w.onChange(w.ctx, files); err != nil {
			w.logger.Error("failed to handle definition changes", zap.Error(err))
		}
	})

	return w, nil
}

// Start adds the watched directories and begins delivering events
func (w *Watcher) Start() error {
	for _, dir := range w.dirs {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.watch()

	return nil
}

// Stop stops the watcher. Pending changes are dropped.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		w.wg.Wait()
		w.debouncer.Stop()
		err = w.watcher.Close()
	})
	return err
}

// watch is the main event loop
func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if isHidden(event.Name) {
		return
	}

	// section directories created after start join the watch list
	if event.Has(fsnotify.Create) && w.isWatchedDir(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if w.filter != nil && !w.filter(event.Name) {
		return
	}

	w.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
	w.debouncer.Add(event.Name)
}

func (w *Watcher) isWatchedDir(path string) bool {
	clean := filepath.Clean(path)
	for _, dir := range w.dirs {
		if filepath.Clean(dir) == clean {
			return true
		}
	}
	return false
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a changed file and restarts the quiet period
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush delivers accumulated files, sorted, outside the lock
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if d.stopped || len(d.files) == 0 {
		d.mutex.Unlock()
		return
	}

	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	sort.Strings(files)
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels any pending delivery
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
