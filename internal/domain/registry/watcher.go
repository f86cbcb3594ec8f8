package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of editor writes into one reload
const DefaultDebounce = 250 * time.Millisecond

// Watcher re-seeds the registry when files under a catalog directory change.
// Live UI instances are not touched by a reload.
type Watcher struct {
	seeder   *Seeder
	root     string
	logger   *zap.Logger
	debounce time.Duration
	onReload func(SeedResult, error)
}

// NewWatcher creates a watcher for the catalog directory root
func NewWatcher(seeder *Seeder, root string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		seeder:   seeder,
		root:     root,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the quiet period before a reload
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// OnReload registers a callback invoked after every reload
func (w *Watcher) OnReload(fn func(SeedResult, error)) *Watcher {
	w.onReload = fn
	return w
}

// Run watches until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("Watching catalog", zap.String("root", w.root))

	var (
		timer   *time.Timer
		trigger = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fw, evt) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case trigger <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Catalog watcher error", zap.Error(err))

		case <-trigger:
			res, err := w.seeder.Seed(ctx, w.root)
			if err != nil {
				w.logger.Error("Catalog reload failed", zap.String("root", w.root), zap.Error(err))
			}
			if w.onReload != nil {
				w.onReload(res, err)
			}
		}
	}
}

// relevant filters events down to catalog files and watches new directories
func (w *Watcher) relevant(fw *fsnotify.Watcher, evt fsnotify.Event) bool {
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, evt.Name); err != nil {
				w.logger.Warn("Failed to watch directory", zap.String("path", evt.Name), zap.Error(err))
			}
			return true
		}
	}
	if evt.Op == fsnotify.Chmod {
		return false
	}
	return w.seeder.Matches(w.root, evt.Name) || filepath.Clean(evt.Name) == filepath.Clean(w.root)
}

// addTree watches dir and every directory below it; fsnotify is not recursive
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	var (
		mu   sync.Mutex
		dirs []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		mu.Lock()
		dirs = append(dirs, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	return nil
}
