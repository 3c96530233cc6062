package scenario

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a scenario file must be quiet before it is
// reported as changed. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Watcher is a lifecycle worker reporting scenario files that were created
// or written. Each changed path is sent on the channel given to NewWatcher.
type Watcher struct {
	*worker.BaseWorker
	patterns  []string
	changes   chan<- string
	logger    *slog.Logger
	delay     time.Duration
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

// NewWatcher returns a Watcher for the files selected by patterns.
func NewWatcher(patterns []string, changes chan<- string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		BaseWorker: worker.NewBaseWorker("scenario-watcher"),
		patterns:   patterns,
		changes:    changes,
		logger:     logger,
		delay:      DefaultDebounce,
	}
}

// Start adds the pattern base directories to the notifier and launches the
// event loop.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.addDirs(watcher); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.delay)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *Watcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"patterns":          strings.Join(w.patterns, ","),
		}
	})
}

// addDirs watches the literal base directory of every pattern, and every
// directory below it when the pattern recurses.
func (w *Watcher) addDirs(watcher *fsnotify.Watcher) error {
	for _, p := range w.patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(p))
		dir := filepath.FromSlash(base)
		if rest == "" || !strings.ContainsAny(rest, "*?[{") {
			// A plain file name: watch its directory.
			dir = filepath.Dir(filepath.FromSlash(p))
		}
		if dir == "" {
			dir = "."
		}

		if !strings.Contains(rest, "**") {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.watcher.Close()

	err = w.loop(ctx)

	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *Watcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	w.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New directories under a recursive pattern must be watched too.
			_ = w.watcher.Add(event.Name)
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !Matches(event.Name, w.patterns) {
		return
	}

	w.debouncer.add(filepath.Clean(event.Name), func(path string) {
		select {
		case w.changes <- path:
		case <-ctx.Done():
		}
	})
}
