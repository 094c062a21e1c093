package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macropower/standing/pkg/log"
)

// Writes from editors often arrive as a burst of events.
const watchDebounce = 100 * time.Millisecond

var errWatchStdin = errors.New("cannot watch stdin")

// watch calls fn once, then again after any of paths changes, until ctx is
// done. Errors from fn are logged, not returned, so a bad edit does not end
// the session.
func watch(ctx context.Context, paths []string, fn func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() {
		err := watcher.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	watched := map[string]bool{}
	dirs := map[string]bool{}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("get absolute path: %w", err)
		}

		watched[abs] = true

		// Watch the directory so renames by editors are seen.
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}

		err = watcher.Add(dir)
		if err != nil {
			return fmt.Errorf("add path to watcher: %w", err)
		}

		dirs[dir] = true
	}

	logger := log.WithContext(ctx)
	logger.DebugContext(ctx, "added file watchers", slog.Any("paths", paths))

	runFn := func() {
		err := fn(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "render", slog.Any("error", err))
		}
	}

	runFn()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			abs, err := filepath.Abs(evt.Name)
			if err != nil || !watched[abs] {
				continue
			}

			// Ignore events that are not related to file content changes.
			if evt.Has(fsnotify.Chmod) {
				continue
			}

			logger.DebugContext(ctx, "file changed", slog.String("event", evt.String()))
			timer.Reset(watchDebounce)

		case <-timer.C:
			runFn()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorContext(ctx, "watch", slog.Any("error", err))
		}
	}
}
