package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a file must stay quiet before it is re-rendered.
// Editors often write a file in several steps.
const watchDebounce = 100 * time.Millisecond

// watchFile calls fn once and then again after every settled change to path
// until ctx is done. The parent directory is watched so that editors which
// replace the file on save keep triggering events.
func watchFile(ctx context.Context, path string, fn func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	logger := loggerFromContext(ctx)
	if err := fn(); err != nil {
		printError("%v", err)
	}

	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()
	var pending time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			logger.Debug("scene changed", "path", path)
			if err := fn(); err != nil {
				printError("%v", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// watchRender renders input and re-renders it on every change.
func (c *CLI) watchRender(ctx context.Context, input string, opts *renderOpts) error {
	printInfo("Watching %s (ctrl+c to stop)", input)
	return watchFile(ctx, input, func() error {
		return c.runRender(ctx, input, opts)
	})
}
