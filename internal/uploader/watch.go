package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ragchat/internal/logging"
	"ragchat/internal/widget"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a new file must stay unchanged before upload.
const DefaultSettle = 300 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Settle time.Duration
	// OnReady is called once the directory is being watched.
	OnReady func()
}

// partialSuffixes mark files that are still being written by another tool.
var partialSuffixes = []string{"~", ".tmp", ".part", ".crdownload", ".swp"}

// Watch turns dir into a drop folder: every regular file created in (or
// moved into) it is uploaded once, after it settles. Files present before
// the call are left alone, even when written to. Uploads share the
// Uploader's concurrency limit. Watch blocks until ctx is done and returns
// nil in that case; in-flight uploads are cancelled and waited for.
func (u *Uploader) Watch(ctx context.Context, dir string, opts WatchOptions) error {
	log := logging.Get(logging.CategoryWatch)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat drop folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("drop folder %s is not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := opts.Settle
	if d <= 0 {
		d = DefaultSettle
	}
	settle := newSettler(d)
	defer settle.Close()

	ready := make(chan string)
	// created holds paths that appeared after the watch started; only those
	// are candidates, so writes to pre-existing files are ignored.
	created := make(map[string]bool)
	seen := make(map[string]bool)

	log.Info("watching %s (settle=%v)", dir, d)
	if opts.OnReady != nil {
		opts.OnReady()
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped watching %s", dir)
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				created[ev.Name] = true
			} else if !ev.Has(fsnotify.Write) || !created[ev.Name] {
				continue
			}
			if !eligible(ev.Name) || seen[ev.Name] {
				continue
			}
			path := ev.Name
			settle.Touch(path, func() {
				select {
				case ready <- path:
				case <-wctx.Done():
				}
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error on %s: %v", dir, err)

		case path := <-ready:
			if seen[path] {
				continue
			}
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			seen[path] = true
			log.Debug("settled %s", path)

			wg.Add(1)
			go func() {
				defer wg.Done()
				u.Submit(wctx, widget.LocalFile(path))
			}()
		}
	}
}

func eligible(path string) bool {
	name := filepath.Base(path)
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}
