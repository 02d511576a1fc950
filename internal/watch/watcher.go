// Package watch feeds the scheduler from the input directory: an initial
// scan of files already present, then filesystem events for new arrivals.
// Files are only surfaced once their size has settled, so half-copied
// videos are never submitted.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/BigAddict/VideoEditor/internal/logging"
)

// videoExtensions are the container formats accepted from the input
// directory. Anything else is ignored without logging.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
}

// Settle polling: a file is stable once its size stops changing for
// settleQuiet, checked every settleInterval, bounded by settleTimeout.
const (
	settleInterval = 500 * time.Millisecond
	settleQuiet    = 2
	settleTimeout  = 5 * time.Minute
)

// IsVideoFile reports whether the path carries a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Watcher surfaces stable video files from one directory.
type Watcher struct {
	dir    string
	log    *logging.Logger
	submit func(path string) bool
}

// New builds a watcher over dir. submit is called once per stable file;
// its return value only matters to the scheduler's own dedupe.
func New(dir string, log *logging.Logger, submit func(path string) bool) *Watcher {
	return &Watcher{dir: dir, log: log, submit: submit}
}

// Run scans the directory for existing files, then watches for new ones
// until ctx is cancelled. Blocking; the caller runs it in a goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %q: %w", w.dir, err)
	}

	// Files already sitting in the directory at startup are work too.
	// Scanned after the watch is established so nothing lands between.
	if err := w.scanExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !IsVideoFile(ev.Name) {
				continue
			}
			// Settling runs detached so a slow copy does not stall
			// other arrivals. The scheduler absorbs the duplicate
			// submits that Create+Write pairs produce.
			go w.settleAndSubmit(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher: %v", err)
		}
	}
}

// scanExisting submits stable video files already present in the directory,
// in name order for predictable startup behavior.
func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %q: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsVideoFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		w.settleAndSubmit(ctx, filepath.Join(w.dir, name))
	}
	return nil
}

// settleAndSubmit waits for the file's size to stop changing, then submits
// it. A file that vanishes mid-settle (moved away, deleted) is dropped.
func (w *Watcher) settleAndSubmit(ctx context.Context, path string) {
	deadline := time.Now().Add(settleTimeout)
	var lastSize int64 = -1
	stable := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(settleInterval):
		}

		fi, err := os.Stat(path)
		if err != nil {
			return
		}
		if fi.Size() == lastSize {
			stable++
			if stable >= settleQuiet {
				break
			}
		} else {
			stable = 0
			lastSize = fi.Size()
		}
		if time.Now().After(deadline) {
			w.log.Warn("%s never settled, skipping", filepath.Base(path))
			return
		}
	}

	if lastSize == 0 {
		w.log.Warn("%s is empty, skipping", filepath.Base(path))
		return
	}
	w.submit(path)
}
