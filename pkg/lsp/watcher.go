package lsp

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/scriptls/scriptls/pkg/sources"
)

// DiskWatcher keeps the document store in sync with on-disk changes to files
// that are not open in an editor. Editor overlays always win: a watched
// change to a file with a live editor version is ignored.
type DiskWatcher struct {
	dispatcher *DiskWatcherTarget
	watcher    *fsnotify.Watcher
}

// DiskWatcherTarget is the slice of the dispatcher the watcher needs.
type DiskWatcherTarget struct {
	Docs  *DocumentStore
	Check func(ctx context.Context, file string)
}

func NewDiskWatcher(target *DiskWatcherTarget) (*DiskWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &DiskWatcher{dispatcher: target, watcher: w}, nil
}

// Watch adds a directory to the watch set.
func (w *DiskWatcher) Watch(dir string) error {
	return w.watcher.Add(NormalizePath(dir))
}

// Run processes watch events until ctx is done. It is meant to be started
// once, in its own goroutine.
func (w *DiskWatcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Debug("disk watcher error", "error", err)
		}
	}
}

func (w *DiskWatcher) reload(ctx context.Context, path string) {
	path = NormalizePath(path)
	if !sources.IsScriptFile(path) {
		return
	}
	fs, resident := w.dispatcher.Docs.Get(path)
	if resident && fs.HasVersion() {
		// open in an editor; the overlay is authoritative
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	w.dispatcher.Docs.SetContent(path, strings.Split(string(data), "\n"), NoVersion)
	if resident {
		w.dispatcher.Check(ctx, path)
	}
}
