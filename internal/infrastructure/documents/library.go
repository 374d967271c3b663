package documents

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Library lists and opens candidate upload files from one watched drop
// directory. The shell's file picker stays in sync with the directory.
type Library struct {
	dir string
}

func New(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &Library{dir: dir}, nil
}

func (l *Library) Dir() string {
	return l.dir
}

// List returns the selectable file names, sorted, hidden files skipped.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Open returns the file content for upload. The name is restricted to the
// library directory.
func (l *Library) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return f, nil
}

// Watch emits a fresh file listing whenever the directory changes, until
// the context is done. The first listing is sent immediately.
func (l *Library) Watch(ctx context.Context) (<-chan []string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	updates := make(chan []string, 1)
	if names, err := l.List(); err == nil {
		updates <- names
	}

	go func() {
		defer watcher.Close()
		defer close(updates)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				names, err := l.List()
				if err != nil {
					slog.Warn("documents_list_failed", "error", err)
					continue
				}
				select {
				case updates <- names:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("documents_watcher_error", "error", err)
			}
		}
	}()

	return updates, nil
}
