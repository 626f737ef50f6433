package vfs

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
)

// OS is the OS-backed Backend: operations delegate to the
// native filesystem; watching uses fsnotify plus the per-platform
// classifier and debouncer above. Trash, when set, is consulted by
// Remove before falling back to a real delete (kept nil by default since
// routing to an OS trash is platform glue outside this package's scope;
// callers that need it can set Trash to a non-nil function).
type OS struct {
	root string

	watcher *fsnotify.Watcher
	debounce *debouncer
	platform *platformClassifier

	watchedMu sync.Mutex
	watched   map[string]struct{}

	paused atomic.Bool

	Trash func(path string) error

	closeOnce sync.Once
	done      chan struct{}
}

// NewOS constructs an OS-backed Backend rooted at root (used only to decide
// Event.Root; every operation accepts absolute paths).
func NewOS(root string) (*OS, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		_ = w.Close()
		return nil, err
	}

	o := &OS{
		root:     abs,
		watcher:  w,
		debounce: newDebouncer(),
		platform: newPlatformClassifier(),
		watched:  map[string]struct{}{},
		done:     make(chan struct{}),
	}

	go o.pump()
	go o.forward()

	return o, nil
}

func (o *OS) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapIOErr("read", path, err)
	}
	return data, nil
}

func (o *OS) ReadToString(path string) (string, error) {
	data, err := o.Read(path)
	if err != nil {
		return "", err
	}
	s := string(data)
	if !utf8.ValidString(s) {
		return "", newPathError("read", path, ErrInvalidData)
	}
	return NormalizeNewlines(s), nil
}

func (o *OS) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, wrapIOErr("read_dir", path, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Join(path, e.Name()))
	}
	return out, nil
}

func (o *OS) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapIOErr("write", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return wrapIOErr("write", path, err)
	}
	return nil
}

func (o *OS) CreateDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return wrapIOErr("create_dir", path, err)
	}
	return nil
}

func (o *OS) Rename(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return wrapIOErr("rename", to, err)
	}
	if err := os.Rename(from, to); err != nil {
		return wrapIOErr("rename", from, err)
	}
	return nil
}

func (o *OS) Remove(path string) error {
	if o.Trash != nil {
		if err := o.Trash(path); err == nil {
			return nil
		}
	}
	if err := os.RemoveAll(path); err != nil {
		return wrapIOErr("remove", path, err)
	}
	return nil
}

func (o *OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (o *OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (o *OS) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Watch starts watching path. When recursive is true every existing
// subdirectory is watched too and newly created subdirectories are watched
// lazily as Create events arrive (fsnotify has no native recursive mode).
func (o *OS) Watch(path string, recursive bool) error {
	if !recursive {
		return o.addWatch(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := o.addWatch(p); err != nil {
				slog.Debug("vfs: failed to watch directory", "path", p, "error", err)
			}
		}
		return nil
	})
}

func (o *OS) addWatch(path string) error {
	o.watchedMu.Lock()
	defer o.watchedMu.Unlock()
	if _, ok := o.watched[path]; ok {
		return nil
	}
	if err := o.watcher.Add(path); err != nil {
		return err
	}
	o.watched[path] = struct{}{}
	return nil
}

func (o *OS) Unwatch(path string) error {
	o.watchedMu.Lock()
	defer o.watchedMu.Unlock()
	if _, ok := o.watched[path]; !ok {
		return nil
	}
	delete(o.watched, path)
	return o.watcher.Remove(path)
}

func (o *OS) Pause()  { o.paused.Store(true) }
func (o *OS) Resume() { o.paused.Store(false) }

func (o *OS) Receiver() <-chan Event { return o.debounce.events() }

func (o *OS) Close() error {
	var err error
	o.closeOnce.Do(func() {
		close(o.done)
		o.debounce.close()
		err = o.watcher.Close()
	})
	return err
}

// pump drains the fsnotify watcher, classifies each raw event and feeds the
// per-path debouncer.
func (o *OS) pump() {
	for {
		select {
		case ev, ok := <-o.watcher.Events:
			if !ok {
				return
			}
			if o.paused.Load() {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := o.addWatch(ev.Name); err != nil {
						slog.Debug("vfs: failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}

			exists := o.Exists(ev.Name)
			kind, ok := o.platform.classify(ev.Op, ev.Name, exists, time.Now())
			if !ok {
				continue
			}

			o.debounce.push(Event{
				Kind: kind,
				Path: ev.Name,
				Root: filepath.Dir(ev.Name) == o.root,
			})

		case err, ok := <-o.watcher.Errors:
			if !ok {
				return
			}
			slog.Debug("vfs: watcher error", "error", err)

		case <-o.done:
			return
		}
	}
}

// forward is a no-op placeholder kept symmetrical with the debouncer's own
// goroutine; Receiver reads directly from the debouncer's channel.
func (o *OS) forward() {}

func wrapIOErr(op, path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return newPathError(op, path, ErrNotFound)
	case os.IsPermission(err):
		return newPathError(op, path, ErrPermission)
	default:
		return newPathError(op, path, err)
	}
}

var _ Backend = (*OS)(nil)
var _ io.Closer = (*OS)(nil)
