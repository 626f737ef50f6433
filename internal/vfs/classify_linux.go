//go:build linux

package vfs

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// platformClassifier tracks the most recent Create event's (time, path) so
// the close-after-create artifact inotify produces can be dropped,
// mirroring debouncer.rs's 500 microsecond same-path window.
type platformClassifier struct {
	createTime time.Time
	createPath string
}

func newPlatformClassifier() *platformClassifier { return &platformClassifier{} }

const linuxCloseAfterCreateWindow = 500 * time.Microsecond

// classify follows the Linux event rules: Create is remembered; Rename is
// Delete (source) or Create (destination)
// depending on which half fsnotify reports; a Write arriving within 500us
// of a Create on the same path is the watcher's own close-after-create
// artifact and is dropped.
func (d *platformClassifier) classify(op fsnotify.Op, path string, exists bool, now time.Time) (EventKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		d.createTime = now
		d.createPath = path
		return Create, true
	case op&fsnotify.Rename != 0:
		if exists {
			return Create, true
		}
		return Delete, true
	case op&fsnotify.Remove != 0:
		return Delete, true
	case op&fsnotify.Write != 0:
		if path == d.createPath && now.Sub(d.createTime) < linuxCloseAfterCreateWindow {
			return 0, false
		}
		return Write, true
	default:
		return 0, false
	}
}
