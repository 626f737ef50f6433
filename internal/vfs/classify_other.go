//go:build !darwin && !linux && !windows

package vfs

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

type platformClassifier struct{}

func newPlatformClassifier() *platformClassifier { return &platformClassifier{} }

// classify provides the Windows-shaped mapping as a reasonable default for
// platforms the original debouncer never targeted (BSDs, etc).
func (*platformClassifier) classify(op fsnotify.Op, path string, exists bool, now time.Time) (EventKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return Create, true
	case op&fsnotify.Remove != 0:
		return Delete, true
	case op&fsnotify.Rename != 0:
		if exists {
			return Create, true
		}
		return Delete, true
	case op&fsnotify.Write != 0:
		return Write, true
	default:
		return 0, false
	}
}
