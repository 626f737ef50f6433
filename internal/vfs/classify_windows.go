//go:build windows

package vfs

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

type platformClassifier struct{}

func newPlatformClassifier() *platformClassifier { return &platformClassifier{} }

// classify follows the Windows branch of the original debouncer (spec
// §4.B): Create->Create, Remove->Delete, Rename->Create or Delete by
// post-event existence, Modify(any)->Write, everything else dropped.
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
