//go:build darwin

package vfs

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// platformClassifier maps raw fsnotify ops to canonical EventKinds. The
// macOS variant needs no state across calls.
type platformClassifier struct{}

func newPlatformClassifier() *platformClassifier { return &platformClassifier{} }

// classify follows the macOS event rules: Create maps to Create only if
// the path still exists, and to Delete otherwise; a rename-class op is a
// Create or Delete depending on post-event existence (fsnotify folds
// FSEvents' Modify(Name) into Create|Rename on this platform); Remove maps
// to Delete; Write maps to Write; everything else, including bare Chmod,
// is dropped.
func (*platformClassifier) classify(op fsnotify.Op, path string, exists bool, now time.Time) (EventKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		if exists {
			return Create, true
		}
		return Delete, true
	case op&fsnotify.Rename != 0:
		if exists {
			return Create, true
		}
		return Delete, true
	case op&fsnotify.Remove != 0:
		return Delete, true
	case op&fsnotify.Write != 0:
		return Write, true
	default:
		return 0, false
	}
}
