package middleware

import (
	"regexp"
	"strings"

	"github.com/synctree/synctree/internal/meta"
)

// illegalChars mirrors the characters Windows/macOS/Linux filesystems all
// reject in a path segment; Strict policy rejects a name containing any of
// these, Permissive policy replaces each with '_'.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitize applies the dispatcher's configured NameSanitizePolicy to a raw
// on-disk name. Under Permissive, an altered name is recorded on m as
// OriginalName so it can be reported back to clients. Under Strict, the name
// is returned untouched: FromPath has already rejected a path whose base
// name is illegal with a *vfs.PathError before any name is derived from it.
func (c Config) sanitize(m *meta.Meta, name string) string {
	if c.SanitizePolicy == meta.Strict {
		return name
	}
	if !illegalChars.MatchString(name) {
		return name
	}
	sanitized := illegalChars.ReplaceAllString(name, "_")
	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		sanitized = "_"
	}
	m.OriginalName = name
	m.SanitizePolicy = meta.Permissive
	return sanitized
}
