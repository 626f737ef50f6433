// Package glob wraps github.com/bmatcuk/doublestar/v4 the way glob.rs wraps
// the `glob` crate: a small value type with JSON (un)marshaling and a
// directory-aware match helper.
package glob

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob is an immutable compiled glob pattern, always stored with forward
// slashes regardless of the host platform's path separator.
type Glob struct {
	pattern string
}

// New validates pattern eagerly, matching glob.rs's constructor.
func New(pattern string) (Glob, error) {
	pattern = filepath.ToSlash(pattern)
	if _, err := doublestar.Match(pattern, ""); err != nil {
		return Glob{}, err
	}
	return Glob{pattern: pattern}, nil
}

// MustNew panics on an invalid pattern; used for compiled-in defaults.
func MustNew(pattern string) Glob {
	g, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Matches reports whether str (a `/`-separated path) matches the pattern.
func (g Glob) Matches(str string) bool {
	ok, _ := doublestar.Match(g.pattern, filepath.ToSlash(str))
	return ok
}

// MatchesWithDir additionally treats a "/**"-suffixed pattern as matching
// its own directory, mirroring Glob::matches_path_with_dir: a rule like
// `src/**` should also match the bare `src` directory itself.
func (g Glob) MatchesWithDir(str string) bool {
	if g.Matches(str) {
		return true
	}
	if strings.HasSuffix(g.pattern, "/**") {
		base := strings.TrimSuffix(g.pattern, "/**")
		ok, _ := doublestar.Match(base, filepath.ToSlash(str))
		return ok
	}
	return false
}

func (g Glob) String() string { return g.pattern }

func (g Glob) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.pattern)
}

func (g *Glob) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := New(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
