// Package vcs implements an optional, best-effort audit trail: a commit
// recorded against the watched workspace's git history after a reverse
// write lands on disk. It is never load-bearing for synchronization
// correctness — a workspace that isn't a git work tree simply has audit
// trailing disabled.
package vcs

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultAuthorEmail is used for every audit commit's signature; the audit
// trail records what changed and when, not a real person's identity.
const DefaultAuthorEmail = "treesyncd@localhost"

// Recorder commits a workspace's working tree state after reverse writes,
// best-effort (adapts pkg/workspace.Manager.Commit, scoped down from a
// general-purpose workspace manager to this one narrow use).
type Recorder struct {
	workspacePath string
	authorName    string
	enabled       bool
}

// Open opens workspacePath as an existing git repository. If it isn't one
// (or has no git history at all), the returned Recorder has Record as a
// permanent no-op rather than erroring — matching the "optional" framing:
// the caller doesn't need to branch on whether the workspace happens to be
// version-controlled.
func Open(workspacePath, authorName string) *Recorder {
	if authorName == "" {
		authorName = "treesyncd"
	}
	_, err := git.PlainOpen(workspacePath)
	return &Recorder{workspacePath: workspacePath, authorName: authorName, enabled: err == nil}
}

// Disabled returns a Recorder whose Record is permanently a no-op,
// regardless of whether workspacePath happens to be a git work tree —
// for callers configured to skip audit trailing altogether: opting out is
// a config flag, not a missing-.git accident.
func Disabled(authorName string) *Recorder {
	if authorName == "" {
		authorName = "treesyncd"
	}
	return &Recorder{authorName: authorName, enabled: false}
}

// Enabled reports whether workspacePath was a valid git work tree at Open
// time.
func (r *Recorder) Enabled() bool { return r.enabled }

// Record stages every pending change in the work tree and commits it with
// message, returning the new commit hash. A no-op Recorder (Enabled()
// false) returns "" and a nil error: the caller logs and moves on rather
// than treating a missing repository as a failure.
func (r *Recorder) Record(message string) (string, error) {
	if !r.enabled {
		return "", nil
	}

	repo, err := git.PlainOpen(r.workspacePath)
	if err != nil {
		return "", fmt.Errorf("vcs: open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("vcs: get worktree: %w", err)
	}

	if err := worktree.AddGlob("."); err != nil {
		return "", fmt.Errorf("vcs: stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("vcs: read status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.authorName,
			Email: DefaultAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("vcs: commit: %w", err)
	}

	return hash.String(), nil
}
