// Package gitinfo resolves source-tree revision metadata for build reports.
package gitinfo

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// Revision identifies the source state a build ran against. Commit hashes,
// not wall clocks, stamp build reports so unchanged input keeps output
// byte-for-byte identical.
type Revision struct {
	Commit string
	Branch string
	Remote string
	Dirty  bool
}

// ErrNotRepository reports a source tree that is not inside a git repository.
var ErrNotRepository = errors.New("source tree is not a git repository")

// Resolve reads HEAD, the current branch, and the origin remote for the
// repository containing path. Callers treat ErrNotRepository as "no revision
// stamp", not as a build failure.
func Resolve(path string) (*Revision, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	rev := &Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			rev.Remote = urls[0]
		}
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			rev.Dirty = !status.IsClean()
		}
	}

	return rev, nil
}

// Short returns the abbreviated commit hash, or empty for a nil revision.
func (r *Revision) Short() string {
	if r == nil || len(r.Commit) < 8 {
		return ""
	}
	return r.Commit[:8]
}
