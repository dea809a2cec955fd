package discovery

import (
	git "github.com/go-git/go-git/v5"
)

// DetectRuntime reports what version control says about the project:
// whether it is a git work tree, the checked-out branch, and whether
// the tree has uncommitted changes. Outside a repository, or on any
// git error, it degrades to the zero status.
func (e *Engine) DetectRuntime() RuntimeStatus {
	repo, err := git.PlainOpenWithOptions(e.root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return RuntimeStatus{}
	}

	status := RuntimeStatus{Git: true}

	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		status.Branch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if st, err := wt.Status(); err == nil {
			status.Dirty = !st.IsClean()
		}
	}
	return status
}
