package ps

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
	"github.com/go-git/go-git/v6/storage/filesystem"

	"github.com/flatsql/flatsql/core"
)

// History records every store mutation as a git commit in a repository
// rooted at the store's filesystem.
type History struct {
	repo     *git.Repository
	identity core.Identity
}

// Change is one recorded mutation.
type Change struct {
	Id      string
	Message string
	Author  string
	When    time.Time
}

func (change Change) String() string {
	return fmt.Sprintf("%s %s %s %s", change.Id[:8], change.When.Format(time.DateTime), change.Author, change.Message)
}

func newHistory(fs billy.Filesystem, identity core.Identity) (*History, error) {
	dotgit, err := fs.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		dotgit,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	repo, err := git.Init(storer, git.WithWorkTree(fs))
	if errors.Is(err, git.ErrTargetDirNotEmpty) {
		repo, err = git.Open(storer, fs)
	}
	if err != nil {
		return nil, err
	}

	return &History{repo: repo, identity: identity}, nil
}

// Record stages the given paths and commits them. A mutation that changed
// nothing on disk produces no commit.
func (history *History) Record(message string, paths ...string) error {
	wt, err := history.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	for _, path := range paths {
		if _, err := wt.Add(path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  history.identity.Name,
			Email: history.identity.Email,
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Entries returns recorded changes, most recent first. A limit of zero or
// less returns all of them. A history with no commits yet yields an empty
// list.
func (history *History) Entries(limit int) ([]Change, error) {
	iter, err := history.repo.Log(&git.LogOptions{})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	var changes []Change
	err = iter.ForEach(func(commit *object.Commit) error {
		if limit > 0 && len(changes) >= limit {
			return storer.ErrStop
		}
		changes = append(changes, Change{
			Id:      commit.Hash.String(),
			Message: commit.Message,
			Author:  fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email),
			When:    commit.Committer.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}

	return changes, nil
}
