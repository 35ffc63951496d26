// Package gittree computes content hashes of a git working tree.
package gittree

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.trai.ch/shipper/internal/core/domain"
	"go.trai.ch/shipper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Hasher implements ports.TreeHasher.
//
// The committed-tree path is a read-only object lookup done with go-git. The
// working-tree path shells out to git with an isolated temporary index so
// the caller's real index is never disturbed: the current index is copied to
// a temp file, `git add -A` stages the working tree into it, and
// `git write-tree` produces the content-addressed tree id. The temp index is
// removed unconditionally.
type Hasher struct {
	runner ports.Runner
}

// NewHasher creates a new Hasher using the given runner for git commands.
func NewHasher(runner ports.Runner) *Hasher {
	return &Hasher{runner: runner}
}

// Hash computes the tree hash for the repository at repoPath.
func (h *Hasher) Hash(ctx context.Context, repoPath string, includeUncommitted bool) (domain.TreeHash, error) {
	if _, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true}); err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", zerr.With(domain.ErrNotARepository, "path", repoPath)
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrHashFailed.Error()), "path", repoPath)
	}

	if includeUncommitted {
		return h.workingTreeHash(ctx, repoPath)
	}
	return h.committedTreeHash(repoPath)
}

// committedTreeHash resolves HEAD's tree id without touching the index.
func (h *Hasher) committedTreeHash(repoPath string) (domain.TreeHash, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrHashFailed.Error())
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", zerr.With(zerr.Wrap(err, domain.ErrHashFailed.Error()), "reason", "repository has no commits")
		}
		return "", zerr.Wrap(err, domain.ErrHashFailed.Error())
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrHashFailed.Error())
	}

	return domain.ParseTreeHash(commit.TreeHash.String())
}

// workingTreeHash stages the full working tree into a temporary index and
// writes the resulting tree object.
func (h *Hasher) workingTreeHash(ctx context.Context, repoPath string) (domain.TreeHash, error) {
	tmp, err := os.CreateTemp("", "shipper-index-*")
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrHashFailed.Error())
	}
	tmpIndex := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpIndex) }()

	// Seed the temp index from the real one so already-staged content is
	// carried over. A repository may legitimately have no index yet.
	out, err := h.git(ctx, repoPath, nil, "rev-parse", "--git-path", "index")
	if err != nil {
		return "", err
	}
	realIndex := strings.TrimSpace(out)
	if !filepath.IsAbs(realIndex) {
		// rev-parse reports the path relative to the repository.
		realIndex = filepath.Join(repoPath, realIndex)
	}
	if err := copyFileIfExists(realIndex, tmpIndex); err != nil {
		return "", zerr.Wrap(err, domain.ErrHashFailed.Error())
	}

	env := []string{"GIT_INDEX_FILE=" + tmpIndex}
	if _, err := h.git(ctx, repoPath, env, "add", "-A"); err != nil {
		return "", err
	}

	tree, err := h.git(ctx, repoPath, env, "write-tree")
	if err != nil {
		return "", err
	}

	return domain.ParseTreeHash(tree)
}

// git runs one git command in the repository and returns its stdout.
func (h *Hasher) git(ctx context.Context, repoPath string, env []string, args ...string) (string, error) {
	res, err := h.runner.Run(ctx, ports.Command{
		Name: "git",
		Args: args,
		Env:  env,
		Dir:  repoPath,
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrHashFailed.Error()), "git_args", strings.Join(args, " "))
	}
	return res.Stdout, nil
}

func copyFileIfExists(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_TRUNC, domain.PrivateFilePerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
