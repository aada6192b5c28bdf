// Package gogit provides the ref store adapter for repo-mirror.
// It implements domain.RefStore over the local mirror repository using
// go-git/v5: ref resolution, merge-base computation, and branch/tag
// enumeration never touch the network.
package gogit

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Logger defines the logging interface for the ref store adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Store implements domain.RefStore using go-git/v5.
type Store struct {
	repo   *git.Repository
	path   string
	logger Logger
}

// NewStore opens the repository at path. Returns domain.ErrRepositoryNotFound
// if the path is not a valid Git repository.
func NewStore(path string, log Logger) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	return &Store{
		repo:   repo,
		path:   path,
		logger: log,
	}, nil
}

// ResolveCommit resolves a symbolic ref to a commit. A ref that does not
// exist yields domain.NoCommit with a nil error; callers treat that as
// meaningful data, never as failure.
func (s *Store) ResolveCommit(ctx context.Context, ref string) (domain.CommitID, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		s.logger.Debug(ctx, "ref did not resolve", map[string]interface{}{
			"ref":   ref,
			"cause": err.Error(),
		})
		return domain.NoCommit, nil
	}
	return domain.CommitID(hash.String()), nil
}

// MergeBase returns the most recent common ancestor of two refs, or
// domain.NoCommit when the refs share no history. Both refs must resolve;
// lookup failures on resolved commits propagate as errors.
func (s *Store) MergeBase(ctx context.Context, refA, refB string) (domain.CommitID, error) {
	commitA, err := s.commitFor(refA)
	if err != nil {
		return domain.NoCommit, err
	}
	commitB, err := s.commitFor(refB)
	if err != nil {
		return domain.NoCommit, err
	}

	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return domain.NoCommit, fmt.Errorf("failed to compute merge base of %s and %s: %w", refA, refB, err)
	}
	if len(bases) == 0 {
		// No common ancestor: a graceful empty result, not an error.
		return domain.NoCommit, nil
	}
	return domain.CommitID(bases[0].Hash.String()), nil
}

// ListRemoteBranches enumerates the remote-tracking branches of a remote,
// returning short branch names. The symbolic HEAD marker is excluded.
func (s *Store) ListRemoteBranches(ctx context.Context, remote string) ([]string, error) {
	iter, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	prefix := "refs/remotes/" + remote + "/"
	var branches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		short := strings.TrimPrefix(name, prefix)
		if short == "HEAD" {
			return nil
		}
		branches = append(branches, short)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk references: %w", err)
	}

	s.logger.Debug(ctx, "enumerated remote branches", map[string]interface{}{
		"remote":   remote,
		"branches": len(branches),
	})
	return branches, nil
}

// ListTags enumerates the tag names present in the repository.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	iter, err := s.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tags: %w", err)
	}

	s.logger.Debug(ctx, "enumerated tags", map[string]interface{}{
		"tags": len(tags),
	})
	return tags, nil
}

// commitFor resolves a ref and loads its commit object.
func (s *Store) commitFor(ref string) (*object.Commit, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	commit, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	return commit, nil
}
