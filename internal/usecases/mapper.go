package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// fallbackBranches are tried in order when the configured source branch does
// not exist and the fallback flag is enabled.
var fallbackBranches = []string{"main", "master"}

// BranchMapper computes the source-to-destination branch mapping for a sync
// run, in single-branch and all-branch modes.
type BranchMapper struct {
	refs   domain.RefStore
	logger Logger
}

// NewBranchMapper creates a mapper over the given ref store.
func NewBranchMapper(refs domain.RefStore, log Logger) *BranchMapper {
	return &BranchMapper{
		refs:   refs,
		logger: log,
	}
}

// MapSingle maps one configured source branch to one destination branch.
// When the source branch is absent and mainFallback is enabled, the first of
// main/master present in the source is substituted. Absence with the
// fallback disabled or exhausted is a fatal error listing the available
// branches.
func (m *BranchMapper) MapSingle(
	ctx context.Context,
	sourceBranch, destBranch string,
	mainFallback bool,
) (domain.BranchMapping, error) {
	available, err := m.refs.ListRemoteBranches(ctx, "source")
	if err != nil {
		return domain.BranchMapping{}, fmt.Errorf("failed to enumerate source branches: %w", err)
	}

	if !containsBranch(available, sourceBranch) {
		if !mainFallback {
			return domain.BranchMapping{}, notFoundError(sourceBranch, available)
		}

		resolved := ""
		for _, candidate := range fallbackBranches {
			if containsBranch(available, candidate) {
				resolved = candidate
				break
			}
		}
		if resolved == "" {
			return domain.BranchMapping{}, notFoundError(sourceBranch, available)
		}

		m.logger.Warn(ctx, "source branch not found, using fallback", map[string]interface{}{
			"configured": sourceBranch,
			"fallback":   resolved,
		})
		sourceBranch = resolved
	}

	return domain.BranchMapping{
		Pairs: []domain.BranchPair{{Source: sourceBranch, Destination: destBranch}},
	}, nil
}

// MapAll maps every source branch for all-branch mode. The configured pair
// keeps its configured destination name; every other branch maps to itself.
// Destination branches no pair maps onto become deletion candidates.
// Gerrit pseudo-branches (refs/for/*, refs/changes/*) are never mirrored.
func (m *BranchMapper) MapAll(
	ctx context.Context,
	sourceBranch, destBranch string,
) (domain.BranchMapping, error) {
	sourceBranches, err := m.refs.ListRemoteBranches(ctx, "source")
	if err != nil {
		return domain.BranchMapping{}, fmt.Errorf("failed to enumerate source branches: %w", err)
	}

	mapping := domain.BranchMapping{}
	mapped := make(map[string]bool)
	for _, branch := range sourceBranches {
		if isPseudoBranch(branch) {
			m.logger.Debug(ctx, "skipping pseudo-branch", map[string]interface{}{
				"branch": branch,
			})
			continue
		}

		dest := branch
		if branch == sourceBranch {
			dest = destBranch
		}
		mapping.Pairs = append(mapping.Pairs, domain.BranchPair{Source: branch, Destination: dest})
		mapped[dest] = true
	}

	destBranches, err := m.refs.ListRemoteBranches(ctx, "origin")
	if err != nil {
		return domain.BranchMapping{}, fmt.Errorf("failed to enumerate destination branches: %w", err)
	}
	for _, branch := range destBranches {
		if !mapped[branch] {
			mapping.DeleteCandidates = append(mapping.DeleteCandidates, branch)
		}
	}

	m.logger.Info(ctx, "computed all-branch mapping", map[string]interface{}{
		"pairs":             len(mapping.Pairs),
		"delete_candidates": len(mapping.DeleteCandidates),
	})

	return mapping, nil
}

// isPseudoBranch reports whether a branch name is a Gerrit review-queue
// pseudo-branch rather than a real branch.
func isPseudoBranch(branch string) bool {
	return strings.HasPrefix(branch, "for/") ||
		strings.HasPrefix(branch, "changes/") ||
		strings.HasPrefix(branch, "refs/for/") ||
		strings.HasPrefix(branch, "refs/changes/")
}

func containsBranch(branches []string, name string) bool {
	for _, b := range branches {
		if b == name {
			return true
		}
	}
	return false
}

func notFoundError(branch string, available []string) error {
	return fmt.Errorf("%w: %q (available branches: %s)",
		domain.ErrBranchNotFound, branch, strings.Join(available, ", "))
}
