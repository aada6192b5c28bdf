package usecases

import (
	"context"
	"fmt"
	"os"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// sourceRemote is the name of the remote pointing at the source repository
// inside the mirror working directory. The destination is always "origin".
const sourceRemote = "source"

// MirrorSyncer orchestrates one complete mirror run: clone the destination,
// fetch the source, map branches, classify and push each pair in order,
// delete stale destination branches in all-branch mode, then sync tags.
// Execution is strictly sequential so a diverged branch detected mid-run
// aborts before any further push.
type MirrorSyncer struct {
	transport    domain.Transport
	storeFactory domain.RefStoreFactory
	logger       Logger
}

// NewMirrorSyncer creates a syncer with the given dependencies.
func NewMirrorSyncer(
	transport domain.Transport,
	storeFactory domain.RefStoreFactory,
	log Logger,
) *MirrorSyncer {
	return &MirrorSyncer{
		transport:    transport,
		storeFactory: storeFactory,
		logger:       log,
	}
}

// Sync runs the mirror operation end to end.
//
// A VerdictDiverged on any branch is fatal and aborts the whole run
// immediately; branch deletion and source-remote removal are best-effort
// and only log warnings on failure.
func (s *MirrorSyncer) Sync(ctx context.Context, input domain.SyncInput) (*domain.SyncReport, error) {
	kind := domain.DetectRepositoryKind(input.Destination.URL)

	s.logger.Info(ctx, "starting mirror sync", map[string]interface{}{
		"source":       domain.RedactURL(input.Source.URL),
		"destination":  domain.RedactURL(input.Destination.URL),
		"kind":         kind.String(),
		"all_branches": input.AllBranches,
		"sync_tags":    input.SyncTags,
	})

	workDir, cleanup, err := s.workDir(input.WorkDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := s.transport.Clone(ctx, input.Destination, workDir); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCloneFailed, err)
	}
	if err := s.transport.AddRemote(ctx, sourceRemote, input.Source.URL); err != nil {
		return nil, fmt.Errorf("failed to add source remote: %w", err)
	}
	defer s.removeSourceRemote(ctx)

	if err := s.transport.Fetch(ctx, sourceRemote, input.Source.Credential, false); err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}

	refs, err := s.storeFactory(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror repository: %w", err)
	}

	mapper := NewBranchMapper(refs, s.logger)
	mapping, err := s.mapBranches(ctx, mapper, input)
	if err != nil {
		return nil, err
	}

	report := &domain.SyncReport{}
	classifier := NewDivergenceClassifier(refs, s.logger)
	router := NewPushRouter(s.transport, s.logger)

	for _, pair := range mapping.Pairs {
		if err := s.syncBranch(ctx, classifier, router, input, pair, kind, report); err != nil {
			return nil, err
		}
	}

	s.deleteStaleBranches(ctx, input, mapping.DeleteCandidates, report)

	tagSyncer := NewTagSyncer(s.transport, refs, s.logger)
	tags, err := tagSyncer.Sync(ctx, input.Source, input.Destination, input.SyncTags, kind)
	if err != nil {
		return nil, fmt.Errorf("tag sync failed: %w", err)
	}
	report.TagsPushed = tags

	s.logger.Info(ctx, "mirror sync complete", map[string]interface{}{
		"branches_pushed":  len(report.BranchesPushed),
		"branches_skipped": len(report.BranchesSkipped),
		"branches_deleted": len(report.BranchesDeleted),
		"tags_pushed":      len(report.TagsPushed),
	})

	return report, nil
}

// syncBranch classifies and pushes one branch pair. The source ref is
// checked for existence first; a push is never planned from a missing ref.
func (s *MirrorSyncer) syncBranch(
	ctx context.Context,
	classifier *DivergenceClassifier,
	router *PushRouter,
	input domain.SyncInput,
	pair domain.BranchPair,
	kind domain.RepositoryKind,
	report *domain.SyncReport,
) error {
	sourceRef := "refs/remotes/" + sourceRemote + "/" + pair.Source
	destRef := "refs/remotes/origin/" + pair.Destination

	sourceCommit, err := classifier.refs.ResolveCommit(ctx, sourceRef)
	if err != nil {
		return fmt.Errorf("failed to resolve source ref %s: %w", sourceRef, err)
	}
	if !sourceCommit.Exists() {
		s.logger.Warn(ctx, "source branch missing, skipping", map[string]interface{}{
			"branch": pair.Source,
		})
		report.BranchesSkipped = append(report.BranchesSkipped, pair.Source)
		return nil
	}

	div, err := classifier.Classify(ctx, destRef, sourceRef)
	if err != nil {
		return err
	}

	plan, err := router.Plan(pair, div, kind)
	if err != nil {
		return err
	}

	if err := router.Execute(ctx, input.Destination.Credential, plan, kind); err != nil {
		return fmt.Errorf("failed to push branch %q: %w", pair.Destination, err)
	}

	s.logger.Info(ctx, "pushed branch", map[string]interface{}{
		"source_branch": pair.Source,
		"dest_branch":   pair.Destination,
		"verdict":       div.Verdict.String(),
		"force":         plan.Force,
	})
	report.BranchesPushed = append(report.BranchesPushed, pair.Destination)
	return nil
}

func (s *MirrorSyncer) mapBranches(
	ctx context.Context,
	mapper *BranchMapper,
	input domain.SyncInput,
) (domain.BranchMapping, error) {
	if input.AllBranches {
		return mapper.MapAll(ctx, input.SourceBranch, input.DestinationBranch)
	}
	return mapper.MapSingle(ctx, input.SourceBranch, input.DestinationBranch, input.MainFallback)
}

// deleteStaleBranches removes destination-only branches. Failures are
// warnings, never fatal.
func (s *MirrorSyncer) deleteStaleBranches(
	ctx context.Context,
	input domain.SyncInput,
	candidates []string,
	report *domain.SyncReport,
) {
	for _, branch := range candidates {
		refspec := ":refs/heads/" + branch
		if err := s.transport.Push(ctx, "origin", input.Destination.Credential, refspec, false); err != nil {
			s.logger.Warn(ctx, "failed to delete stale destination branch", map[string]interface{}{
				"branch": branch,
				"error":  err.Error(),
			})
			continue
		}
		s.logger.Info(ctx, "deleted stale destination branch", map[string]interface{}{
			"branch": branch,
		})
		report.BranchesDeleted = append(report.BranchesDeleted, branch)
	}
}

func (s *MirrorSyncer) removeSourceRemote(ctx context.Context) {
	if err := s.transport.RemoveRemote(ctx, sourceRemote); err != nil {
		s.logger.Warn(ctx, "failed to remove source remote", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// workDir returns the mirror working directory and a cleanup function.
// A caller-provided directory is kept; a generated temporary directory is
// removed when the run finishes.
func (s *MirrorSyncer) workDir(configured string) (string, func(), error) {
	if configured != "" {
		return configured, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "repo-mirror-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}
