// Package usecases contains the application business logic for repo-mirror.
// This package orchestrates domain entities and interfaces to fulfill the
// mirror use cases: divergence classification, branch mapping, push routing,
// and tag synchronization.
package usecases

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Logger defines the logging interface required by the use cases.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// DivergenceClassifier decides whether a destination ref can be updated from
// a source ref without discarding destination-only commits. The verdict is a
// pure function of the two resolved commits and their merge base, computed
// fresh on every call.
type DivergenceClassifier struct {
	refs   domain.RefStore
	logger Logger
}

// NewDivergenceClassifier creates a classifier over the given ref store.
func NewDivergenceClassifier(refs domain.RefStore, log Logger) *DivergenceClassifier {
	return &DivergenceClassifier{
		refs:   refs,
		logger: log,
	}
}

// Classify resolves both refs and produces the divergence verdict:
//
//   - destination ref missing           -> VerdictEmptyDestination
//   - no merge base between the refs    -> VerdictUnrelated
//   - destination commit == merge base  -> VerdictCleanAhead
//   - destination commit != merge base  -> VerdictDiverged
//
// VerdictDiverged is the only verdict that blocks a sync. A missing source
// ref also reports VerdictEmptyDestination; callers guard source existence
// separately before planning a push.
func (c *DivergenceClassifier) Classify(ctx context.Context, destRef, sourceRef string) (domain.Divergence, error) {
	sourceCommit, err := c.refs.ResolveCommit(ctx, sourceRef)
	if err != nil {
		return domain.Divergence{}, fmt.Errorf("failed to resolve source ref %s: %w", sourceRef, err)
	}

	destCommit, err := c.refs.ResolveCommit(ctx, destRef)
	if err != nil {
		return domain.Divergence{}, fmt.Errorf("failed to resolve destination ref %s: %w", destRef, err)
	}

	div := domain.Divergence{
		SourceCommit:      sourceCommit,
		DestinationCommit: destCommit,
	}

	if !destCommit.Exists() || !sourceCommit.Exists() {
		div.Verdict = domain.VerdictEmptyDestination
		c.logDecision(ctx, destRef, sourceRef, div)
		return div, nil
	}

	base, err := c.refs.MergeBase(ctx, destRef, sourceRef)
	if err != nil {
		return domain.Divergence{}, fmt.Errorf("failed to compute merge base of %s and %s: %w", destRef, sourceRef, err)
	}
	div.MergeBase = base

	switch {
	case !base.Exists():
		div.Verdict = domain.VerdictUnrelated
	case destCommit == base:
		div.Verdict = domain.VerdictCleanAhead
	default:
		div.Verdict = domain.VerdictDiverged
	}

	c.logDecision(ctx, destRef, sourceRef, div)
	return div, nil
}

func (c *DivergenceClassifier) logDecision(ctx context.Context, destRef, sourceRef string, div domain.Divergence) {
	c.logger.Debug(ctx, "classified divergence", map[string]interface{}{
		"verdict":    div.Verdict.String(),
		"source_ref": sourceRef,
		"dest_ref":   destRef,
		"source_sha": div.SourceCommit.Abbrev(),
		"dest_sha":   div.DestinationCommit.Abbrev(),
		"merge_base": div.MergeBase.Abbrev(),
	})
}
