package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// PushRouter turns a branch pair, a divergence verdict, and the destination
// repository kind into a concrete push, and executes it through the
// transport. Standard and Gerrit destinations share one parameterized path;
// only the destination refspec namespace and the retry rule differ.
type PushRouter struct {
	transport domain.Transport
	logger    Logger
}

// NewPushRouter creates a router over the given transport.
func NewPushRouter(transport domain.Transport, log Logger) *PushRouter {
	return &PushRouter{
		transport: transport,
		logger:    log,
	}
}

// Plan computes the push for one branch pair.
//
// VerdictCleanAhead plans a plain push; VerdictEmptyDestination and
// VerdictUnrelated plan a force push. VerdictDiverged returns
// ErrBranchDiverged naming the branch and both commits; no push is planned.
func (r *PushRouter) Plan(
	pair domain.BranchPair,
	div domain.Divergence,
	kind domain.RepositoryKind,
) (domain.PushPlan, error) {
	if div.Verdict == domain.VerdictDiverged {
		return domain.PushPlan{}, fmt.Errorf(
			"%w: branch %q is at %s but the common ancestor with source is %s; refusing to overwrite",
			domain.ErrBranchDiverged,
			pair.Destination,
			div.DestinationCommit.Abbrev(),
			div.MergeBase.Abbrev(),
		)
	}

	plan := domain.PushPlan{
		LocalRef:  "refs/remotes/source/" + pair.Source,
		RemoteRef: destinationRef(pair.Destination, kind),
		Force:     div.Verdict != domain.VerdictCleanAhead,
	}
	return plan, nil
}

// Execute runs the planned push against the destination. On Gerrit a plain
// push may be rejected even when the commit already exists as a pending
// change, so a non-force rejection there is retried once with force.
func (r *PushRouter) Execute(
	ctx context.Context,
	cred domain.Credential,
	plan domain.PushPlan,
	kind domain.RepositoryKind,
) error {
	err := r.transport.Push(ctx, "origin", cred, plan.Refspec(), plan.Force)
	if err == nil {
		return nil
	}

	if kind == domain.KindGerrit && !plan.Force && errors.Is(err, domain.ErrPushRejected) {
		r.logger.Warn(ctx, "push rejected, retrying with force", map[string]interface{}{
			"refspec": plan.Refspec(),
			"error":   err.Error(),
		})
		return r.transport.Push(ctx, "origin", cred, plan.Refspec(), true)
	}

	return err
}

// destinationRef returns the destination-side refspec for a branch:
// refs/heads/* for standard remotes, refs/for/* for Gerrit review queues.
func destinationRef(branch string, kind domain.RepositoryKind) string {
	if kind == domain.KindGerrit {
		return "refs/for/" + branch
	}
	return "refs/heads/" + branch
}
