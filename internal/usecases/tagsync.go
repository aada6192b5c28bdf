package usecases

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// SyncAllTags is the pattern value that mirrors every tag.
const SyncAllTags = "true"

// TagSyncer fetches tags from the source and pushes them to the destination.
// Tags are assumed immutable once created; there is no divergence check.
type TagSyncer struct {
	transport domain.Transport
	refs      domain.RefStore
	logger    Logger
}

// NewTagSyncer creates a tag syncer over the given transport and ref store.
func NewTagSyncer(transport domain.Transport, refs domain.RefStore, log Logger) *TagSyncer {
	return &TagSyncer{
		transport: transport,
		refs:      refs,
		logger:    log,
	}
}

// Sync mirrors tags according to the pattern: "true" pushes every tag in one
// operation, any other non-empty value selects tags by substring or regexp
// match and pushes them one by one, and an empty pattern is a no-op.
// Standard destinations are pushed with force; Gerrit destinations are
// pushed without force and retried once with force on rejection.
//
// Returns the names of the tags pushed ("*" for the all-tags push).
func (t *TagSyncer) Sync(
	ctx context.Context,
	source, dest domain.RepoRef,
	pattern string,
	kind domain.RepositoryKind,
) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}

	if err := t.transport.Fetch(ctx, "source", source.Credential, true); err != nil {
		return nil, fmt.Errorf("failed to fetch tags from source: %w", err)
	}

	if pattern == SyncAllTags {
		if err := t.pushAllTags(ctx, dest.Credential, kind); err != nil {
			return nil, err
		}
		return []string{"*"}, nil
	}

	tags, err := t.refs.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tags: %w", err)
	}

	matched := filterTags(tags, pattern)
	if len(matched) == 0 {
		t.logger.Info(ctx, "no tags matched pattern", map[string]interface{}{
			"pattern": pattern,
		})
		return nil, nil
	}

	for _, tag := range matched {
		refspec := "refs/tags/" + tag + ":refs/tags/" + tag
		if err := t.pushWithRetry(ctx, dest.Credential, refspec, kind); err != nil {
			return nil, fmt.Errorf("failed to push tag %q: %w", tag, err)
		}
		t.logger.Info(ctx, "pushed tag", map[string]interface{}{
			"tag": tag,
		})
	}

	return matched, nil
}

// pushAllTags pushes every local tag: forced on standard destinations,
// plain-then-forced-retry on Gerrit.
func (t *TagSyncer) pushAllTags(ctx context.Context, cred domain.Credential, kind domain.RepositoryKind) error {
	if kind != domain.KindGerrit {
		return t.transport.PushAllTags(ctx, "origin", cred, true)
	}

	err := t.transport.PushAllTags(ctx, "origin", cred, false)
	if err != nil && errors.Is(err, domain.ErrPushRejected) {
		t.logger.Warn(ctx, "tag push rejected, retrying with force", map[string]interface{}{
			"error": err.Error(),
		})
		return t.transport.PushAllTags(ctx, "origin", cred, true)
	}
	return err
}

func (t *TagSyncer) pushWithRetry(
	ctx context.Context,
	cred domain.Credential,
	refspec string,
	kind domain.RepositoryKind,
) error {
	if kind != domain.KindGerrit {
		return t.transport.Push(ctx, "origin", cred, refspec, true)
	}

	err := t.transport.Push(ctx, "origin", cred, refspec, false)
	if err != nil && errors.Is(err, domain.ErrPushRejected) {
		t.logger.Warn(ctx, "tag push rejected, retrying with force", map[string]interface{}{
			"refspec": refspec,
			"error":   err.Error(),
		})
		return t.transport.Push(ctx, "origin", cred, refspec, true)
	}
	return err
}

// filterTags selects tags matching the pattern as a substring or, when the
// pattern compiles, as a regular expression.
func filterTags(tags []string, pattern string) []string {
	re, reErr := regexp.Compile(pattern)

	var matched []string
	for _, tag := range tags {
		if strings.Contains(tag, pattern) {
			matched = append(matched, tag)
			continue
		}
		if reErr == nil && re.MatchString(tag) {
			matched = append(matched, tag)
		}
	}
	return matched
}
