// Package domain defines the core business entities and interfaces for repo-mirror.
package domain

import (
	"context"
	"errors"
)

// Domain errors for mirror operations.
var (
	// ErrBranchDiverged indicates the destination branch has commits not
	// present in the source. This is the one unconditional hard stop: the
	// sync must never silently discard destination-only commits.
	ErrBranchDiverged = errors.New("destination branch has diverged from source")

	// ErrBranchNotFound indicates the configured source branch does not
	// exist and no fallback could be applied.
	ErrBranchNotFound = errors.New("source branch not found")

	// ErrPushRejected indicates the remote rejected a push.
	ErrPushRejected = errors.New("push rejected by remote")

	// ErrCloneFailed indicates the destination repository could not be cloned.
	ErrCloneFailed = errors.New("failed to clone destination repository")

	// ErrRepositoryNotFound indicates the work directory is not a valid
	// Git repository.
	ErrRepositoryNotFound = errors.New("git repository not found at specified path")
)

// RefStore inspects the state of the local mirror repository: a clone of
// the destination with the source fetched under the "source" remote.
type RefStore interface {
	// ResolveCommit resolves a symbolic ref to a commit. A ref that does
	// not exist yields NoCommit with a nil error; callers must treat
	// NoCommit as meaningful data, not as failure.
	ResolveCommit(ctx context.Context, ref string) (CommitID, error)

	// MergeBase returns the most recent common ancestor of two refs, or
	// NoCommit with a nil error when the refs share no history. A storage
	// failure propagates as an error, distinct from "no merge base".
	MergeBase(ctx context.Context, refA, refB string) (CommitID, error)

	// ListRemoteBranches enumerates the remote-tracking branch names for
	// the given remote (short names, symbolic HEAD excluded).
	ListRemoteBranches(ctx context.Context, remote string) ([]string, error)

	// ListTags enumerates the tag names present in the repository.
	ListTags(ctx context.Context) ([]string, error)
}

// RefStoreFactory opens a RefStore over the mirror working directory once
// the clone exists.
type RefStoreFactory func(path string) (RefStore, error)

// Transport executes transport-level git operations (clone, fetch, push)
// against the mirror working directory by delegating to the external git
// tool. Credentials are injected per operation and never embedded in URLs.
type Transport interface {
	// Clone clones the repository into dir and makes dir the working
	// directory for all subsequent operations. The remote is named "origin".
	Clone(ctx context.Context, repo RepoRef, dir string) error

	// AddRemote registers an additional named remote.
	AddRemote(ctx context.Context, name, url string) error

	// RemoveRemote deletes a named remote.
	RemoveRemote(ctx context.Context, name string) error

	// Fetch updates remote-tracking refs from the named remote, pruning
	// refs deleted upstream. When tags is true all tags are fetched too.
	Fetch(ctx context.Context, remote string, cred Credential, tags bool) error

	// Push pushes a single refspec to the named remote. A rejection is
	// reported as an error wrapping ErrPushRejected.
	Push(ctx context.Context, remote string, cred Credential, refspec string, force bool) error

	// PushAllTags pushes every local tag to the named remote.
	PushAllTags(ctx context.Context, remote string, cred Credential, force bool) error
}

// Syncer runs one complete mirror operation.
type Syncer interface {
	Sync(ctx context.Context, input SyncInput) (*SyncReport, error)
}

// ReportWriter writes the sync summary to an output destination.
type ReportWriter interface {
	WriteReport(report *SyncReport) error
}
