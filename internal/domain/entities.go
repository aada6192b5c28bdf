// Package domain defines the core business entities and interfaces for repo-mirror.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"regexp"
	"strings"
)

// CommitID is a content hash naming a commit. The zero value (NoCommit)
// means the ref it was resolved from does not exist.
type CommitID string

// NoCommit is the CommitID of a ref that could not be resolved.
const NoCommit CommitID = ""

// Exists reports whether the CommitID names an actual commit.
func (c CommitID) Exists() bool {
	return c != NoCommit
}

// Abbrev returns the abbreviated form of the commit hash for display.
func (c CommitID) Abbrev() string {
	const abbrevLen = 8
	if len(c) <= abbrevLen {
		return string(c)
	}
	return string(c[:abbrevLen])
}

// DivergenceVerdict classifies a destination ref relative to a source ref.
type DivergenceVerdict int

const (
	// VerdictEmptyDestination means the destination ref does not exist.
	VerdictEmptyDestination DivergenceVerdict = iota

	// VerdictCleanAhead means the destination shares history with the source
	// and has no commits of its own; a plain push cannot discard anything.
	VerdictCleanAhead

	// VerdictDiverged means the destination has commits not present in the
	// source. Syncing would discard them, so the run must be blocked.
	VerdictDiverged

	// VerdictUnrelated means both refs exist but share no common ancestor.
	VerdictUnrelated
)

// String returns a human-readable name for the verdict.
func (v DivergenceVerdict) String() string {
	switch v {
	case VerdictEmptyDestination:
		return "empty-destination"
	case VerdictCleanAhead:
		return "clean-ahead"
	case VerdictDiverged:
		return "diverged"
	case VerdictUnrelated:
		return "unrelated"
	default:
		return "unknown"
	}
}

// Divergence is the full result of a divergence check: the verdict plus the
// commits it was derived from, kept for error reporting and logging.
type Divergence struct {
	Verdict           DivergenceVerdict
	SourceCommit      CommitID
	DestinationCommit CommitID
	MergeBase         CommitID
}

// RepositoryKind classifies a destination repository's push protocol.
type RepositoryKind int

const (
	// KindStandard is a plain git hosting destination (refs/heads/* pushes).
	KindStandard RepositoryKind = iota

	// KindGerrit is a Gerrit review system (refs/for/* pushes).
	KindGerrit
)

// String returns a human-readable name for the repository kind.
func (k RepositoryKind) String() string {
	if k == KindGerrit {
		return "gerrit"
	}
	return "standard"
}

// gerritPathSegment matches a "/r/" path segment in a repository URL.
var gerritPathSegment = regexp.MustCompile(`/r(/|$)`)

// DetectRepositoryKind classifies a repository URL as Gerrit or standard.
// Gerrit is recognized by the substring "gerrit", the SSH review port 29418,
// or a "/r/" path segment. The kind is derived once per URL per run.
func DetectRepositoryKind(url string) RepositoryKind {
	lower := strings.ToLower(url)
	if strings.Contains(lower, "gerrit") {
		return KindGerrit
	}
	if strings.Contains(lower, ":29418") {
		return KindGerrit
	}
	if gerritPathSegment.MatchString(lower) {
		return KindGerrit
	}
	return KindStandard
}

// Credential is an access credential for a remote repository. The zero value
// means no credential (public remote or ambient SSH identity).
type Credential struct {
	// Token is a PAT-style or installation access token for HTTPS remotes.
	Token string
}

// HasToken reports whether the credential carries an HTTPS token.
func (c Credential) HasToken() bool {
	return c.Token != ""
}

// RepoRef identifies a remote repository: a URL plus an access credential.
// Immutable once constructed.
type RepoRef struct {
	URL        string
	Credential Credential
}

// BranchPair maps one source branch to one destination branch.
type BranchPair struct {
	Source      string
	Destination string
}

// BranchMapping is the full branch plan for one sync run: the ordered pairs
// to sync and the destination-only branches that are deletion candidates.
type BranchMapping struct {
	Pairs []BranchPair

	// DeleteCandidates are destination branches that no pair maps onto.
	// They are removed best-effort in all-branch mode.
	DeleteCandidates []string
}

// PushPlan is a fully computed push: local refspec side, remote refspec
// side, and whether --force is required.
type PushPlan struct {
	LocalRef  string
	RemoteRef string
	Force     bool
}

// Refspec returns the plan as a git refspec argument.
func (p PushPlan) Refspec() string {
	return p.LocalRef + ":" + p.RemoteRef
}

// SyncInput carries the parameters of one mirror run.
type SyncInput struct {
	Source      RepoRef
	Destination RepoRef

	SourceBranch      string
	DestinationBranch string

	// AllBranches enables all-branch mode: every source branch is mirrored
	// and destination-only branches are deleted best-effort.
	AllBranches bool

	// SyncTags is "true" for all tags, a substring/regexp pattern for a
	// subset, or empty for no tag sync.
	SyncTags string

	// MainFallback substitutes main/master when the configured source
	// branch does not exist.
	MainFallback bool

	// WorkDir is the directory the destination is cloned into. When empty
	// the syncer creates a temporary directory.
	WorkDir string
}

// SyncReport summarizes a completed mirror run.
type SyncReport struct {
	// BranchesPushed are destination branch names that were pushed.
	BranchesPushed []string

	// BranchesSkipped are source branches skipped because the source ref
	// was missing at push time.
	BranchesSkipped []string

	// BranchesDeleted are destination-only branches removed in
	// all-branch mode.
	BranchesDeleted []string

	// TagsPushed are tag names pushed, or ["*"] when all tags were pushed
	// in a single operation.
	TagsPushed []string
}

// userinfoPattern matches the userinfo portion of a URL so that embedded
// credentials never reach a log line.
var userinfoPattern = regexp.MustCompile(`^(\w+://)[^/@]+@`)

// RedactURL strips any userinfo from a repository URL before logging.
func RedactURL(url string) string {
	return userinfoPattern.ReplaceAllString(url, "${1}***@")
}
