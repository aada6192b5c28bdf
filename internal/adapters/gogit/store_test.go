package gogit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// testLogger is a minimal logger for testing that doesn't output anything.
type testLogger struct{}

func (l *testLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (l *testLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}

// mirrorFixture is a local repository shaped like a mirror working
// directory: a linear history with remote-tracking refs for "source" and
// "origin" plus a branch diverging from the common ancestor.
type mirrorFixture struct {
	repo *git.Repository
	dir  string

	base     plumbing.Hash // first commit, common ancestor
	tip      plumbing.Hash // second commit on top of base
	diverged plumbing.Hash // sibling of tip, also child of base
}

func setupMirrorFixture(t *testing.T) *mirrorFixture {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	f := &mirrorFixture{repo: repo, dir: dir}
	f.base = f.commit(t, "base content", "base commit")
	f.tip = f.commit(t, "tip content", "tip commit")

	// Branch off the ancestor to build a diverging sibling of tip.
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: f.base, Force: true}))
	f.diverged = f.commit(t, "diverged content", "diverged commit")

	f.setRef(t, "refs/remotes/source/main", f.tip)
	f.setRef(t, "refs/remotes/origin/main", f.base)
	f.setRef(t, "refs/remotes/origin/topic", f.diverged)
	return f
}

func (f *mirrorFixture) commit(t *testing.T, content, msg string) plumbing.Hash {
	t.Helper()

	wt, err := f.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "file.txt"), []byte(content), 0o644))
	_, err = wt.Add("file.txt")
	require.NoError(t, err)

	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash
}

func (f *mirrorFixture) setRef(t *testing.T, name string, hash plumbing.Hash) {
	t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), hash)
	require.NoError(t, f.repo.Storer.SetReference(ref))
}

func TestNewStore_NotARepository(t *testing.T) {
	store, err := NewStore(t.TempDir(), &testLogger{})

	require.Error(t, err)
	assert.Nil(t, store)
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestStore_ResolveCommit(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	commit, err := store.ResolveCommit(ctx, "refs/remotes/source/main")
	require.NoError(t, err)
	assert.Equal(t, domain.CommitID(f.tip.String()), commit)

	commit, err = store.ResolveCommit(ctx, "refs/remotes/origin/main")
	require.NoError(t, err)
	assert.Equal(t, domain.CommitID(f.base.String()), commit)
}

func TestStore_ResolveCommit_MissingRefIsNotFatal(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	commit, err := store.ResolveCommit(context.Background(), "refs/remotes/origin/does-not-exist")

	require.NoError(t, err)
	assert.Equal(t, domain.NoCommit, commit)
	assert.False(t, commit.Exists())
}

func TestStore_MergeBase_AncestorIsBase(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	base, err := store.MergeBase(context.Background(),
		"refs/remotes/origin/main", "refs/remotes/source/main")

	require.NoError(t, err)
	assert.Equal(t, domain.CommitID(f.base.String()), base)
}

func TestStore_MergeBase_DivergedSiblingsShareAncestor(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	base, err := store.MergeBase(context.Background(),
		"refs/remotes/origin/topic", "refs/remotes/source/main")

	require.NoError(t, err)
	// topic and main are siblings: their merge base is the shared parent,
	// not either tip, which is exactly the diverged shape.
	assert.Equal(t, domain.CommitID(f.base.String()), base)
	assert.NotEqual(t, domain.CommitID(f.diverged.String()), base)
}

func TestStore_MergeBase_UnresolvableRefIsError(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	_, err = store.MergeBase(context.Background(),
		"refs/remotes/origin/missing", "refs/remotes/source/main")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve")
}

func TestStore_ListRemoteBranches(t *testing.T) {
	f := setupMirrorFixture(t)
	// Symbolic HEAD markers are enumeration noise and must be excluded.
	symbolic := plumbing.NewSymbolicReference(
		plumbing.ReferenceName("refs/remotes/origin/HEAD"),
		plumbing.ReferenceName("refs/remotes/origin/main"),
	)
	require.NoError(t, f.repo.Storer.SetReference(symbolic))

	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	branches, err := store.ListRemoteBranches(context.Background(), "origin")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "topic"}, branches)

	branches, err = store.ListRemoteBranches(context.Background(), "source")
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, branches)
}

func TestStore_ListRemoteBranches_UnknownRemoteIsEmpty(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	branches, err := store.ListRemoteBranches(context.Background(), "upstream")

	require.NoError(t, err)
	assert.Empty(t, branches)
}

func TestStore_ListTags(t *testing.T) {
	f := setupMirrorFixture(t)
	_, err := f.repo.CreateTag("v1.0.0", f.tip, nil)
	require.NoError(t, err)
	_, err = f.repo.CreateTag("v2.0.0", f.diverged, nil)
	require.NoError(t, err)

	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	tags, err := store.ListTags(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1.0.0", "v2.0.0"}, tags)
}

func TestStore_ListTags_EmptyRepository(t *testing.T) {
	f := setupMirrorFixture(t)
	store, err := NewStore(f.dir, &testLogger{})
	require.NoError(t, err)

	tags, err := store.ListTags(context.Background())

	require.NoError(t, err)
	assert.Empty(t, tags)
}
