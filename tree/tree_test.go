package tree

import (
	"errors"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augustgoad/memfs/internal/node"
)

func TestNewTreeHasRoot(t *testing.T) {
	tr := New()
	root := tr.Root()
	assert.True(t, root.IsDir())
	assert.Equal(t, uint64(1), root.Inode())
	assert.Equal(t, 1, tr.NodeCount())
}

func TestCreateFileAndReadBack(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", []byte("hello"), 0o644)
	require.NoError(t, err)
	assert.True(t, h.IsFile())
	assert.Equal(t, int64(5), h.Size())

	got, err := h.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestCreateFileAlreadyExists(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)
	_, err = tr.CreateFile("/a.txt", nil, 0o644)
	assert.True(t, errors.Is(err, AlreadyExists))
}

func TestCreateFileMissingParent(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/missing/a.txt", nil, 0o644)
	assert.True(t, errors.Is(err, NotFound))
}

func TestMakedirs(t *testing.T) {
	tr := New()
	h, err := tr.Makedirs("/a/b/c", 0o755)
	require.NoError(t, err)
	assert.True(t, h.IsDir())

	names, err := tr.ListDir("/a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names)

	// Re-running over an existing prefix succeeds and is a no-op for it.
	_, err = tr.Makedirs("/a/b/c", 0o755)
	require.NoError(t, err)
}

func TestMakedirsConflictWithFile(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/a", nil, 0o644)
	require.NoError(t, err)
	_, err = tr.Makedirs("/a/b", 0o755)
	assert.True(t, errors.Is(err, NotDirectory))
}

func TestRemoveFileAndDir(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)
	require.NoError(t, tr.RemoveFile("/a.txt"))
	assert.False(t, tr.Exists("/a.txt"))

	_, err = tr.CreateDir("/d", 0o755)
	require.NoError(t, err)
	require.NoError(t, tr.RemoveDir("/d"))
	assert.False(t, tr.Exists("/d"))
}

func TestRemoveDirNotEmpty(t *testing.T) {
	tr := New()
	_, err := tr.CreateDir("/d", 0o755)
	require.NoError(t, err)
	_, err = tr.CreateFile("/d/a.txt", nil, 0o644)
	require.NoError(t, err)

	err = tr.RemoveDir("/d")
	assert.True(t, errors.Is(err, NotEmpty))
}

func TestRemoveFileOnDirectoryFails(t *testing.T) {
	tr := New()
	_, err := tr.CreateDir("/d", 0o755)
	require.NoError(t, err)
	err = tr.RemoveFile("/d")
	assert.True(t, errors.Is(err, IsDirectory))
}

func TestRenameMovesEntry(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/a.txt", []byte("x"), 0o644)
	require.NoError(t, err)

	require.NoError(t, tr.Rename("/a.txt", "/b.txt"))
	assert.False(t, tr.Exists("/a.txt"))
	assert.True(t, tr.Exists("/b.txt"))
}

func TestRenameSamePathIsNoop(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)
	assert.NoError(t, tr.Rename("/a.txt", "/a.txt"))
	assert.True(t, tr.Exists("/a.txt"))
}

func TestRenameDirIntoOwnDescendantFails(t *testing.T) {
	tr := New()
	_, err := tr.Makedirs("/a/b", 0o755)
	require.NoError(t, err)
	err = tr.Rename("/a", "/a/b/a")
	assert.True(t, errors.Is(err, InvalidArgument))
}

func TestRenameOverwritesEmptyDestinationDir(t *testing.T) {
	tr := New()
	_, err := tr.CreateDir("/src", 0o755)
	require.NoError(t, err)
	_, err = tr.CreateDir("/dst", 0o755)
	require.NoError(t, err)

	require.NoError(t, tr.Rename("/src", "/dst"))
	assert.False(t, tr.Exists("/src"))
	assert.True(t, tr.Exists("/dst"))
}

func TestRenameOverwriteNonEmptyDestinationDirFails(t *testing.T) {
	tr := New()
	_, err := tr.CreateDir("/src", 0o755)
	require.NoError(t, err)
	_, err = tr.CreateDir("/dst", 0o755)
	require.NoError(t, err)
	_, err = tr.CreateFile("/dst/x", nil, 0o644)
	require.NoError(t, err)

	err = tr.Rename("/src", "/dst")
	assert.True(t, errors.Is(err, NotEmpty))
}

func TestSymlinkAndReadlink(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/target.txt", []byte("payload"), 0o644)
	require.NoError(t, err)
	_, err = tr.Symlink("/target.txt", "/link")
	require.NoError(t, err)

	assert.True(t, tr.IsSymlink("/link"))

	target, err := tr.Readlink("/link")
	require.NoError(t, err)
	assert.Equal(t, "/target.txt", string(target))

	// Get with the in-process API (Get never follows) sees the symlink
	// node itself, not its target.
	h, err := tr.Get("/link")
	require.NoError(t, err)
	assert.True(t, h.IsSymlink())
}

func TestSymlinkChainFollowedByResolve(t *testing.T) {
	tr := New()
	_, err := tr.CreateFile("/real.txt", []byte("data"), 0o644)
	require.NoError(t, err)
	_, err = tr.Symlink("/real.txt", "/link1")
	require.NoError(t, err)
	_, err = tr.Symlink("/link1", "/link2")
	require.NoError(t, err)

	r, err := tr.resolve("/link2", true)
	require.NoError(t, err)
	assert.Equal(t, node.KindFile, r.node.Kind())
}

func TestSymlinkLoopDetected(t *testing.T) {
	tr := New()
	_, err := tr.Symlink("/b", "/a")
	require.NoError(t, err)
	_, err = tr.Symlink("/a", "/b")
	require.NoError(t, err)

	_, err = tr.resolve("/a", true)
	assert.True(t, errors.Is(err, LoopDetected))
}

func TestChmodChown(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)

	require.NoError(t, tr.Chmod("/a.txt", 0o600))
	assert.Equal(t, uint32(0o600), h.Stat().Mode&0o7777)

	require.NoError(t, tr.Chown("/a.txt", 42, 43))
	st := h.Stat()
	assert.Equal(t, uint32(42), st.UID)
	assert.Equal(t, uint32(43), st.GID)
}

func TestHandleTableKeepsUnlinkedFileAlive(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", []byte("x"), 0o644)
	require.NoError(t, err)

	tr.AddHandle(h.Inode())
	require.NoError(t, tr.RemoveFile("/a.txt"))

	// The directory entry is gone...
	assert.False(t, tr.Exists("/a.txt"))
	// ...but the node is still reachable by inode while a handle is open.
	still, ok := tr.LookupIno(h.Inode())
	require.True(t, ok)
	assert.NotNil(t, still)
	assert.Equal(t, int64(1), tr.OpenHandleCount())

	tr.ReleaseHandle(h.Inode())
	_, ok = tr.LookupIno(h.Inode())
	assert.False(t, ok)
	assert.Equal(t, int64(0), tr.OpenHandleCount())
}

func TestListDirMatchesExpectedSet(t *testing.T) {
	tr := New()
	_, err := tr.Makedirs("/d", 0o755)
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c"} {
		_, err := tr.CreateFile("/d/"+name, nil, 0o644)
		require.NoError(t, err)
	}

	names, err := tr.ListDir("/d")
	require.NoError(t, err)

	want := map[string]bool{"a": true, "b": true, "c": true}
	got := map[string]bool{}
	for _, n := range names {
		got[n] = true
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("directory listing mismatch (-want +got):\n%s", diff)
	}
}

func TestStatfsSnapshotReflectsUsage(t *testing.T) {
	tr := New()
	before := tr.StatfsSnapshot()
	_, err := tr.CreateFile("/a.txt", make([]byte, 4096*10), 0o644)
	require.NoError(t, err)
	after := tr.StatfsSnapshot()

	assert.Equal(t, before.Files+1, after.Files)
	assert.Greater(t, before.FreeBlocks, after.FreeBlocks)
}
