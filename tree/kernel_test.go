package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChildAndLookup(t *testing.T) {
	tr := New()
	root := tr.Root()

	child, err := tr.CreateChildFile(root, "a.txt", 0o644)
	require.NoError(t, err)

	got, err := tr.Lookup(root, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, child.Inode(), got.Inode())
}

func TestLookupMissingChild(t *testing.T) {
	tr := New()
	_, err := tr.Lookup(tr.Root(), "nope")
	assert.True(t, errors.Is(err, NotFound))
}

func TestHandleByInoReturnsBadHandleAfterDestroy(t *testing.T) {
	tr := New()
	root := tr.Root()
	child, err := tr.CreateChildFile(root, "a.txt", 0o644)
	require.NoError(t, err)

	require.NoError(t, tr.UnlinkChild(root, "a.txt"))
	_, err = tr.HandleByIno(child.Inode())
	assert.True(t, errors.Is(err, BadHandle))
}

func TestRenameChildAcrossDirectories(t *testing.T) {
	tr := New()
	root := tr.Root()
	srcDir, err := tr.CreateChildDir(root, "src", 0o755)
	require.NoError(t, err)
	dstDir, err := tr.CreateChildDir(root, "dst", 0o755)
	require.NoError(t, err)
	_, err = tr.CreateChildFile(srcDir, "a.txt", 0o644)
	require.NoError(t, err)

	require.NoError(t, tr.RenameChild(srcDir, "a.txt", dstDir, "b.txt"))

	_, err = tr.Lookup(srcDir, "a.txt")
	assert.True(t, errors.Is(err, NotFound))
	_, err = tr.Lookup(dstDir, "b.txt")
	assert.NoError(t, err)
}

func TestRmdirChildRejectsNonEmpty(t *testing.T) {
	tr := New()
	root := tr.Root()
	d, err := tr.CreateChildDir(root, "d", 0o755)
	require.NoError(t, err)
	_, err = tr.CreateChildFile(d, "a.txt", 0o644)
	require.NoError(t, err)

	err = tr.RmdirChild(root, "d")
	assert.True(t, errors.Is(err, NotEmpty))
}
