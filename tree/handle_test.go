package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGrowsAndZeroFills(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)

	n, err := h.Write(4, []byte("xy"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(6), h.Size())

	data, err := h.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 'x', 'y'}, data)
}

func TestTruncateShrinkAndGrow(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", []byte("hello world"), 0o644)
	require.NoError(t, err)

	require.NoError(t, h.Truncate(5))
	data, err := h.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, h.Truncate(8))
	data, err = h.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\x00\x00\x00"), data)
}

func TestReadPastEndOfFileReturnsZero(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", []byte("abc"), 0o644)
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := h.Read(10, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReadWriteOnDirectoryFails(t *testing.T) {
	tr := New()
	h, err := tr.CreateDir("/d", 0o755)
	require.NoError(t, err)

	_, err = h.Read(0, make([]byte, 1))
	assert.Error(t, err)
	_, err = h.Write(0, []byte("x"))
	assert.Error(t, err)
}

func TestSetOwnerLeavesUnsetFieldUnchanged(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)

	h.SetOwner(7, 8)
	h.SetOwner(99, ^uint32(0))

	st := h.Stat()
	assert.Equal(t, uint32(99), st.UID)
	assert.Equal(t, uint32(8), st.GID)
}

func TestListNamesOnFileFails(t *testing.T) {
	tr := New()
	h, err := tr.CreateFile("/a.txt", nil, 0o644)
	require.NoError(t, err)
	_, err = h.ListNames()
	assert.Error(t, err)
}
