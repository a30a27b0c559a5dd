package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		path string
		want []string
		ok   bool
	}{
		{"/", nil, true},
		{"/a", []string{"a"}, true},
		{"/a/b/c", []string{"a", "b", "c"}, true},
		{"/a/b/", []string{"a", "b"}, true},
		{"", nil, false},
		{"relative/path", nil, false},
		{"/a/./b", nil, false},
		{"/a/../b", nil, false},
		{"/a\x00b", nil, false},
	}
	for _, c := range cases {
		got, ok := Split(c.path)
		require.Equalf(t, c.ok, ok, "Split(%q) ok", c.path)
		if c.ok {
			assert.Equalf(t, c.want, got, "Split(%q) components", c.path)
		}
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("foo"))
	assert.True(t, ValidName("foo.txt"))
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("."))
	assert.False(t, ValidName(".."))
	assert.False(t, ValidName("a/b"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/", Join(nil))
	assert.Equal(t, "/a/b", Join([]string{"a", "b"}))
}

func TestSplitJoinRoundtrip(t *testing.T) {
	paths := []string{"/a", "/a/b/c", "/x/y"}
	for _, p := range paths {
		components, ok := Split(p)
		require.True(t, ok)
		assert.Equal(t, p, Join(components))
	}
}
