package fsadapter

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/augustgoad/memfs/tree"
)

func TestToErrnoMapsTreeErrors(t *testing.T) {
	cases := []struct {
		kind tree.Kind
		want syscall.Errno
	}{
		{tree.NotFound, syscall.ENOENT},
		{tree.AlreadyExists, syscall.EEXIST},
		{tree.NotDirectory, syscall.ENOTDIR},
		{tree.IsDirectory, syscall.EISDIR},
		{tree.NotEmpty, syscall.ENOTEMPTY},
		{tree.InvalidArgument, syscall.EINVAL},
		{tree.LoopDetected, syscall.ELOOP},
		{tree.BadHandle, syscall.EBADF},
	}
	for _, c := range cases {
		err := &tree.Error{Kind: c.kind, Path: "/x"}
		assert.Equal(t, c.want, toErrno(err))
	}
}

func TestToErrnoNilIsOK(t *testing.T) {
	assert.Equal(t, fsOK, toErrno(nil))
}

func TestToErrnoBareKindSentinel(t *testing.T) {
	// Some call sites compare against a bare Kind via errors.Is without
	// wrapping in *tree.Error; toErrno must still map it correctly.
	assert.Equal(t, syscall.ENOENT, toErrno(tree.NotFound))
}

func TestToErrnoUnknownFallsBackToEIO(t *testing.T) {
	assert.Equal(t, syscall.EIO, toErrno(errors.New("boom")))
}
