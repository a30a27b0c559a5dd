// Package fsadapter is the kernel adapter: it translates
// FUSE requests, delivered through github.com/hanwen/go-fuse/v2/fs, into
// calls against package tree, and maps tree errors back onto the
// kernel's errno protocol.
package fsadapter

import (
	"errors"
	"syscall"

	"github.com/augustgoad/memfs/tree"
)

// toErrno maps a tree.Error (or nil) to the kernel error-number protocol,
// per the engine's error taxonomy.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return fsOK
	}
	var te *tree.Error
	if errors.As(err, &te) {
		return kindErrno(te.Kind)
	}
	switch {
	case errors.Is(err, tree.NotFound):
		return syscall.ENOENT
	case errors.Is(err, tree.AlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, tree.NotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, tree.IsDirectory):
		return syscall.EISDIR
	case errors.Is(err, tree.NotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, tree.InvalidArgument):
		return syscall.EINVAL
	case errors.Is(err, tree.LoopDetected):
		return syscall.ELOOP
	case errors.Is(err, tree.BadHandle):
		return syscall.EBADF
	}
	return syscall.EIO
}

func kindErrno(k tree.Kind) syscall.Errno {
	switch k {
	case tree.NotFound:
		return syscall.ENOENT
	case tree.AlreadyExists:
		return syscall.EEXIST
	case tree.NotDirectory:
		return syscall.ENOTDIR
	case tree.IsDirectory:
		return syscall.EISDIR
	case tree.NotEmpty:
		return syscall.ENOTEMPTY
	case tree.InvalidArgument:
		return syscall.EINVAL
	case tree.LoopDetected:
		return syscall.ELOOP
	case tree.BadHandle:
		return syscall.EBADF
	default:
		return syscall.EIO
	}
}

// fsOK is the go-fuse convention for "no error": the zero syscall.Errno.
const fsOK = syscall.Errno(0)
