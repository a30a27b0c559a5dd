package fsadapter

import (
	"context"
	"syscall"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/augustgoad/memfs/internal/metrics"
	"github.com/augustgoad/memfs/tree"
)

// fileHandle is the FileHandle returned by Node.Open and Node.Create. It
// forwards straight to the tree.Handle's byte-range operations; the
// open-handle bookkeeping (the handle table) lives on the
// node itself via Tree.AddHandle/ReleaseHandle, keyed by inode rather
// than by a separately allocated handle id.
type fileHandle struct {
	h tree.Handle
	t *tree.Tree
	m *metrics.Registry
}

func (f *fileHandle) record(op string, errno syscall.Errno) syscall.Errno {
	if f.m == nil {
		return errno
	}
	f.m.Operations.WithLabelValues(op).Inc()
	if errno != 0 {
		f.m.Errors.WithLabelValues(errno.Error()).Inc()
	}
	return errno
}

var (
	_ = (gofs.FileReader)((*fileHandle)(nil))
	_ = (gofs.FileWriter)((*fileHandle)(nil))
	_ = (gofs.FileFlusher)((*fileHandle)(nil))
	_ = (gofs.FileReleaser)((*fileHandle)(nil))
	_ = (gofs.FileFsyncer)((*fileHandle)(nil))
	_ = (gofs.FileGetattrer)((*fileHandle)(nil))
)

func (f *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := f.h.Read(off, dest)
	if err != nil {
		return nil, f.record("read", toErrno(err))
	}
	return fuse.ReadResultData(dest[:n]), f.record("read", 0)
}

func (f *fileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	n, err := f.h.Write(off, data)
	if err != nil {
		return 0, f.record("write", toErrno(err))
	}
	return uint32(n), f.record("write", 0)
}

func (f *fileHandle) Flush(ctx context.Context) syscall.Errno {
	return 0
}

// Release drops this handle's reference. Once the
// count reaches zero and the node has been unlinked, the node is
// destroyed for good.
func (f *fileHandle) Release(ctx context.Context) syscall.Errno {
	f.t.ReleaseHandle(f.h.Inode())
	return 0
}

// Fsync is a no-op returning success: memory-resident data is always
// "persisted".
func (f *fileHandle) Fsync(ctx context.Context, flags uint32) syscall.Errno {
	return 0
}

func (f *fileHandle) Getattr(ctx context.Context, out *fuse.AttrOut) syscall.Errno {
	fillAttr(&out.Attr, f.h.Stat())
	return 0
}
