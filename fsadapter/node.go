package fsadapter

import (
	"context"
	"syscall"
	"time"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/augustgoad/memfs/internal/metrics"
	"github.com/augustgoad/memfs/internal/node"
	"github.com/augustgoad/memfs/tree"
)

// Node is the single InodeEmbedder type backing every entry in the
// mount: the tree's three kinds are distinguished at call time by
// looking up the tree handle for this Inode's stable Ino, the way the
// teacher's loopbackNode dispatches on the underlying file's kind rather
// than using one Go type per FUSE node type.
type Node struct {
	gofs.Inode
	t *tree.Tree
	m *metrics.Registry
}

// record increments m's per-operation counters, if a registry was
// supplied. Every kernel-facing method funnels its result through this
// so the counters stay exhaustive without each call site having to
// remember to touch metrics directly.
func (n *Node) record(op string, errno syscall.Errno) syscall.Errno {
	if n.m == nil {
		return errno
	}
	n.m.Operations.WithLabelValues(op).Inc()
	if errno != 0 {
		n.m.Errors.WithLabelValues(errno.Error()).Inc()
	}
	return errno
}

var (
	_ = (gofs.NodeLookuper)((*Node)(nil))
	_ = (gofs.NodeGetattrer)((*Node)(nil))
	_ = (gofs.NodeSetattrer)((*Node)(nil))
	_ = (gofs.NodeReadlinker)((*Node)(nil))
	_ = (gofs.NodeOpener)((*Node)(nil))
	_ = (gofs.NodeOpendirer)((*Node)(nil))
	_ = (gofs.NodeReaddirer)((*Node)(nil))
	_ = (gofs.NodeMkdirer)((*Node)(nil))
	_ = (gofs.NodeCreater)((*Node)(nil))
	_ = (gofs.NodeUnlinker)((*Node)(nil))
	_ = (gofs.NodeRmdirer)((*Node)(nil))
	_ = (gofs.NodeRenamer)((*Node)(nil))
	_ = (gofs.NodeSymlinker)((*Node)(nil))
	_ = (gofs.NodeStatfser)((*Node)(nil))
)

// NewRoot returns the InodeEmbedder to pass to Mount for t's root. m may
// be nil, in which case operations are not counted.
func NewRoot(t *tree.Tree, m *metrics.Registry) gofs.InodeEmbedder {
	return &Node{t: t, m: m}
}

// handle resolves this Node's tree handle by the inode number go-fuse
// assigned it (which the adapter always sets equal to the tree's own
// inode, see childStable).
func (n *Node) handle() (tree.Handle, syscall.Errno) {
	ino := n.StableAttr().Ino
	h, err := n.t.HandleByIno(ino)
	if err != nil {
		return tree.Handle{}, toErrno(err)
	}
	return h, 0
}

func childStable(h tree.Handle) gofs.StableAttr {
	var mode uint32
	switch {
	case h.IsDir():
		mode = syscall.S_IFDIR
	case h.IsSymlink():
		mode = syscall.S_IFLNK
	default:
		mode = syscall.S_IFREG
	}
	return gofs.StableAttr{Mode: mode, Ino: h.Inode()}
}

func (n *Node) newChildInode(ctx context.Context, h tree.Handle) *gofs.Inode {
	child := &Node{t: n.t, m: n.m}
	return n.NewInode(ctx, child, childStable(h))
}

func fillAttr(out *fuse.Attr, s tree.Stat) {
	out.Ino = s.Ino
	out.Size = uint64(s.Size)
	out.Blocks = (out.Size + 511) / 512
	out.Nlink = s.Nlink
	out.Mode = kindBits(s.Kind) | (s.Mode & 0o7777)
	out.Owner = fuse.Owner{Uid: s.UID, Gid: s.GID}
	setTime(&out.Atime, &out.Atimensec, s.Atime)
	setTime(&out.Mtime, &out.Mtimensec, s.Mtime)
	setTime(&out.Ctime, &out.Ctimensec, s.Ctime)
	out.Blksize = 4096
}

func kindBits(k node.Kind) uint32 {
	switch k {
	case node.KindDir:
		return syscall.S_IFDIR
	case node.KindSymlink:
		return syscall.S_IFLNK
	default:
		return syscall.S_IFREG
	}
}

func setTime(sec *uint64, nsec *uint32, t time.Time) {
	*sec = uint64(t.Unix())
	*nsec = uint32(t.Nanosecond())
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, n.record("lookup", errno)
	}
	child, err := n.t.Lookup(self, name)
	if err != nil {
		return nil, n.record("lookup", toErrno(err))
	}
	fillAttr(&out.Attr, child.Stat())
	return n.newChildInode(ctx, child), n.record("lookup", 0)
}

func (n *Node) Getattr(ctx context.Context, f gofs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	self, errno := n.handle()
	if errno != 0 {
		return n.record("getattr", errno)
	}
	fillAttr(&out.Attr, self.Stat())
	return n.record("getattr", 0)
}

func (n *Node) Setattr(ctx context.Context, f gofs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	self, errno := n.handle()
	if errno != 0 {
		return n.record("setattr", errno)
	}

	if mode, ok := in.GetMode(); ok {
		self.SetMode(mode & 0o7777)
	}
	if uid, gid, ok := ownerFromSetAttr(in); ok {
		self.SetOwner(uid, gid)
	}
	if size, ok := in.GetSize(); ok {
		if err := self.Truncate(int64(size)); err != nil {
			return n.record("setattr", toErrno(err))
		}
	}
	atime, atok := in.GetATime()
	mtime, mtok := in.GetMTime()
	if atok || mtok {
		self.SetTimes(atime, mtime)
	}
	fillAttr(&out.Attr, self.Stat())
	return n.record("setattr", 0)
}

func (n *Node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, n.record("readlink", errno)
	}
	target, err := self.Target()
	if err != nil {
		return nil, n.record("readlink", toErrno(err))
	}
	return target, n.record("readlink", 0)
}

func (n *Node) Open(ctx context.Context, flags uint32) (gofs.FileHandle, uint32, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, 0, n.record("open", errno)
	}
	n.t.AddHandle(self.Inode())
	return &fileHandle{h: self, t: n.t, m: n.m}, fuse.FOPEN_KEEP_CACHE, n.record("open", 0)
}

func (n *Node) Opendir(ctx context.Context) syscall.Errno {
	_, errno := n.handle()
	return n.record("opendir", errno)
}

func (n *Node) Readdir(ctx context.Context) (gofs.DirStream, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, n.record("readdir", errno)
	}
	names, err := self.ListNames()
	if err != nil {
		return nil, n.record("readdir", toErrno(err))
	}
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		child, err := n.t.Lookup(self, name)
		if err != nil {
			continue
		}
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Ino:  child.Inode(),
			Mode: kindBits(child.Stat().Kind),
		})
	}
	return gofs.NewListDirStream(entries), n.record("readdir", 0)
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, n.record("mkdir", errno)
	}
	child, err := n.t.CreateChildDir(self, name, mode)
	if err != nil {
		return nil, n.record("mkdir", toErrno(err))
	}
	fillAttr(&out.Attr, child.Stat())
	return n.newChildInode(ctx, child), n.record("mkdir", 0)
}

func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*gofs.Inode, gofs.FileHandle, uint32, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, nil, 0, n.record("create", errno)
	}
	child, err := n.t.CreateChildFile(self, name, mode)
	if err != nil {
		return nil, nil, 0, n.record("create", toErrno(err))
	}
	n.t.AddHandle(child.Inode())
	fillAttr(&out.Attr, child.Stat())
	inode := n.newChildInode(ctx, child)
	return inode, &fileHandle{h: child, t: n.t, m: n.m}, 0, n.record("create", 0)
}

func (n *Node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	self, errno := n.handle()
	if errno != 0 {
		return nil, n.record("symlink", errno)
	}
	child, err := n.t.CreateChildSymlink(self, name, target)
	if err != nil {
		return nil, n.record("symlink", toErrno(err))
	}
	fillAttr(&out.Attr, child.Stat())
	return n.newChildInode(ctx, child), n.record("symlink", 0)
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	self, errno := n.handle()
	if errno != 0 {
		return n.record("unlink", errno)
	}
	return n.record("unlink", toErrno(n.t.UnlinkChild(self, name)))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	self, errno := n.handle()
	if errno != 0 {
		return n.record("rmdir", errno)
	}
	return n.record("rmdir", toErrno(n.t.RmdirChild(self, name)))
}

func (n *Node) Rename(ctx context.Context, name string, newParent gofs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	self, errno := n.handle()
	if errno != 0 {
		return n.record("rename", errno)
	}
	other, ok := newParent.(*Node)
	if !ok {
		return n.record("rename", syscall.EXDEV)
	}
	dst, errno := other.handle()
	if errno != 0 {
		return n.record("rename", errno)
	}
	return n.record("rename", toErrno(n.t.RenameChild(self, name, dst, newName)))
}

func (n *Node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	info := n.t.StatfsSnapshot()
	out.Bsize = info.BlockSize
	out.Frsize = info.BlockSize
	out.Blocks = info.TotalBlocks
	out.Bfree = info.FreeBlocks
	out.Bavail = info.FreeBlocks
	out.Files = info.Files
	out.Ffree = ^uint64(0) - info.Files
	out.NameLen = 255
	return n.record("statfs", 0)
}

func ownerFromSetAttr(in *fuse.SetAttrIn) (uid, gid uint32, ok bool) {
	u, uok := in.GetUID()
	g, gok := in.GetGID()
	if !uok && !gok {
		return 0, 0, false
	}
	if !uok {
		u = ^uint32(0)
	}
	if !gok {
		g = ^uint32(0)
	}
	return u, g, true
}
