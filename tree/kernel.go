package tree

import (
	"time"

	"github.com/augustgoad/memfs/internal/node"
)

// This file is the kernel adapter's entry point into the tree: every
// operation here is keyed by an already-resolved parent Handle plus a
// single name, matching how FUSE requests arrive (parent inode + name),
// rather than by a full path like the rest of package tree's API. It
// still goes through the same structural lock and node store as the
// path-based operations, so the two call styles observe each other
// without re-walking a path.

// HandleByIno resolves a Handle for a live inode number, or BadHandle if
// the node has been destroyed (e.g. the tree was torn down, or the entry
// was removed and the last open handle just closed).
func (t *Tree) HandleByIno(ino uint64) (Handle, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.store.Lookup(ino)
	if n == nil {
		return Handle{}, newErr(BadHandle, "")
	}
	return Handle{t: t, n: n}, nil
}

func asDir(h Handle) (*node.Dir, error) {
	d, ok := h.n.(*node.Dir)
	if !ok {
		return nil, newErr(NotDirectory, h.n.Hdr().Name())
	}
	return d, nil
}

// Lookup finds the child named name within parent.
func (t *Tree) Lookup(parent Handle, name string) (Handle, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	dir, err := asDir(parent)
	if err != nil {
		return Handle{}, err
	}
	child := dir.Lookup(name)
	if child == nil {
		return Handle{}, newErr(NotFound, name)
	}
	return Handle{t: t, n: child}, nil
}

// CreateChildFile creates an empty regular file named name under parent.
func (t *Tree) CreateChildFile(parent Handle, name string, mode uint32) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dir, err := asDir(parent)
	if err != nil {
		return Handle{}, err
	}
	if dir.Lookup(name) != nil {
		return Handle{}, newErr(AlreadyExists, name)
	}
	f := &node.File{Header: newHeader(mode)}
	t.store.Insert(f)
	dir.Link(name, f)
	t.touchCtime(&dir.Header)
	return Handle{t: t, n: f}, nil
}

// CreateChildDir creates a directory named name under parent.
func (t *Tree) CreateChildDir(parent Handle, name string, mode uint32) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dir, err := asDir(parent)
	if err != nil {
		return Handle{}, err
	}
	if dir.Lookup(name) != nil {
		return Handle{}, newErr(AlreadyExists, name)
	}
	d := &node.Dir{Header: newHeader(mode)}
	t.store.Insert(d)
	dir.Link(name, d)
	t.touchCtime(&dir.Header)
	return Handle{t: t, n: d}, nil
}

// CreateChildSymlink creates a symlink named name under parent.
func (t *Tree) CreateChildSymlink(parent Handle, name, target string) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dir, err := asDir(parent)
	if err != nil {
		return Handle{}, err
	}
	if dir.Lookup(name) != nil {
		return Handle{}, newErr(AlreadyExists, name)
	}
	s := &node.Symlink{Header: newHeader(0o777), Target: []byte(target)}
	t.store.Insert(s)
	dir.Link(name, s)
	t.touchCtime(&dir.Header)
	return Handle{t: t, n: s}, nil
}

// UnlinkChild removes the file or symlink named name from parent.
func (t *Tree) UnlinkChild(parent Handle, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	dir, err := asDir(parent)
	if err != nil {
		return err
	}
	child := dir.Lookup(name)
	if child == nil {
		return newErr(NotFound, name)
	}
	if child.Kind() == node.KindDir {
		return newErr(IsDirectory, name)
	}
	dir.Unlink(name)
	child.Hdr().MarkUnlinked()
	t.touchCtime(&dir.Header)
	t.destroyIfCollectible(child)
	return nil
}

// RmdirChild removes the empty directory named name from parent.
func (t *Tree) RmdirChild(parent Handle, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	dir, err := asDir(parent)
	if err != nil {
		return err
	}
	child := dir.Lookup(name)
	if child == nil {
		return newErr(NotFound, name)
	}
	childDir, ok := child.(*node.Dir)
	if !ok {
		return newErr(NotDirectory, name)
	}
	if !childDir.Empty() {
		return newErr(NotEmpty, name)
	}
	dir.Unlink(name)
	childDir.MarkUnlinked()
	t.touchCtime(&dir.Header)
	t.destroyIfCollectible(childDir)
	return nil
}

// RenameChild moves name from srcParent to newName under dstParent.
func (t *Tree) RenameChild(srcParent Handle, name string, dstParent Handle, newName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	src, err := asDir(srcParent)
	if err != nil {
		return err
	}
	dst, err := asDir(dstParent)
	if err != nil {
		return err
	}
	child := src.Lookup(name)
	if child == nil {
		return newErr(NotFound, name)
	}
	if childDir, ok := child.(*node.Dir); ok && isAncestor(childDir, dst) {
		return newErr(InvalidArgument, newName)
	}

	existing := dst.Lookup(newName)
	if existing != nil {
		if existing == child {
			return nil
		}
		srcIsDir := child.Kind() == node.KindDir
		dstIsDir := existing.Kind() == node.KindDir
		switch {
		case dstIsDir && !srcIsDir:
			return newErr(IsDirectory, newName)
		case dstIsDir && srcIsDir:
			if !existing.(*node.Dir).Empty() {
				return newErr(NotEmpty, newName)
			}
		case !dstIsDir && srcIsDir:
			return newErr(NotDirectory, newName)
		}
		dst.Unlink(newName)
		existing.Hdr().MarkUnlinked()
		t.destroyIfCollectible(existing)
	}

	src.Unlink(name)
	dst.Link(newName, child)
	now := time.Now()
	src.Ctime = now
	dst.Ctime = now
	child.Hdr().Ctime = now
	return nil
}

// StatfsInfo is the plain data behind the tree's synthetic statfs:
// block size 4096, a fixed total of 64 GiB worth of blocks (not derived
// from available memory), free = total - used, files = current node
// count. It is deliberately free of
// any FUSE type so package tree stays kernel-agnostic; fsadapter fills
// the wire struct from this.
type StatfsInfo struct {
	BlockSize   uint32
	TotalBlocks uint64
	FreeBlocks  uint64
	Files       uint64
}

// StatfsSnapshot returns the synthetic totals for this tree.
func (t *Tree) StatfsSnapshot() StatfsInfo {
	const blockSize = 4096
	// No real backing storage, so report a fixed synthetic total that
	// does not depend on the host's or the process's memory, and
	// derive free from current usage so df reports something sane
	// rather than a constant.
	const totalBytes = 64 << 30 // 64Gi, an arbitrary large ephemeral ceiling
	used := t.approxBytesUsed()
	total := uint64(totalBytes / blockSize)
	usedBlocks := (used + blockSize - 1) / blockSize
	free := total
	if usedBlocks < total {
		free = total - usedBlocks
	} else {
		free = 0
	}
	return StatfsInfo{
		BlockSize:   blockSize,
		TotalBlocks: total,
		FreeBlocks:  free,
		Files:       uint64(t.NodeCount()),
	}
}

func (t *Tree) approxBytesUsed() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total uint64
	var walk func(d *node.Dir)
	walk = func(d *node.Dir) {
		for _, c := range d.Children {
			switch v := c.(type) {
			case *node.File:
				total += uint64(len(v.Data))
			case *node.Symlink:
				total += uint64(len(v.Target))
			case *node.Dir:
				walk(v)
			}
		}
	}
	walk(t.root)
	return total
}
