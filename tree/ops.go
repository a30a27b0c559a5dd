package tree

import (
	"os"
	"time"

	"github.com/augustgoad/memfs/internal/node"
	"github.com/augustgoad/memfs/internal/pathutil"
)

func effectiveOwner() (uint32, uint32) {
	return uint32(os.Geteuid()), uint32(os.Getegid())
}

func newHeader(mode uint32) node.Header {
	now := time.Now()
	uid, gid := effectiveOwner()
	return node.Header{Mode: mode, UID: uid, GID: gid, Atime: now, Mtime: now, Ctime: now}
}

// CreateFile creates a new regular file at path with the given initial
// contents and mode. Fails with AlreadyExists if an entry is already
// present at path.
func (t *Tree) CreateFile(path string, data []byte, mode uint32) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir, name, err := t.resolveParent(path)
	if err != nil {
		return Handle{}, err
	}
	if dir.Lookup(name) != nil {
		return Handle{}, newErr(AlreadyExists, path)
	}
	f := &node.File{Header: newHeader(mode), Data: append([]byte(nil), data...)}
	t.store.Insert(f)
	dir.Link(name, f)
	t.touchCtime(&dir.Header)
	return Handle{t: t, n: f}, nil
}

// CreateDir creates a new directory at path. Fails with AlreadyExists if
// an entry is already present.
func (t *Tree) CreateDir(path string, mode uint32) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createDirLocked(path, mode)
}

func (t *Tree) createDirLocked(path string, mode uint32) (Handle, error) {
	dir, name, err := t.resolveParent(path)
	if err != nil {
		return Handle{}, err
	}
	if dir.Lookup(name) != nil {
		return Handle{}, newErr(AlreadyExists, path)
	}
	d := &node.Dir{Header: newHeader(mode)}
	t.store.Insert(d)
	dir.Link(name, d)
	t.touchCtime(&dir.Header)
	return Handle{t: t, n: d}, nil
}

// Symlink creates a symlink at path pointing at target. target is stored
// verbatim and never validated or resolved by the engine.
func (t *Tree) Symlink(target, path string) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir, name, err := t.resolveParent(path)
	if err != nil {
		return Handle{}, err
	}
	if dir.Lookup(name) != nil {
		return Handle{}, newErr(AlreadyExists, path)
	}
	s := &node.Symlink{Header: newHeader(0o777), Target: []byte(target)}
	t.store.Insert(s)
	dir.Link(name, s)
	t.touchCtime(&dir.Header)
	return Handle{t: t, n: s}, nil
}

// Makedirs recursively creates every missing intermediate directory,
// succeeding if the final directory already exists.
func (t *Tree) Makedirs(path string, mode uint32) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	components, ok := pathutil.Split(path)
	if !ok {
		return Handle{}, newErr(InvalidArgument, path)
	}
	dir := t.root
	for i, c := range components {
		child := dir.Lookup(c)
		if child == nil {
			h, err := t.createDirLocked(pathutil.Join(components[:i+1]), mode)
			if err != nil {
				return Handle{}, err
			}
			dir = h.n.(*node.Dir)
			continue
		}
		childDir, isDir := child.(*node.Dir)
		if !isDir {
			return Handle{}, newErr(NotDirectory, pathutil.Join(components[:i+1]))
		}
		dir = childDir
	}
	return Handle{t: t, n: dir}, nil
}

// Get resolves path without following a terminal symlink.
func (t *Tree) Get(path string) (Handle, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, err := t.resolve(path, false)
	if err != nil {
		return Handle{}, err
	}
	return Handle{t: t, n: r.node}, nil
}

// Exists reports whether Get would succeed. The root and "" / "/" always
// exist.
func (t *Tree) Exists(path string) bool {
	if path == "" {
		path = "/"
	}
	_, err := t.Get(path)
	return err == nil
}

// ListDir returns path's current child names in unspecified order.
func (t *Tree) ListDir(path string) ([]string, error) {
	h, err := t.Get(path)
	if err != nil {
		return nil, err
	}
	return h.ListNames()
}

// RemoveFile unlinks the file or symlink at path.
func (t *Tree) RemoveFile(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, err := t.resolve(path, false)
	if err != nil {
		return err
	}
	if r.node.Kind() == node.KindDir {
		return newErr(IsDirectory, path)
	}
	r.parent.Unlink(r.name)
	r.node.Hdr().MarkUnlinked()
	t.touchCtime(&r.parent.Header)
	t.destroyIfCollectible(r.node)
	return nil
}

// RemoveDir unlinks the directory at path, which must be empty.
func (t *Tree) RemoveDir(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, err := t.resolve(path, false)
	if err != nil {
		return err
	}
	d, ok := r.node.(*node.Dir)
	if !ok {
		return newErr(NotDirectory, path)
	}
	if !d.Empty() {
		return newErr(NotEmpty, path)
	}
	r.parent.Unlink(r.name)
	d.MarkUnlinked()
	t.touchCtime(&r.parent.Header)
	t.destroyIfCollectible(d)
	return nil
}

// Rename is the atomic move primitive.
func (t *Tree) Rename(src, dst string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	srcR, err := t.resolve(src, false)
	if err != nil {
		return err
	}
	dstParent, dstName, err := t.resolveParent(dst)
	if err != nil {
		return err
	}

	if srcDir, ok := srcR.node.(*node.Dir); ok {
		if isAncestor(srcDir, dstParent) {
			return newErr(InvalidArgument, dst)
		}
	}

	dstExisting := dstParent.Lookup(dstName)
	if dstExisting != nil {
		if dstExisting == srcR.node {
			// Renaming a path onto itself is a
			// no-op success.
			return nil
		}
		srcIsDir := srcR.node.Kind() == node.KindDir
		dstIsDir := dstExisting.Kind() == node.KindDir
		switch {
		case dstIsDir && !srcIsDir:
			return newErr(IsDirectory, dst)
		case dstIsDir && srcIsDir:
			if !dstExisting.(*node.Dir).Empty() {
				return newErr(NotEmpty, dst)
			}
		case !dstIsDir && srcIsDir:
			return newErr(NotDirectory, dst)
		}
		dstParent.Unlink(dstName)
		dstExisting.Hdr().MarkUnlinked()
		t.destroyIfCollectible(dstExisting)
	}

	srcR.parent.Unlink(srcR.name)
	dstParent.Link(dstName, srcR.node)
	now := time.Now()
	srcR.parent.Ctime = now
	dstParent.Ctime = now
	srcR.node.Hdr().Ctime = now
	return nil
}

// Readlink returns a symlink's target verbatim.
func (t *Tree) Readlink(path string) ([]byte, error) {
	h, err := t.Get(path)
	if err != nil {
		return nil, err
	}
	return h.Target()
}

// IsSymlink reports whether path resolves to a symlink.
func (t *Tree) IsSymlink(path string) bool {
	h, err := t.Get(path)
	return err == nil && h.IsSymlink()
}

// Chmod sets path's permission bits.
func (t *Tree) Chmod(path string, mode uint32) error {
	h, err := t.Get(path)
	if err != nil {
		return err
	}
	h.SetMode(mode)
	return nil
}

// Chown sets path's owning uid/gid. A value of ^uint32(0) leaves that
// field unchanged, matching the kernel chown(2) convention.
func (t *Tree) Chown(path string, uid, gid uint32) error {
	h, err := t.Get(path)
	if err != nil {
		return err
	}
	h.SetOwner(uid, gid)
	return nil
}

// Utime sets path's atime and mtime explicitly. A zero time.Time leaves
// that field unchanged.
func (t *Tree) Utime(path string, atime, mtime time.Time) error {
	h, err := t.Get(path)
	if err != nil {
		return err
	}
	h.SetTimes(atime, mtime)
	return nil
}

// Root returns a handle to the tree's root directory.
func (t *Tree) Root() Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Handle{t: t, n: t.root}
}
