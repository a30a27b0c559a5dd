package tree

import (
	"time"

	"github.com/augustgoad/memfs/internal/node"
)

// Stat mirrors the usual stat output fields.
type Stat struct {
	Ino   uint64
	Kind  node.Kind
	Mode  uint32
	UID   uint32
	GID   uint32
	Size  int64
	Nlink uint32
	Atime time.Time
	Mtime time.Time
	Ctime time.Time
}

// Handle is a typed reference to one node, bound to the Tree it came
// from. It is the typed node handle returned by every in-process API
// surface. A Handle becomes stale if its node is removed from the tree
// after the handle was obtained; operations on a stale handle still see
// the node's last state (it is only truly gone once unreferenced by both
// a directory entry and any open kernel handle).
type Handle struct {
	t *Tree
	n node.Node
}

// Name returns the terminal path component the node is currently linked
// under (empty for the root or an unlinked node).
func (h Handle) Name() string { return h.n.Hdr().Name() }

// Inode returns the node's stable inode number.
func (h Handle) Inode() uint64 { return h.n.Hdr().Ino }

// IsDir, IsFile and IsSymlink report the node's kind.
func (h Handle) IsDir() bool     { return h.n.Kind() == node.KindDir }
func (h Handle) IsFile() bool    { return h.n.Kind() == node.KindFile }
func (h Handle) IsSymlink() bool { return h.n.Kind() == node.KindSymlink }

// Stat returns a metadata snapshot. For a file, the per-file data lock is
// also taken (shared) so a concurrent Write's length and mtime/ctime bump
// are never observed half-applied.
func (h Handle) Stat() Stat {
	if f, ok := h.n.(*node.File); ok {
		lock := h.t.fileLock(f.Ino)
		lock.RLock()
		defer lock.RUnlock()
	}
	h.t.mu.RLock()
	defer h.t.mu.RUnlock()
	return h.t.statLocked(h.n)
}

func (t *Tree) statLocked(n node.Node) Stat {
	hdr := n.Hdr()
	s := Stat{
		Ino:   hdr.Ino,
		Kind:  n.Kind(),
		Mode:  hdr.Mode,
		UID:   hdr.UID,
		GID:   hdr.GID,
		Atime: hdr.Atime,
		Mtime: hdr.Mtime,
		Ctime: hdr.Ctime,
	}
	switch v := n.(type) {
	case *node.File:
		s.Size = int64(len(v.Data))
		s.Nlink = 1
	case *node.Symlink:
		s.Size = int64(len(v.Target))
		s.Nlink = 1
	case *node.Dir:
		s.Nlink = uint32(2 + countChildDirs(v))
	}
	return s
}

func countChildDirs(d *node.Dir) int {
	n := 0
	for _, c := range d.Children {
		if c.Kind() == node.KindDir {
			n++
		}
	}
	return n
}

// Read reads up to len(p) bytes starting at off. It is a no-op error for
// a non-file handle.
func (h Handle) Read(off int64, p []byte) (int, error) {
	f, ok := h.n.(*node.File)
	if !ok {
		return 0, newErr(IsDirectory, h.n.Hdr().Name())
	}
	lock := h.t.fileLock(f.Ino)
	lock.RLock()
	defer lock.RUnlock()
	if off < 0 || off >= int64(len(f.Data)) {
		return 0, nil
	}
	return copy(p, f.Data[off:]), nil
}

// ReadAll reads the whole file.
func (h Handle) ReadAll() ([]byte, error) {
	f, ok := h.n.(*node.File)
	if !ok {
		return nil, newErr(IsDirectory, h.n.Hdr().Name())
	}
	lock := h.t.fileLock(f.Ino)
	lock.RLock()
	defer lock.RUnlock()
	out := make([]byte, len(f.Data))
	copy(out, f.Data)
	return out, nil
}

// Write writes p at offset off, growing the buffer with zero fill if
// needed, and returns the number of bytes written.
func (h Handle) Write(off int64, p []byte) (int, error) {
	f, ok := h.n.(*node.File)
	if !ok {
		return 0, newErr(IsDirectory, h.n.Hdr().Name())
	}
	lock := h.t.fileLock(f.Ino)
	lock.Lock()
	defer lock.Unlock()

	end := off + int64(len(p))
	if end > int64(len(f.Data)) {
		grown := make([]byte, end)
		copy(grown, f.Data)
		f.Data = grown
	}
	copy(f.Data[off:end], p)
	h.t.touch(&f.Header)
	return len(p), nil
}

// Truncate sets the file's length to n, zero-filling on extension and
// discarding the tail on shrink.
func (h Handle) Truncate(n int64) error {
	f, ok := h.n.(*node.File)
	if !ok {
		return newErr(IsDirectory, h.n.Hdr().Name())
	}
	lock := h.t.fileLock(f.Ino)
	lock.Lock()
	defer lock.Unlock()

	switch {
	case n == int64(len(f.Data)):
	case n < int64(len(f.Data)):
		f.Data = f.Data[:n]
	default:
		grown := make([]byte, n)
		copy(grown, f.Data)
		f.Data = grown
	}
	h.t.touch(&f.Header)
	return nil
}

// Size returns the file's current byte length.
func (h Handle) Size() int64 {
	f, ok := h.n.(*node.File)
	if !ok {
		return 0
	}
	lock := h.t.fileLock(f.Ino)
	lock.RLock()
	defer lock.RUnlock()
	return int64(len(f.Data))
}

// Target returns a symlink's stored target verbatim.
func (h Handle) Target() ([]byte, error) {
	s, ok := h.n.(*node.Symlink)
	if !ok {
		return nil, newErr(InvalidArgument, h.n.Hdr().Name())
	}
	return append([]byte(nil), s.Target...), nil
}

// SetMode sets the node's permission bits (low 12 bits significant).
func (h Handle) SetMode(mode uint32) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	const modeBits = 0o7777
	hdr := h.n.Hdr()
	hdr.Mode = (hdr.Mode &^ modeBits) | (mode & modeBits)
	h.t.touchCtime(hdr)
}

// SetOwner sets uid and/or gid; pass ^uint32(0) for a field to leave it
// unchanged, matching the kernel chown(2) convention.
func (h Handle) SetOwner(uid, gid uint32) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	hdr := h.n.Hdr()
	if uid != ^uint32(0) {
		hdr.UID = uid
	}
	if gid != ^uint32(0) {
		hdr.GID = gid
	}
	h.t.touchCtime(hdr)
}

// SetTimes sets atime and/or mtime; a zero time.Time leaves that field
// unchanged.
func (h Handle) SetTimes(atime, mtime time.Time) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	hdr := h.n.Hdr()
	if !atime.IsZero() {
		hdr.Atime = atime
	}
	if !mtime.IsZero() {
		hdr.Mtime = mtime
	}
}

// ListNames returns the directory's current child names.
func (h Handle) ListNames() ([]string, error) {
	d, ok := h.n.(*node.Dir)
	if !ok {
		return nil, newErr(NotDirectory, h.n.Hdr().Name())
	}
	h.t.mu.RLock()
	defer h.t.mu.RUnlock()
	return d.Names(), nil
}
