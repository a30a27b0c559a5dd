// Package memfs is the in-process API surface: a
// program-owned, in-memory directory tree that can also be mounted as a
// host FUSE filesystem so other processes see the same state.
package memfs

import (
	"time"

	"github.com/augustgoad/memfs/mount"
	"github.com/augustgoad/memfs/tree"
)

const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// Handle re-exports tree.Handle as the typed node handle returned by FS's
// create and lookup methods.
type Handle = tree.Handle

// Stat re-exports tree.Stat.
type Stat = tree.Stat

// Kind is one of tree.NotFound, tree.AlreadyExists, etc.
type Kind = tree.Kind

// These mirror the tree package's sentinel Kinds, for callers that only
// import memfs.
const (
	NotFound        = tree.NotFound
	AlreadyExists   = tree.AlreadyExists
	NotDirectory    = tree.NotDirectory
	IsDirectory     = tree.IsDirectory
	NotEmpty        = tree.NotEmpty
	InvalidArgument = tree.InvalidArgument
	LoopDetected    = tree.LoopDetected
	BadHandle       = tree.BadHandle
	MountFailure    = tree.MountFailure
)

// MountOptions re-exports mount.Options.
type MountOptions = mount.Options

// MountHandle re-exports mount.Handle.
type MountHandle = mount.Handle

// FS is a program-owned, in-memory filesystem: the top-level handle
// created with New and shared between the owning process and, once
// mounted, the host kernel.
type FS struct {
	tree *tree.Tree
}

// New creates an empty filesystem containing only the root directory.
func New() *FS {
	return &FS{tree: tree.New()}
}

// Tree exposes the underlying tree.Tree for callers that want the full
// path-keyed API (component C) directly rather than FS's default-mode
// convenience wrappers.
func (fs *FS) Tree() *tree.Tree { return fs.tree }

// CreateFile creates a new file at path with data and the default mode
// (0644). Use CreateFileMode for an explicit mode.
func (fs *FS) CreateFile(path string, data []byte) (Handle, error) {
	return fs.tree.CreateFile(path, data, defaultFileMode)
}

// CreateFileMode is CreateFile with an explicit mode.
func (fs *FS) CreateFileMode(path string, data []byte, mode uint32) (Handle, error) {
	return fs.tree.CreateFile(path, data, mode)
}

// CreateDir creates a new directory at path with the default mode (0755).
func (fs *FS) CreateDir(path string) (Handle, error) {
	return fs.tree.CreateDir(path, defaultDirMode)
}

// CreateDirMode is CreateDir with an explicit mode.
func (fs *FS) CreateDirMode(path string, mode uint32) (Handle, error) {
	return fs.tree.CreateDir(path, mode)
}

// Symlink creates a symlink at path pointing at target, stored verbatim.
func (fs *FS) Symlink(target, path string) (Handle, error) {
	return fs.tree.Symlink(target, path)
}

// Makedirs recursively creates every missing intermediate directory,
// using the default mode (0755) for any it creates.
func (fs *FS) Makedirs(path string) (Handle, error) {
	return fs.tree.Makedirs(path, defaultDirMode)
}

// Get resolves path without following a terminal symlink.
func (fs *FS) Get(path string) (Handle, error) { return fs.tree.Get(path) }

// Exists reports whether Get would succeed.
func (fs *FS) Exists(path string) bool { return fs.tree.Exists(path) }

// ListDir returns path's current child names.
func (fs *FS) ListDir(path string) ([]string, error) { return fs.tree.ListDir(path) }

// RemoveFile unlinks the file or symlink at path.
func (fs *FS) RemoveFile(path string) error { return fs.tree.RemoveFile(path) }

// RemoveDir unlinks the (empty) directory at path.
func (fs *FS) RemoveDir(path string) error { return fs.tree.RemoveDir(path) }

// Rename atomically moves src to dst.
func (fs *FS) Rename(src, dst string) error { return fs.tree.Rename(src, dst) }

// Readlink returns a symlink's target verbatim.
func (fs *FS) Readlink(path string) ([]byte, error) { return fs.tree.Readlink(path) }

// IsSymlink reports whether path resolves to a symlink.
func (fs *FS) IsSymlink(path string) bool { return fs.tree.IsSymlink(path) }

// Chmod sets path's permission bits.
func (fs *FS) Chmod(path string, mode uint32) error { return fs.tree.Chmod(path, mode) }

// Chown sets path's owning uid/gid.
func (fs *FS) Chown(path string, uid, gid uint32) error { return fs.tree.Chown(path, uid, gid) }

// Utime sets path's atime/mtime explicitly.
func (fs *FS) Utime(path string, atime, mtime time.Time) error {
	return fs.tree.Utime(path, atime, mtime)
}

// Mount binds this filesystem at mountPoint on the host and returns a
// scoped handle; callers must call Unmount (or defer it) to release the
// host mount connection.
func (fs *FS) Mount(mountPoint string, opts MountOptions) (*MountHandle, error) {
	return mount.Mount(fs.tree, mountPoint, opts)
}
