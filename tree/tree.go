// Package tree implements the typed, concurrency-safe in-memory
// filesystem tree: a typed, path-keyed Tree API built on top of the node
// store (internal/node) and the path resolver below.
//
// A single reader/writer lock guards all directory-entry structure; each
// file's byte buffer has its own lock so bulk I/O does not block unrelated
// metadata operations.
package tree

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/augustgoad/memfs/internal/node"
)

const maxSymlinkChain = 40

// Tree is the root handle for one in-memory filesystem. It is safe for
// concurrent use by any number of goroutines — the owning process's
// in-process callers and the kernel adapter's worker alike.
type Tree struct {
	mu    sync.RWMutex // structural lock: directory entries, node existence
	store *node.Store
	root  *node.Dir

	fileLocks sync.Map // ino uint64 -> *sync.RWMutex, per-file data lock

	openHandles int64 // atomic; aggregate open kernel handles, for metrics
}

// New creates an empty tree containing only the root directory (inode 1,
// mode 0o755).
func New() *Tree {
	store, root := node.NewStore()
	now := time.Now()
	root.Mode = 0o755
	root.Atime, root.Mtime, root.Ctime = now, now, now
	return &Tree{store: store, root: root}
}

func (t *Tree) touch(h *node.Header) {
	h.Mtime = time.Now()
	h.Ctime = h.Mtime
}

func (t *Tree) touchCtime(h *node.Header) {
	h.Ctime = time.Now()
}

// fileLock returns the per-file data lock for ino, creating it on first
// use. Held independently of the structural lock.
func (t *Tree) fileLock(ino uint64) *sync.RWMutex {
	v, _ := t.fileLocks.LoadOrStore(ino, &sync.RWMutex{})
	return v.(*sync.RWMutex)
}

func (t *Tree) dropFileLock(ino uint64) {
	t.fileLocks.Delete(ino)
}

// NodeCount returns the number of live nodes, for statfs.
func (t *Tree) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Count()
}

// LookupIno fetches a live node by inode number under the structural
// lock. Used by the kernel adapter, whose handle table tracks inodes
// rather than paths.
func (t *Tree) LookupIno(ino uint64) (node.Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.store.Lookup(ino)
	return n, n != nil
}

// destroyIfCollectible drops n from the store if it has no parent entry
// and no open handles. Called after unlink/rmdir/rename-over and after a
// kernel Release. Caller must hold the structural write lock.
func (t *Tree) destroyIfCollectible(n node.Node) {
	h := n.Hdr()
	if h.Unlinked() && h.HandleCount() == 0 {
		t.store.Drop(h.Ino)
		if n.Kind() == node.KindFile {
			t.dropFileLock(h.Ino)
		}
	}
}

// ReleaseHandle is called by the kernel adapter when a file handle
// closes. It drops the handle count and destroys the node if it is now
// unreferenced.
func (t *Tree) ReleaseHandle(ino uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.store.Lookup(ino)
	if n == nil {
		return
	}
	atomic.AddInt64(&t.openHandles, -1)
	if n.Hdr().DropHandle() {
		t.destroyIfCollectible(n)
	}
}

// AddHandle is called by the kernel adapter when a node is opened.
func (t *Tree) AddHandle(ino uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := t.store.Lookup(ino); n != nil {
		n.Hdr().AddHandle()
		atomic.AddInt64(&t.openHandles, 1)
	}
}

// OpenHandleCount returns the number of currently open kernel handles
// across the whole tree, for metrics.
func (t *Tree) OpenHandleCount() int64 {
	return atomic.LoadInt64(&t.openHandles)
}
