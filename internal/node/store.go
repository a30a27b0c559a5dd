package node

import "sync/atomic"

// RootIno is the fixed inode number of the tree root, stable so kernel
// getattr on the mount point never changes.
const RootIno = 1

// Store owns every live node, keyed by inode. It allocates inode numbers
// from a monotonic counter and never reuses one within a tree's lifetime.
// Store itself does not lock; package tree serializes structural mutation
// with its own reader/writer lock and calls into Store while
// holding it.
type Store struct {
	nodes map[uint64]Node
	next  uint64 // atomic; next inode to hand out
}

// NewStore creates an empty store and inserts the root directory at
// RootIno.
func NewStore() (*Store, *Dir) {
	s := &Store{
		nodes: make(map[uint64]Node),
		next:  RootIno + 1,
	}
	root := &Dir{Header: Header{Ino: RootIno}}
	s.nodes[RootIno] = root
	return s, root
}

// Insert allocates a fresh inode, stores n under it and returns the
// number. It does not link n into any directory.
func (s *Store) Insert(n Node) uint64 {
	ino := atomic.AddUint64(&s.next, 1) - 1
	n.Hdr().Ino = ino
	s.nodes[ino] = n
	return ino
}

// Lookup returns the node stored at ino, or nil.
func (s *Store) Lookup(ino uint64) Node {
	return s.nodes[ino]
}

// Drop releases the storage for ino. Callers must have already verified
// the node has no parent entry and no open handles.
func (s *Store) Drop(ino uint64) {
	delete(s.nodes, ino)
}

// Count returns the number of live nodes, used by statfs's synthetic
// file count.
func (s *Store) Count() int {
	return len(s.nodes)
}
