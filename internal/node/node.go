// Package node implements the node store: the inode-keyed collection of
// files, directories and symlinks that back an in-memory filesystem tree.
// It knows nothing about paths or the kernel; callers (package tree) supply
// names and directory structure.
package node

import "time"

// Kind tags which of the three node variants a Node holds.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Header is the metadata common to every node.
type Header struct {
	Ino      uint64
	Mode     uint32
	UID, GID uint32
	Atime    time.Time
	Mtime    time.Time
	Ctime    time.Time

	// parent and name locate this node within the tree; both are empty
	// for the root. They are maintained by package tree on link/unlink,
	// not by the store itself.
	parent *Dir
	name   string

	// handles counts open kernel handles (fsadapter.open) that keep the
	// node alive after its directory entry has been removed.
	handles  int
	unlinked bool
}

// Inode returns the node's inode number.
func (h *Header) Inode() uint64 { return h.Ino }

// Name returns the terminal path component this node was last linked
// under, or "" for the root or a freshly allocated, not-yet-linked node.
func (h *Header) Name() string { return h.name }

// Parent returns the directory this node is linked into, or nil for the
// root or an unlinked node.
func (h *Header) Parent() *Dir { return h.parent }

// SetParent links h under d as name. Called by package tree on insert,
// link and rename.
func (h *Header) SetParent(d *Dir, name string) {
	h.parent = d
	h.name = name
}

// Unlinked reports whether the node has been removed from its parent
// directory (but may still be kept alive by open handles).
func (h *Header) Unlinked() bool { return h.unlinked }

// MarkUnlinked records that the node's directory entry has been removed.
func (h *Header) MarkUnlinked() { h.unlinked = true }

// AddHandle registers one more open kernel handle against this node.
func (h *Header) AddHandle() { h.handles++ }

// DropHandle releases one open kernel handle. It reports whether the node
// is now collectible: unlinked, with no parent entry and no open handles.
func (h *Header) DropHandle() (collectible bool) {
	if h.handles > 0 {
		h.handles--
	}
	return h.unlinked && h.handles == 0
}

// HandleCount reports the number of live open kernel handles.
func (h *Header) HandleCount() int { return h.handles }

// Node is the common interface satisfied by *File, *Dir and *Symlink.
type Node interface {
	Kind() Kind
	Hdr() *Header
}

// File is a byte buffer of arbitrary length.
type File struct {
	Header
	Data []byte
}

func (f *File) Kind() Kind  { return KindFile }
func (f *File) Hdr() *Header { return &f.Header }

// Dir maps entry names to child nodes. Children is nil-safe for reads;
// Link creates the map on first insert. Dir does no locking of its own:
// package tree holds its structural lock around every access, including
// the places where it ranges over Children directly.
type Dir struct {
	Header
	Children map[string]Node
}

func (d *Dir) Kind() Kind  { return KindDir }
func (d *Dir) Hdr() *Header { return &d.Header }

// Lookup returns the child named name, or nil if absent.
func (d *Dir) Lookup(name string) Node {
	return d.Children[name]
}

// Link inserts child under name, overwriting any previous entry. Callers
// must check for an existing entry first when that matters (create vs.
// rename-overwrite have different rules).
func (d *Dir) Link(name string, child Node) {
	if d.Children == nil {
		d.Children = make(map[string]Node)
	}
	d.Children[name] = child
	child.Hdr().SetParent(d, name)
}

// Unlink removes the entry named name, if present, and clears the
// removed child's parent and name.
func (d *Dir) Unlink(name string) {
	if child, ok := d.Children[name]; ok {
		child.Hdr().SetParent(nil, "")
	}
	delete(d.Children, name)
}

// Names returns the current child names in unspecified order.
func (d *Dir) Names() []string {
	names := make([]string, 0, len(d.Children))
	for name := range d.Children {
		names = append(names, name)
	}
	return names
}

// Empty reports whether the directory has no children.
func (d *Dir) Empty() bool { return len(d.Children) == 0 }

// Symlink holds an opaque, never-interpreted target.
type Symlink struct {
	Header
	Target []byte
}

func (s *Symlink) Kind() Kind  { return KindSymlink }
func (s *Symlink) Hdr() *Header { return &s.Header }
