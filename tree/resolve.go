package tree

import (
	"github.com/augustgoad/memfs/internal/node"
	"github.com/augustgoad/memfs/internal/pathutil"
)

// resolved describes the outcome of walking a path to its terminal node.
type resolved struct {
	node   node.Node
	parent *node.Dir
	name   string // terminal component; "" for the root
}

// resolve walks path from the root. If followTerminal is true and the
// terminal component is a symlink, it is re-resolved as a fresh absolute
// path, up to maxSymlinkChain times. Caller must hold at
// least the structural read lock.
func (t *Tree) resolve(path string, followTerminal bool) (resolved, error) {
	components, ok := pathutil.Split(path)
	if !ok {
		return resolved{}, newErr(InvalidArgument, path)
	}
	if len(components) == 0 {
		return resolved{node: t.root, parent: nil, name: ""}, nil
	}

	chain := 0
	cur := components
	for {
		r, err := t.walk(cur)
		if err != nil {
			return resolved{}, err
		}
		if !followTerminal || r.node.Kind() != node.KindSymlink {
			return r, nil
		}
		chain++
		if chain > maxSymlinkChain {
			return resolved{}, newErr(LoopDetected, path)
		}
		target := string(r.node.(*node.Symlink).Target)
		next, ok := pathutil.Split(target)
		if !ok {
			return resolved{}, newErr(InvalidArgument, target)
		}
		cur = next
		if len(cur) == 0 {
			return resolved{node: t.root, parent: nil, name: ""}, nil
		}
	}
}

// walk performs one non-symlink-following left-to-right descent from the
// root over components.
func (t *Tree) walk(components []string) (resolved, error) {
	dir := t.root
	for i, name := range components {
		last := i == len(components)-1
		child := dir.Lookup(name)
		if child == nil {
			return resolved{}, newErr(NotFound, pathutil.Join(components[:i+1]))
		}
		if last {
			return resolved{node: child, parent: dir, name: name}, nil
		}
		childDir, isDir := child.(*node.Dir)
		if !isDir {
			return resolved{}, newErr(NotDirectory, pathutil.Join(components[:i+1]))
		}
		dir = childDir
	}
	// components is non-empty by construction (caller handles len==0).
	return resolved{}, newErr(InvalidArgument, "")
}

// resolveParent resolves the parent directory of path and returns it
// along with the terminal name, without requiring the terminal entry to
// exist. Used by create/mkdir/symlink/rename.
func (t *Tree) resolveParent(path string) (*node.Dir, string, error) {
	components, ok := pathutil.Split(path)
	if !ok || len(components) == 0 {
		return nil, "", newErr(InvalidArgument, path)
	}
	parentComponents := components[:len(components)-1]
	name := components[len(components)-1]

	dir := t.root
	for i, c := range parentComponents {
		child := dir.Lookup(c)
		if child == nil {
			return nil, "", newErr(NotFound, pathutil.Join(parentComponents[:i+1]))
		}
		childDir, isDir := child.(*node.Dir)
		if !isDir {
			return nil, "", newErr(NotDirectory, pathutil.Join(parentComponents[:i+1]))
		}
		dir = childDir
	}
	return dir, name, nil
}

// isAncestor reports whether candidate is the same node as, or an
// ancestor directory of, descendant. Used by rename's EINVAL check.
func isAncestor(candidate, descendant *node.Dir) bool {
	for d := descendant; d != nil; {
		if d == candidate {
			return true
		}
		p := d.Parent()
		if p == nil {
			return false
		}
		d = p
	}
	return false
}
