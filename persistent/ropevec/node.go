package ropevec

/*
Remarks:
--------

- 'cow' stands for copy-on-write, used throughout for variables holding a
  freshly cloned/rebuilt incarnation of a node.

- A node is a tagged variant: either an internal node (M) carrying a weight
  and two children, or a leaf (Z) carrying a contiguous data block. We model
  this as one struct with a `leaf` flag rather than an interface hierarchy,
  since the two shapes have disjoint fields and the recursion over them is
  purely structural.
*/

// node is either an internal node (leaf == false: weight, left, right) or a
// leaf block (leaf == true: data). Never both.
type node[T any] struct {
	leaf   bool
	weight int // internal only: element count of the left subtree
	left   handle[T]
	right  handle[T]
	data   []T // leaf only
}

func newLeaf[T any](data []T, cfg *engineCfg[T]) handle[T] {
	return newHandle(&node[T]{leaf: true, data: data}, cfg.concurrent)
}

func emptyLeaf[T any](cfg *engineCfg[T]) handle[T] {
	return newLeaf[T](nil, cfg)
}

func newInternal[T any](weight int, left, right handle[T], cfg *engineCfg[T]) handle[T] {
	return newHandle(&node[T]{weight: weight, left: left, right: right}, cfg.concurrent)
}

// count returns the total number of elements held under node.
func (n *node[T]) count() int {
	if n.leaf {
		return len(n.data)
	}
	return n.weight + n.right.node().count()
}

// release decrements h's reference count and, should it reach zero, recurses
// into an internal node's children. This is the Go stand-in for Rust's
// automatic Drop glue: Go has no scope-based destructors, so a reference
// is only given up where release is called explicitly: by Vector.Release
// and by Drain as it walks past each handle. The engine's own insert,
// update, remove, split and rebuild paths never call it. Handles that are never explicitly
// released behave like a Rust value passed to mem::forget: the tree they
// guard stays alive and correct, only try-exclusive becomes more
// conservative than strictly necessary.
func release[T any](h handle[T]) {
	if h == nil {
		return
	}
	if h.refs() <= 0 {
		return
	}
	n, last := dropRef(h)
	if !last {
		return
	}
	if !n.leaf {
		release(n.left)
		release(n.right)
	}
}

// dropRef decrements h's count and reports the node plus whether this was
// the last reference.
func dropRef[T any](h handle[T]) (*node[T], bool) {
	switch rc := h.(type) {
	case *rcHandle[T]:
		rc.count--
		return rc.n, rc.count == 0
	case *arcHandle[T]:
		left := rc.count.Add(-1)
		return rc.n, left == 0
	default:
		assertThat(false, "unknown handle implementation")
		return nil, false
	}
}

// get descends the tree to the element at offset off. O(log n + 1).
func (n *node[T]) get(off int) T {
	if n.leaf {
		return n.data[off]
	}
	if off < n.weight {
		return n.left.node().get(off)
	}
	return n.right.node().get(off - n.weight)
}

// insert performs the copy-on-write insert: it rebuilds the path from the
// root to the target offset, sharing every untouched sibling along the
// way. It returns the new subroot handle and the depth of the rewritten
// path (leaf returns 1, split-insert returns 2, each internal level adds
// 1), which auto-rebalance consumes on the way back up to the facade.
func (n *node[T]) insert(off int, val T, cfg *engineCfg[T]) (handle[T], int) {
	if n.leaf {
		if len(n.data) < cfg.maxItems {
			ndata := make([]T, 0, len(n.data)+1)
			ndata = append(ndata, n.data[:off]...)
			ndata = append(ndata, val)
			ndata = append(ndata, n.data[off:]...)
			return newLeaf(ndata, cfg), 1
		}
		return splitInsert(n.data, off, val, cfg), 2
	}
	var newLeft, newRight handle[T]
	var weight, depth int
	if off < n.weight {
		nl, d := n.left.node().insert(off, val, cfg)
		newLeft, newRight, weight, depth = nl, n.right.clone(), n.weight+1, d
	} else {
		nr, d := n.right.node().insert(off-n.weight, val, cfg)
		newLeft, newRight, weight, depth = n.left.clone(), nr, n.weight, d
	}
	return newInternal(weight, newLeft, newRight, cfg), depth + 1
}

// insertMut performs the in-place insert, mutating nodes directly instead
// of rebuilding the path. The caller must already hold exclusive access to
// n (obtained via tryExclusive along the whole root-to-leaf path);
// insertMut asserts this recursively and panics otherwise rather than
// silently falling back to a copy-on-write rebuild.
func (n *node[T]) insertMut(off int, val T, cfg *engineCfg[T]) int {
	if n.leaf {
		if len(n.data) < cfg.maxItems {
			n.data = append(n.data, val) // grow, then shift into place
			copy(n.data[off+1:], n.data[off:len(n.data)-1])
			n.data[off] = val
			return 1
		}
		replacement, exclusive := n.splitInsertMut(off, val, cfg)
		assertThat(exclusive, "split-insert must own the node it replaces")
		*n = *replacement
		return 2
	}
	if off < n.weight {
		left, ok := n.left.tryExclusive()
		if !ok {
			panic("ropevec: insert_mut requires exclusive ownership of the whole path, but left child is shared")
		}
		d := left.insertMut(off, val, cfg)
		n.weight++
		return d + 1
	}
	right, ok := n.right.tryExclusive()
	if !ok {
		panic("ropevec: insert_mut requires exclusive ownership of the whole path, but right child is shared")
	}
	d := right.insertMut(off-n.weight, val, cfg)
	return d + 1
}

func (n *node[T]) splitInsertMut(off int, val T, cfg *engineCfg[T]) (*node[T], bool) {
	h := splitInsert(n.data, off, val, cfg)
	return dropRef(h)
}

// splitInsert partitions a full leaf's data into two halves and inserts val
// into whichever half the offset falls into.
func splitInsert[T any](data []T, off int, val T, cfg *engineCfg[T]) handle[T] {
	var ld, rd []T
	m := len(data) / 2
	switch len(data) {
	case 0:
		ld, rd = nil, nil
	case 1:
		ld, rd = append([]T{}, data...), nil
	default:
		ld = append([]T{}, data[:m]...)
		rd = append([]T{}, data[m:]...)
	}
	var weight int
	if off < len(ld) {
		ld = insertAt(ld, off, val)
		weight = len(ld)
	} else {
		rd = insertAt(rd, off-len(ld), val)
		weight = len(ld)
	}
	return newInternal(weight, newLeaf(ld, cfg), newLeaf(rd, cfg), cfg)
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:len(s)-1])
	s[i] = v
	return s
}

// update performs the copy-on-write replace at off, returning the new
// subroot and the replaced value. Weight is unchanged; no rebalance is
// considered, since replacing a value never changes the tree's shape.
func (n *node[T]) update(off int, val T, cfg *engineCfg[T]) (handle[T], T) {
	if n.leaf {
		old := n.data[off]
		ndata := append([]T{}, n.data...)
		ndata[off] = val
		return newLeaf(ndata, cfg), old
	}
	if off < n.weight {
		nl, old := n.left.node().update(off, val, cfg)
		return newInternal(n.weight, nl, n.right.clone(), cfg), old
	}
	nr, old := n.right.node().update(off-n.weight, val, cfg)
	return newInternal(n.weight, n.left.clone(), nr, cfg), old
}

func (n *node[T]) updateMut(off int, val T) T {
	if n.leaf {
		old := n.data[off]
		n.data[off] = val
		return old
	}
	if off < n.weight {
		left, ok := n.left.tryExclusive()
		if !ok {
			panic("ropevec: update_mut requires exclusive ownership of the whole path, but left child is shared")
		}
		return left.updateMut(off, val)
	}
	right, ok := n.right.tryExclusive()
	if !ok {
		panic("ropevec: update_mut requires exclusive ownership of the whole path, but right child is shared")
	}
	return right.updateMut(off-n.weight, val)
}

// remove performs the copy-on-write removal of the element at off,
// returning the new subroot and the removed value.
func (n *node[T]) remove(off int, cfg *engineCfg[T]) (handle[T], T) {
	if n.leaf {
		old := n.data[off]
		ndata := make([]T, 0, len(n.data)-1)
		ndata = append(ndata, n.data[:off]...)
		ndata = append(ndata, n.data[off+1:]...)
		return newLeaf(ndata, cfg), old
	}
	if off < n.weight {
		nl, old := n.left.node().remove(off, cfg)
		return newInternal(n.weight-1, nl, n.right.clone(), cfg), old
	}
	nr, old := n.right.node().remove(off-n.weight, cfg)
	return newInternal(n.weight, n.left.clone(), nr, cfg), old
}

func (n *node[T]) removeMut(off int) T {
	if n.leaf {
		old := n.data[off]
		n.data = append(n.data[:off], n.data[off+1:]...)
		if len(n.data)*2 < cap(n.data) { // leaf-shrink: once occupancy drops below half, trim the backing array to the live length
			shrunk := make([]T, len(n.data))
			copy(shrunk, n.data)
			n.data = shrunk
		}
		return old
	}
	if off < n.weight {
		left, ok := n.left.tryExclusive()
		if !ok {
			panic("ropevec: remove_mut requires exclusive ownership of the whole path, but left child is shared")
		}
		n.weight--
		return left.removeMut(off)
	}
	right, ok := n.right.tryExclusive()
	if !ok {
		panic("ropevec: remove_mut requires exclusive ownership of the whole path, but right child is shared")
	}
	return right.removeMut(off - n.weight)
}

