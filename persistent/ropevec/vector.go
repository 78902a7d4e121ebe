package ropevec

import (
	"fmt"
	"unsafe"

	tp "github.com/xlab/treeprint"
)

// defaultLeafCap is the default per-leaf byte target.
const defaultLeafCap = 10 * 1024

// Vector is an immutable persistent indexed sequence of T. Every mutating
// method either returns a new Vector sharing untouched structure with the
// receiver (copy-on-write) or mutates the receiver in place when its root
// is exclusively owned (the _Mut family).
//
// The zero value is not a usable Vector; construct one with Immutable.
type Vector[T any] struct {
	length        int
	root          handle[T]
	leafCap       int
	concurrent    bool
	autoRebalance bool
}

// Option configures a Vector at construction time.
type Option[T any] func(Vector[T]) Vector[T]

// LeafCap sets the target byte capacity of a leaf block. Default 10KiB.
func LeafCap[T any](bytes int) Option[T] {
	return func(v Vector[T]) Vector[T] {
		if bytes < 1 {
			bytes = 1
		}
		v.leafCap = bytes
		return v
	}
}

// AutoRebalance toggles the depth/leaf-count rebalance heuristic. Enabled
// by default.
func AutoRebalance[T any](enabled bool) Option[T] {
	return func(v Vector[T]) Vector[T] {
		v.autoRebalance = enabled
		return v
	}
}

// Concurrent selects the cross-thread, atomically reference-counted
// sharing discipline for this Vector and all of its clones. Without this
// option a Vector uses the cheaper, single-goroutine discipline; see
// Vector.ThreadSafe.
func Concurrent[T any]() Option[T] {
	return func(v Vector[T]) Vector[T] {
		v.concurrent = true
		return v
	}
}

// Immutable constructs an empty Vector with options applied.
func Immutable[T any](opts ...Option[T]) Vector[T] {
	v := Vector[T]{leafCap: defaultLeafCap, autoRebalance: true}
	for _, opt := range opts {
		v = opt(v)
	}
	v.root = emptyLeaf[T](v.cfg())
	return v
}

// FromSlice builds a Vector from the given elements, bottom-up, the same
// way the rebalancer rebuilds a tree: chunk into leaf-sized blocks, then
// assemble a near-complete tree of depth ⌈log2(chunks)⌉.
func FromSlice[T any](s []T, opts ...Option[T]) Vector[T] {
	v := Vector[T]{leafCap: defaultLeafCap, autoRebalance: true}
	for _, opt := range opts {
		v = opt(v)
	}
	cfg := v.cfg()
	n := cfg.maxItems
	var leaves []handle[T]
	for i := 0; i < len(s); i += n {
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		chunk := append([]T{}, s[i:end]...)
		leaves = append(leaves, newLeaf(chunk, cfg))
	}
	reverseHandles(leaves)
	depth := 0
	if len(leaves) > 0 {
		depth = ceilLog2(len(leaves))
	}
	root, cnt := buildBottomsUp(depth, &leaves, cfg)
	assertThat(len(leaves) == 0, "from_slice must consume every chunk")
	assertThat(cnt == len(s), "from_slice rebuild must preserve length")
	v.root = root
	v.length = len(s)
	return v
}

func (v Vector[T]) cfg() *engineCfg[T] {
	return newEngineCfg[T](v.leafCap, v.concurrent, v.autoRebalance)
}

// --- read API ----------------------------------------------------------

// Len returns the number of elements in the Vector.
func (v Vector[T]) Len() int { return v.length }

// IsEmpty reports whether the Vector holds no elements.
func (v Vector[T]) IsEmpty() bool { return v.length == 0 }

// ThreadSafe reports whether this Vector uses the atomically
// reference-counted (cross-thread) sharing discipline.
func (v Vector[T]) ThreadSafe() bool { return v.concurrent }

// Footprint reports the deep memory this Vector holds: its own struct size
// plus every node's size plus each leaf's reserved capacity × sizeof(T).
// Informational only — it does not account for structural sharing with
// other Vectors.
func (v Vector[T]) Footprint() int {
	return int(unsafe.Sizeof(v)) + footprint(v.root)
}

func footprint[T any](h handle[T]) int {
	n := h.node()
	size := int(unsafe.Sizeof(*n))
	if n.leaf {
		return size + cap(n.data)*sizeofT[T]()
	}
	return size + footprint(n.left) + footprint(n.right)
}

// Get returns the element at off, or an IndexFail error if off >= Len().
func (v Vector[T]) Get(off int) (T, error) {
	var zero T
	if off < 0 || off >= v.length {
		return zero, indexFail("index %d out of bounds (len=%d)", off, v.length)
	}
	return v.root.node().get(off), nil
}

// Slice materializes the Vector's elements into a freshly allocated slice.
func (v Vector[T]) Slice() []T {
	out := make([]T, 0, v.length)
	it := v.Iter()
	for {
		val, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, val)
	}
	return out
}

// Dump renders the tree's shape (leaf/internal boundary and weights) for
// debugging, via github.com/xlab/treeprint.
func (v Vector[T]) Dump() string {
	printer := tp.New()
	printer.SetValue(fmt.Sprintf("Vector(len=%d, leafCap=%d)", v.length, v.leafCap))
	dumpNode(printer, v.root)
	return printer.String()
}

func dumpNode[T any](parent tp.Tree, h handle[T]) {
	n := h.node()
	if n.leaf {
		parent.AddNode(fmt.Sprintf("leaf[%d]", len(n.data)))
		return
	}
	branch := parent.AddBranch(fmt.Sprintf("node(weight=%d)", n.weight))
	dumpNode(branch, n.left)
	dumpNode(branch, n.right)
}

// --- copy-on-write mutation ---------------------------------------------

// Insert returns a new Vector with value inserted at off. off == Len() is
// permitted (append); off > Len() fails with IndexFail.
func (v Vector[T]) Insert(off int, value T) (Vector[T], error) {
	if off < 0 || off > v.length {
		return v, indexFail("index %d out of bounds for insert (len=%d)", off, v.length)
	}
	cfg := v.cfg()
	root, depth := v.root.node().insert(off, value, cfg)
	root, _ = autoRebalance(root, depth, v.length+1, false, false, cfg)
	v.root = root
	v.length++
	return v, nil
}

// Update returns a new Vector with the element at off replaced, and the
// previous value. Fails with IndexFail if off >= Len().
func (v Vector[T]) Update(off int, value T) (Vector[T], T, error) {
	var zero T
	if off < 0 || off >= v.length {
		return v, zero, indexFail("offset %d out of bounds for update (len=%d)", off, v.length)
	}
	root, old := v.root.node().update(off, value, v.cfg())
	v.root = root
	return v, old, nil
}

// Remove returns a new Vector with the element at off removed, and the
// removed value. Fails with IndexFail if off >= Len().
func (v Vector[T]) Remove(off int) (Vector[T], T, error) {
	var zero T
	if off < 0 || off >= v.length {
		return v, zero, indexFail("offset %d out of bounds for remove (len=%d)", off, v.length)
	}
	root, old := v.root.node().remove(off, v.cfg())
	v.root = root
	v.length--
	return v, old, nil
}

// --- in-place mutation ---------------------------------------------------

// InsertMut inserts value at off in place, requiring the receiver to be the
// sole owner of its root; it panics otherwise, rather than silently
// falling back to a copy-on-write Insert.
func (v *Vector[T]) InsertMut(off int, value T) error {
	if off < 0 || off > v.length {
		return indexFail("index %d out of bounds for insert_mut (len=%d)", off, v.length)
	}
	cfg := v.cfg()
	root, ok := v.root.tryExclusive()
	if !ok {
		panic("ropevec: insert_mut called on a Vector whose root is shared; use Insert instead")
	}
	depth := root.insertMut(off, value, cfg)
	newRoot, _ := autoRebalance(v.root, depth, v.length+1, false, false, cfg)
	v.root = newRoot
	v.length++
	return nil
}

// UpdateMut replaces the element at off in place, requiring sole ownership
// of the root; panics otherwise.
func (v *Vector[T]) UpdateMut(off int, value T) (T, error) {
	var zero T
	if off < 0 || off >= v.length {
		return zero, indexFail("offset %d out of bounds for update_mut (len=%d)", off, v.length)
	}
	root, ok := v.root.tryExclusive()
	if !ok {
		panic("ropevec: update_mut called on a Vector whose root is shared; use Update instead")
	}
	return root.updateMut(off, value), nil
}

// RemoveMut removes the element at off in place, requiring sole ownership
// of the root; panics otherwise.
func (v *Vector[T]) RemoveMut(off int) (T, error) {
	var zero T
	if off < 0 || off >= v.length {
		return zero, indexFail("offset %d out of bounds for remove_mut (len=%d)", off, v.length)
	}
	root, ok := v.root.tryExclusive()
	if !ok {
		panic("ropevec: remove_mut called on a Vector whose root is shared; use Remove instead")
	}
	old := root.removeMut(off)
	v.length--
	return old, nil
}

// --- structural ----------------------------------------------------------

// SplitOff splits the Vector into two at off: the first returned Vector
// holds [0,off) and the second holds [off,Len()); the receiver itself is
// unchanged. Fails with IndexFail if off > Len().
func (v Vector[T]) SplitOff(off int) (Vector[T], Vector[T], error) {
	var empty Vector[T]
	if off < 0 || off > v.length {
		return v, empty, indexFail("offset %d out of bounds for split_off (len=%d)", off, v.length)
	}
	if off == v.length {
		tail := Vector[T]{leafCap: v.leafCap, concurrent: v.concurrent, autoRebalance: v.autoRebalance}
		tail.root = emptyLeaf[T](v.cfg())
		return v, tail, nil
	}
	kept, taken, n := v.root.node().splitOff(off, v.length, v.cfg())
	front := v
	front.root = kept
	front.length -= n
	back := Vector[T]{leafCap: v.leafCap, concurrent: v.concurrent, autoRebalance: v.autoRebalance, root: taken, length: n}
	return front, back, nil
}

// Append concatenates other onto the end of the receiver, returning the
// combined Vector. If other's leaf_cap differs from the receiver's, other
// is unconditionally linearised and rebuilt at the receiver's leaf_cap
// first, so the combined tree never mixes two leaf-capacity disciplines.
// No rebalance is performed automatically afterwards.
func (v Vector[T]) Append(other Vector[T]) Vector[T] {
	if other.leafCap != v.leafCap {
		other = FromSlice(other.Slice(),
			LeafCap[T](v.leafCap), AutoRebalance[T](other.autoRebalance), concurrentOpt[T](other.concurrent))
	}
	cfg := v.cfg()
	root := newInternal(v.length, v.root.clone(), other.root.clone(), cfg)
	v.root = root
	v.length += other.length
	return v
}

func concurrentOpt[T any](enabled bool) Option[T] {
	return func(v Vector[T]) Vector[T] {
		v.concurrent = enabled
		return v
	}
}

// Rebalance rebuilds the tree into a near-complete shape. When packed is
// true, leaves are also coalesced so only the final leaf may be partial.
func (v Vector[T]) Rebalance(packed bool) Vector[T] {
	root, _ := autoRebalance(v.root, 0, v.length, packed, true, v.cfg())
	v.root = root
	return v
}

// Clone returns a Vector sharing the receiver's tree; cloning is O(1).
func (v Vector[T]) Clone() Vector[T] {
	v.root = v.root.clone()
	return v
}

// Release proactively decrements the receiver's root reference count,
// mirroring the automatic Drop a Rust owner gets when a Vector goes out of
// scope. Go has no scope-based destructors, so callers that want
// try-exclusive-gated in-place mutation to stay maximally available should
// call Release on Vector values they are done with (a discarded clone, an
// intermediate CoW result). Omitting the call never corrupts shared state:
// it only makes future _Mut calls panic (see InsertMut/UpdateMut/RemoveMut)
// more often than strictly necessary.
func (v *Vector[T]) Release() {
	release(v.root)
	v.root = nil
}

func ceilLog2(n int) int {
	d := 0
	for (1 << d) < n {
		d++
	}
	return d
}
