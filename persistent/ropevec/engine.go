package ropevec

import (
	"math"
	"unsafe"
)

// rebalance trigger constants: a subtree must be at least this deep, and
// deeper than rebalanceSlope times the log2 of its estimated leaf count,
// before auto-rebalance will touch it.
const (
	rebalanceDepthThreshold = 30
	rebalanceSlope          = 3.0
)

// engineCfg bundles the per-Vector knobs the tree engine needs at every
// recursive call: how many items fit in a leaf, whether new handles should
// use the atomic or plain-counter discipline, and the auto-rebalance flag.
// The leaf-count estimate for the auto-rebalance decision is not stored
// here; canRebalance derives it from the length it is given.
// Grounded on ppar.rs's Rebalance helper struct.
type engineCfg[T any] struct {
	leafCap       int // bytes
	maxItems      int // items; ⌈leafCap / sizeof(T)⌉, at least 1
	concurrent    bool
	autoRebalance bool
}

func sizeofT[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func computeMaxItems(leafCap, sizeofT int) int {
	if sizeofT <= 0 {
		sizeofT = 1
	}
	n := leafCap / sizeofT
	if leafCap%sizeofT != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

func newEngineCfg[T any](leafCap int, concurrent, autoRebalance bool) *engineCfg[T] {
	return &engineCfg[T]{
		leafCap:       leafCap,
		maxItems:      computeMaxItems(leafCap, sizeofT[T]()),
		concurrent:    concurrent,
		autoRebalance: autoRebalance,
	}
}

// canRebalance reports whether a subtree at the given depth, under a tree
// holding length elements, has grown disproportionately tall: depth >= 30
// and depth > 3*log2(max(1, n_leaves)).
func (cfg *engineCfg[T]) canRebalance(depth, length int) bool {
	if depth < rebalanceDepthThreshold {
		return false
	}
	nLeaves := length / cfg.maxItems
	if nLeaves < 1 {
		nLeaves = 1
	}
	return float64(depth) > rebalanceSlope*math.Log2(float64(nLeaves))
}
