package ropevec

import "math"

// autoRebalance rebuilds the tree into a near-complete shape iff forced,
// or auto-rebalance is armed and the depth/leaf-count heuristic fires.
// Grounded on ppar.rs's Node::auto_rebalance.
func autoRebalance[T any](root handle[T], depth, length int, packed, force bool, cfg *engineCfg[T]) (handle[T], int) {
	doit := force || (cfg.autoRebalance && cfg.canRebalance(depth, length))
	if !doit {
		return root, depth
	}
	leaves := collectLeaves(root, packed, cfg)
	reverseHandles(leaves)
	newDepth := int(math.Ceil(math.Log2(float64(max(1, len(leaves))))))
	newRoot, _ := buildBottomsUp(newDepth, &leaves, cfg)
	assertThat(len(leaves) == 0, "rebuild must consume every collected leaf")
	return newRoot, newDepth
}

func reverseHandles[T any](hs []handle[T]) {
	for i, j := 0, len(hs)-1; i < j; i, j = i+1, j-1 {
		hs[i], hs[j] = hs[j], hs[i]
	}
}

// collectLeaves walks the tree in-order, gathering leaf handles. When
// packed is true, adjacent leaves are merged into freshly filled leaves of
// at most cfg.maxItems elements, so only the final leaf may be partial.
// Grounded on ppar.rs's Node::collect_leaf_nodes/Node::pack.
func collectLeaves[T any](root handle[T], packed bool, cfg *engineCfg[T]) []handle[T] {
	var stack []handle[T]
	var acc []handle[T]
	cur := root
	for {
		n := cur.node()
		if n.leaf {
			acc = append(acc, cur)
			if len(stack) == 0 {
				break
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, n.right)
		cur = n.left
	}
	if !packed {
		return acc
	}
	return packLeaves(acc, cfg)
}

// packLeaves coalesces consecutive leaves into fresh blocks filled up to
// maxItems, leaving only the last block possibly partial.
func packLeaves[T any](leaves []handle[T], cfg *engineCfg[T]) []handle[T] {
	var packed []handle[T]
	var cur []T
	for _, h := range leaves {
		data := h.node().data
		i := 0
		for i < len(data) {
			if cur == nil {
				cur = make([]T, 0, cfg.maxItems)
			}
			room := cfg.maxItems - len(cur)
			n := len(data) - i
			if n > room {
				n = room
			}
			cur = append(cur, data[i:i+n]...)
			i += n
			if len(cur) == cfg.maxItems {
				packed = append(packed, newLeaf(cur, cfg))
				cur = nil
			}
		}
	}
	if cur != nil {
		packed = append(packed, newLeaf(cur, cfg))
	}
	if len(packed) == 0 {
		packed = append(packed, emptyLeaf(cfg))
	}
	return packed
}

// buildBottomsUp builds a near-complete binary tree of depth `depth` from
// leaves, consuming them left-to-right (leaves is treated as a stack: the
// next leaf to consume is at the end). Returns the new (sub)root and the
// element count under it. Grounded on ppar.rs's Node::build_bottoms_up.
func buildBottomsUp[T any](depth int, leaves *[]handle[T], cfg *engineCfg[T]) (handle[T], int) {
	pop := func() handle[T] {
		l := *leaves
		h := l[len(l)-1]
		*leaves = l[:len(l)-1]
		return h
	}
	switch {
	case depth == 0 && len(*leaves) == 0:
		return emptyLeaf(cfg), 0
	case (depth == 0 || depth == 1) && len(*leaves) == 1:
		h := pop()
		return h, h.node().count()
	case depth == 1 && len(*leaves) >= 2:
		left, right := pop(), pop()
		weight := left.node().count()
		n := weight + right.node().count()
		return newInternal(weight, left, right, cfg), n
	case len(*leaves) == 1 || len(*leaves) == 2:
		return buildBottomsUp(1, leaves, cfg)
	default:
		left, weight := buildBottomsUp(depth-1, leaves, cfg)
		switch len(*leaves) {
		case 0:
			return left, weight
		case 1:
			right := pop()
			m := right.node().count()
			return newInternal(weight, left, right, cfg), weight + m
		default:
			right, m := buildBottomsUp(depth-1, leaves, cfg)
			return newInternal(weight, left, right, cfg), weight + m
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
