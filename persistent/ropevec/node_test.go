package ropevec

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallCfg() *engineCfg[int] {
	return newEngineCfg[int](32, false, true) // maxItems=4 on a 64-bit int
}

func TestLeafInsertWithinCapacity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.ropevec")
	defer teardown()
	//
	cfg := smallCfg()
	h := newLeaf([]int{1, 2, 3}, cfg)
	nh, depth := h.node().insert(1, 99, cfg)
	assert.Equal(t, 1, depth)
	assert.True(t, nh.node().leaf)
	assert.Equal(t, []int{1, 99, 2, 3}, nh.node().data)
}

func TestLeafSplitInsertWhenFull(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.ropevec")
	defer teardown()
	//
	cfg := smallCfg()
	h := newLeaf([]int{1, 2, 3, 4}, cfg) // at capacity
	nh, depth := h.node().insert(2, 99, cfg)
	require.Equal(t, 2, depth)
	n := nh.node()
	require.False(t, n.leaf)
	assert.Equal(t, 5, n.count())
	var out []int
	out = append(out, n.left.node().data...)
	out = append(out, n.right.node().data...)
	assert.Equal(t, []int{1, 2, 99, 3, 4}, out)
}

func TestInternalGetDescendsByWeight(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.ropevec")
	defer teardown()
	//
	cfg := smallCfg()
	left := newLeaf([]int{1, 2}, cfg)
	right := newLeaf([]int{3, 4}, cfg)
	root := newInternal(2, left, right, cfg)
	n := root.node()
	assert.Equal(t, 1, n.get(0))
	assert.Equal(t, 2, n.get(1))
	assert.Equal(t, 3, n.get(2))
	assert.Equal(t, 4, n.get(3))
}

func TestRemoveShrinksLeafBackingArray(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.ropevec")
	defer teardown()
	//
	data := make([]int, 0, 10)
	data = append(data, 1, 2, 3, 4, 5, 6)
	h := newLeaf(data, &engineCfg[int]{maxItems: 100})
	n := h.node()
	for n.count() > 2 {
		n.removeMut(0)
	}
	assert.Equal(t, []int{5, 6}, n.data)
	assert.LessOrEqual(t, cap(n.data), 4)
}

func TestReleaseCascadesOnLastReference(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.ropevec")
	defer teardown()
	//
	cfg := smallCfg()
	left := newLeaf([]int{1}, cfg)
	right := newLeaf([]int{2}, cfg)
	root := newInternal(1, left, right, cfg)
	clone := root.clone()
	assert.EqualValues(t, 2, root.refs())
	release(root)
	assert.EqualValues(t, 1, clone.refs())
	release(clone)
	assert.EqualValues(t, 0, clone.refs())
	assert.EqualValues(t, 0, left.refs())
	assert.EqualValues(t, 0, right.refs())
}
