package ropevec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeMaxItems(t *testing.T) {
	assert.Equal(t, 4, computeMaxItems(32, 8))
	assert.Equal(t, 1, computeMaxItems(1, 8))
	assert.Equal(t, 5, computeMaxItems(33, 8))
}

func TestCeilLog2(t *testing.T) {
	assert.Equal(t, 0, ceilLog2(0))
	assert.Equal(t, 0, ceilLog2(1))
	assert.Equal(t, 1, ceilLog2(2))
	assert.Equal(t, 2, ceilLog2(3))
	assert.Equal(t, 2, ceilLog2(4))
	assert.Equal(t, 3, ceilLog2(5))
}

func TestCanRebalanceGate(t *testing.T) {
	cfg := newEngineCfg[int](32, false, true) // maxItems=4
	assert.False(t, cfg.canRebalance(29, 400), "below the depth threshold, never rebalances")
	assert.True(t, cfg.canRebalance(30, 4), "depth 30 over 1 leaf trivially clears 3*log2(1)=0")
	assert.False(t, cfg.canRebalance(30, 4_000_000_000), "a huge, well-populated tree should not need rebalancing at depth 30")
}
