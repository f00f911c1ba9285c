package harvest_test

import (
	"context"
	"testing"

	"emojiharvest/internal/virtuallist"
	errs "emojiharvest/pkg/errors"
	"emojiharvest/pkg/harvest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slackPasses() (harvest.Config, harvest.Config) {
	fast := harvest.Config{
		Name:               "fast",
		MaxAttempts:        300,
		StabilityThreshold: 5,
		Step:               harvest.Step{ToEnd: true},
	}
	slow := harvest.Config{
		Name:        "slow",
		MaxAttempts: 300,
		Step:        harvest.Step{Pixels: 300},
		Direction:   harvest.Backward,
		RangeEnd:    harvest.Bound(0),
	}
	return fast, slow
}

func TestTwoPassCapturesItemsOnlySeenGoingBack(t *testing.T) {
	h, _, _ := newHarvester(t)
	rows := virtuallist.Items("e", 40)
	list := virtuallist.New(400, 50, rows...)
	transient := rows[10].Key
	list.RevealOnlyBackward(transient)

	fast, slow := slackPasses()
	res, err := h.TwoPass(context.Background(), list, list.Extract, fast, slow)

	require.NoError(t, err)
	assert.Contains(t, res.Keys(), transient)
	assert.ElementsMatch(t, keysOf(rows), res.Keys())
	assert.Equal(t, harvest.ReasonRangeEnd, res.Reason)
	assert.Equal(t, 0.0, list.Offset())
	assert.Equal(t, 0.0, res.Offset)
}

func TestTwoPassSharesSeenKeys(t *testing.T) {
	h, _, _ := newHarvester(t)
	rows := virtuallist.Items("e", 40)
	list := virtuallist.New(400, 50, rows...)

	fast, slow := slackPasses()
	res, err := h.TwoPass(context.Background(), list, list.Extract, fast, slow)
	require.NoError(t, err)

	// The fast pass lands on the last screen first, so those rows lead.
	keys := res.Keys()
	require.Len(t, keys, 40)
	assert.Equal(t, rows[32].Key, keys[0])

	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestTwoPassFinalSample(t *testing.T) {
	h, _, _ := newHarvester(t)
	list := virtuallist.New(400, 50, virtuallist.Items("e", 40)...)

	fast, slow := slackPasses()
	res, err := h.TwoPass(context.Background(), list, list.Extract, fast, slow)
	require.NoError(t, err)

	// Fast: jump to end, then 5 stable samples. Slow: 1600 down to 0 in 300px steps.
	assert.Equal(t, 12, res.Attempts)
	assert.Equal(t, res.Attempts+1, list.Samples())
}

func TestTwoPassCancelledDuringFastPass(t *testing.T) {
	h, _, _ := newHarvester(t)
	list := virtuallist.New(400, 50, virtuallist.Items("e", 40)...)
	list.OnSample = func(n int) {
		if n == 2 {
			h.Cancel()
		}
	}

	fast, slow := slackPasses()
	res, err := h.TwoPass(context.Background(), list, list.Extract, fast, slow)

	require.NoError(t, err)
	assert.Equal(t, harvest.ReasonCancelled, res.Reason)
	assert.Len(t, res.Items, 8)
	assert.Equal(t, 2, list.Samples(), "no slow pass or final sample")
	assert.Equal(t, 1600.0, list.Offset(), "scroll position is not reset after cancel")
}

func TestTwoPassNilContainer(t *testing.T) {
	h, _, _ := newHarvester(t)
	fast, slow := slackPasses()

	_, err := h.TwoPass(context.Background(), nil, nil, fast, slow)
	assert.ErrorIs(t, err, errs.ErrContainerNotFound)
}
