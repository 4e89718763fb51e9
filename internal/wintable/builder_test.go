package wintable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addCounts(b Buckets, minute, scoreDiff, win, draw, loss int) {
	b[BucketKey{Minute: minute, ScoreDiff: scoreDiff}] = &Counts{
		Win:   win,
		Draw:  draw,
		Loss:  loss,
		Total: win + draw + loss,
	}
}

func TestBuildProbabilityFormula(t *testing.T) {
	// (6 + 3/3) / 10 = 0.7. Minute 10 so the window stays clear of other data.
	b := make(Buckets)
	addCounts(b, 10, 0, 6, 3, 1)

	table := Build(b)

	p, ok := table.Get(10, 0)
	require.True(t, ok)
	assert.Equal(t, 0.7, p)
}

func TestBuildPoolsWindowCounts(t *testing.T) {
	b := make(Buckets)
	addCounts(b, 44, 1, 1, 0, 0)
	addCounts(b, 45, 1, 0, 0, 1)
	addCounts(b, 46, 1, 1, 0, 0)

	table := Build(b)

	// Minute 45 pools 43..47: 2 wins out of 3.
	p, ok := table.Get(45, 1)
	require.True(t, ok)
	assert.Equal(t, 0.667, p)

	// Minute 43 has no bucket of its own, so no cell despite window data.
	_, ok = table.Get(43, 1)
	assert.False(t, ok)
}

func TestBuildWindowClampedAtBounds(t *testing.T) {
	b := make(Buckets)
	addCounts(b, 1, 0, 1, 0, 0)
	addCounts(b, 2, 0, 0, 0, 1)
	addCounts(b, 95, 2, 3, 0, 1)
	addCounts(b, 97, 2, 0, 0, 5) // past MaxMinute, never read

	table := Build(b)

	// Minute 1 window is [1,3].
	p, ok := table.Get(1, 0)
	require.True(t, ok)
	assert.Equal(t, 0.5, p)

	// Minute 95 window is [93,95]; the stoppage-time bucket is excluded.
	p, ok = table.Get(95, 2)
	require.True(t, ok)
	assert.Equal(t, 0.75, p)
}

func TestBuildSkipsEmptyBuckets(t *testing.T) {
	table := Build(make(Buckets))
	assert.Equal(t, 0, table.Len())
}

func TestMonotonicSmallDipCorrected(t *testing.T) {
	// Minute 93 keeps its window [91,95] free of other minutes.
	b := make(Buckets)
	addCounts(b, 93, 0, 50, 0, 50) // 0.5
	addCounts(b, 93, 1, 48, 0, 52) // 0.48, dip of 0.02
	addCounts(b, 93, 2, 30, 0, 70) // 0.3, genuine drop of >= 0.05

	table := Build(b)

	p0, _ := table.Get(93, 0)
	p1, _ := table.Get(93, 1)
	p2, _ := table.Get(93, 2)
	assert.Equal(t, 0.5, p0)
	assert.Equal(t, 0.5, p1, "sub-threshold dip flattened to the left neighbour")
	assert.Equal(t, 0.3, p2, "large drops are kept as real signal")
}

func TestMonotonicCorrectionCascades(t *testing.T) {
	b := make(Buckets)
	addCounts(b, 93, 0, 50, 0, 50) // 0.5
	addCounts(b, 93, 1, 46, 0, 54) // 0.46 -> corrected to 0.5
	addCounts(b, 93, 2, 47, 0, 53) // 0.47 -> now a 0.03 dip against 0.5

	table := Build(b)

	p1, _ := table.Get(93, 1)
	p2, _ := table.Get(93, 2)
	assert.Equal(t, 0.5, p1)
	assert.Equal(t, 0.5, p2)
}

func TestBuildIsDeterministic(t *testing.T) {
	b := make(Buckets)
	addCounts(b, 45, 0, 10, 5, 5)
	addCounts(b, 45, 1, 15, 2, 3)
	addCounts(b, 60, -2, 1, 1, 8)

	first := Build(b)
	second := Build(b)

	assert.Equal(t, first.Len(), second.Len())
	first.Each(func(minute, scoreDiff int, p float64) {
		got, ok := second.Get(minute, scoreDiff)
		assert.True(t, ok)
		assert.Equal(t, p, got)
	})
}

func TestBuiltTableHonoursDipBound(t *testing.T) {
	// Property from the smoothing design: adjacent cells never dip by more
	// than the noise threshold after correction.
	b := make(Buckets)
	for m := 40; m <= 50; m++ {
		for d := MinScoreDiff; d <= MaxScoreDiff; d++ {
			addCounts(b, m, d, (m+(d+3)*3)%7, (m+d+3)%3, (m*(d+4)+7)%5)
		}
	}

	table := Build(b)

	for m := MinMinute; m <= MaxMinute; m++ {
		for d := MinScoreDiff; d < MaxScoreDiff; d++ {
			cur, okCur := table.Get(m, d)
			next, okNext := table.Get(m, d+1)
			if !okCur || !okNext {
				continue
			}
			assert.GreaterOrEqual(t, next, cur-0.05,
				"minute %d diff %d: %f -> %f", m, d, cur, next)
		}
	}
}
