package wintable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordTalliesOutcomes(t *testing.T) {
	b := make(Buckets)
	b.Record(45, 1, OutcomeWin)
	b.Record(45, 1, OutcomeWin)
	b.Record(45, 1, OutcomeDraw)
	b.Record(45, 1, OutcomeLoss)

	c := b[BucketKey{Minute: 45, ScoreDiff: 1}]
	assert.Equal(t, 2, c.Win)
	assert.Equal(t, 1, c.Draw)
	assert.Equal(t, 1, c.Loss)
	assert.Equal(t, 4, c.Total)
}

func TestRecordDropsOutOfBandScoreDiffs(t *testing.T) {
	b := make(Buckets)
	b.Record(45, -4, OutcomeLoss)
	b.Record(45, 6, OutcomeWin)
	b.Record(45, 9, OutcomeWin)

	assert.Empty(t, b)
}

func TestRecordKeepsRawMinutes(t *testing.T) {
	// Stoppage-time minutes are valid aggregation keys even though the
	// table never reads past MaxMinute.
	b := make(Buckets)
	b.Record(97, 1, OutcomeWin)

	assert.Contains(t, b, BucketKey{Minute: 97, ScoreDiff: 1})
}

func TestWindowSum(t *testing.T) {
	b := make(Buckets)
	b.Record(43, 1, OutcomeWin)
	b.Record(44, 1, OutcomeDraw)
	b.Record(45, 1, OutcomeWin)
	b.Record(46, 1, OutcomeLoss)
	b.Record(48, 1, OutcomeWin) // outside the window
	b.Record(45, 0, OutcomeDraw)

	sums := WindowSum(b, 43, 47)

	assert.Equal(t, Counts{Win: 2, Draw: 1, Loss: 1, Total: 4}, sums[1])
	assert.Equal(t, Counts{Draw: 1, Total: 1}, sums[0])
	assert.Equal(t, Counts{}, sums[-3], "missing buckets default to zero")
}

func TestSampleSize(t *testing.T) {
	b := make(Buckets)
	b.Record(45, -1, OutcomeLoss)
	b.Record(45, 0, OutcomeDraw)
	b.Record(45, 2, OutcomeWin)
	b.Record(46, 2, OutcomeWin)

	assert.Equal(t, 3, SampleSize(b, 45))
	assert.Equal(t, 1, SampleSize(b, 46))
	assert.Equal(t, 0, SampleSize(b, 44))
}
