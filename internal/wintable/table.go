package wintable

import "math"

const (
	minuteSpan = MaxMinute - MinMinute + 1
	diffSpan   = MaxScoreDiff - MinScoreDiff + 1
)

// Table is the dense win-probability lookup, indexed by (minute-1,
// scoreDiff+3) with a presence bitmap so "no data" is distinct from a genuine
// zero probability. Cells only exist for pairs with positive windowed sample
// size, so the table stays sparse in practice.
type Table struct {
	values  [minuteSpan][diffSpan]float64
	present [minuteSpan][diffSpan]bool
	size    int
}

// NewTable returns an empty lookup table
func NewTable() *Table {
	return &Table{}
}

func inBounds(minute, scoreDiff int) bool {
	return minute >= MinMinute && minute <= MaxMinute &&
		scoreDiff >= MinScoreDiff && scoreDiff <= MaxScoreDiff
}

// Set stores a probability for one cell. Out-of-band keys are ignored, which
// also shields Load from malformed persisted rows.
func (t *Table) Set(minute, scoreDiff int, p float64) {
	if !inBounds(minute, scoreDiff) {
		return
	}
	i, j := minute-MinMinute, scoreDiff-MinScoreDiff
	if !t.present[i][j] {
		t.size++
	}
	t.values[i][j] = p
	t.present[i][j] = true
}

// Get returns the exact cell value and whether it is populated
func (t *Table) Get(minute, scoreDiff int) (float64, bool) {
	if !inBounds(minute, scoreDiff) {
		return 0, false
	}
	i, j := minute-MinMinute, scoreDiff-MinScoreDiff
	return t.values[i][j], t.present[i][j]
}

// Len returns the number of populated cells
func (t *Table) Len() int {
	return t.size
}

// Each visits every populated cell in (minute, scoreDiff) order
func (t *Table) Each(fn func(minute, scoreDiff int, p float64)) {
	for i := 0; i < minuteSpan; i++ {
		for j := 0; j < diffSpan; j++ {
			if t.present[i][j] {
				fn(i+MinMinute, j+MinScoreDiff, t.values[i][j])
			}
		}
	}
}

// Probability resolves a win probability for any (minute, scoreDiff) using
// the fallback rule: clamp the minute to MaxMinute, try the exact cell, then
// the neighbouring minutes, and finally the deterministic boundary values.
// It always yields a usable probability, so a sparse or even empty table
// never fails a lookup.
func (t *Table) Probability(minute, scoreDiff int) float64 {
	if minute > MaxMinute {
		minute = MaxMinute
	}
	for _, m := range [3]int{minute, minute - 1, minute + 1} {
		if p, ok := t.Get(m, scoreDiff); ok {
			return p
		}
	}
	switch {
	case scoreDiff < 0:
		return 0.0
	case scoreDiff > 0:
		return 1.0
	default:
		return 0.5
	}
}

// Round3 rounds to the 3-decimal precision used throughout the pipeline
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
