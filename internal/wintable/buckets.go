package wintable

// Bounds of the lookup table. Aggregation keys keep raw minutes (stoppage
// time can exceed 95) but score differentials outside the band are dropped.
const (
	MinMinute    = 1
	MaxMinute    = 95
	MinScoreDiff = -3
	MaxScoreDiff = 5
)

// Outcome is the eventual full-time result from the scoring team's perspective
type Outcome int

const (
	OutcomeLoss Outcome = iota
	OutcomeDraw
	OutcomeWin
)

// Counts holds outcome tallies for one (minute, score differential) bucket
type Counts struct {
	Win   int
	Draw  int
	Loss  int
	Total int
}

func (c *Counts) add(o Outcome) {
	switch o {
	case OutcomeWin:
		c.Win++
	case OutcomeDraw:
		c.Draw++
	case OutcomeLoss:
		c.Loss++
	}
	c.Total++
}

// BucketKey identifies one aggregation bucket
type BucketKey struct {
	Minute    int
	ScoreDiff int
}

// Buckets accumulates historical outcome counts keyed by minute and score
// differential. Ephemeral: rebuilt from scratch on every full run.
type Buckets map[BucketKey]*Counts

// Record tallies one historical scoring event. Differentials outside
// [MinScoreDiff, MaxScoreDiff] are dropped; blowout scorelines carry no
// signal the table can represent. Minutes are not clamped here, so buckets
// past MaxMinute exist but are never read by the builder.
func (b Buckets) Record(minute, scoreDiff int, result Outcome) {
	if scoreDiff < MinScoreDiff || scoreDiff > MaxScoreDiff {
		return
	}
	key := BucketKey{Minute: minute, ScoreDiff: scoreDiff}
	c, ok := b[key]
	if !ok {
		c = &Counts{}
		b[key] = c
	}
	c.add(result)
}

// WindowSum pools outcome counts across an inclusive minute range, returning
// one Counts per score differential in the table band. Missing buckets
// contribute zero.
func WindowSum(b Buckets, startMinute, endMinute int) map[int]Counts {
	sums := make(map[int]Counts, MaxScoreDiff-MinScoreDiff+1)
	for d := MinScoreDiff; d <= MaxScoreDiff; d++ {
		var total Counts
		for m := startMinute; m <= endMinute; m++ {
			if c, ok := b[BucketKey{Minute: m, ScoreDiff: d}]; ok {
				total.Win += c.Win
				total.Draw += c.Draw
				total.Loss += c.Loss
				total.Total += c.Total
			}
		}
		sums[d] = total
	}
	return sums
}

// SampleSize returns the number of recorded events at one minute across all
// score differentials.
func SampleSize(b Buckets, minute int) int {
	n := 0
	for d := MinScoreDiff; d <= MaxScoreDiff; d++ {
		if c, ok := b[BucketKey{Minute: minute, ScoreDiff: d}]; ok {
			n += c.Total
		}
	}
	return n
}
