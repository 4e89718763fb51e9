package wintable

const (
	// smoothingRadius pools each minute with its neighbours to damp
	// single-minute sampling noise. Fixed regardless of sample size.
	smoothingRadius = 2

	// dipThreshold separates sampling noise from genuine probability drops
	// when scanning across score differentials within a minute.
	dipThreshold = 0.05

	// drawWeight discounts a draw to a third of a win when estimating the
	// chance of eventually winning.
	drawWeight = 3.0
)

// Build turns aggregated outcome counts into a smoothed, monotonic lookup
// table. A cell is populated only when the bucket itself has samples and the
// pooled window still has a positive total, so the output carries no
// fabricated probabilities.
func Build(b Buckets) *Table {
	t := NewTable()
	for m := MinMinute; m <= MaxMinute; m++ {
		lo := m - smoothingRadius
		if lo < MinMinute {
			lo = MinMinute
		}
		hi := m + smoothingRadius
		if hi > MaxMinute {
			hi = MaxMinute
		}
		var windowed map[int]Counts
		for d := MinScoreDiff; d <= MaxScoreDiff; d++ {
			c, ok := b[BucketKey{Minute: m, ScoreDiff: d}]
			if !ok || c.Total == 0 {
				continue
			}
			if windowed == nil {
				windowed = WindowSum(b, lo, hi)
			}
			w := windowed[d]
			if w.Total == 0 {
				continue
			}
			p := (float64(w.Win) + float64(w.Draw)/drawWeight) / float64(w.Total)
			t.Set(m, d, Round3(p))
		}
	}
	enforceMonotonic(t)
	return t
}

// enforceMonotonic removes small negative dips in probability as the score
// differential increases within a minute. A dip smaller in magnitude than
// dipThreshold is treated as noise and flattened to the left neighbour;
// larger drops are assumed to be real signal and left alone. The scan is
// sequential, so a correction feeds into the next comparison.
func enforceMonotonic(t *Table) {
	for m := MinMinute; m <= MaxMinute; m++ {
		for d := MinScoreDiff; d < MaxScoreDiff; d++ {
			cur, okCur := t.Get(m, d)
			next, okNext := t.Get(m, d+1)
			if !okCur || !okNext {
				continue
			}
			margin := next - cur
			if margin < 0 && margin > -dipThreshold {
				t.Set(m, d+1, cur)
			}
		}
	}
}
