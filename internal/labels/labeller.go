package labels

import "github.com/olivier-w/databar/internal/dataset"

// FromIntervals turns run-length label intervals into labels. Runs of the
// null key never become labels.
func FromIntervals(runs []dataset.Interval, nullKey int) []Label {
	out := make([]Label, 0, len(runs))
	for _, r := range runs {
		if r.Label == nullKey {
			continue
		}
		out = append(out, Label{Start: r.Start, End: r.End, Label: r.Label})
	}
	return out
}

// Seed builds labels from a per-sample labels channel.
func Seed(samples []float64, nullKey int) []Label {
	return FromIntervals(dataset.Intervals(samples, nullKey), nullKey)
}
