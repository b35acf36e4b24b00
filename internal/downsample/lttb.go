// Package downsample reduces long series to a visually equivalent shorter
// sequence for drawing.
package downsample

import "math"

// Point is one sample in domain space: X is the sample index, Y the value.
type Point struct {
	X float64
	Y float64
}

// BucketSize returns the adaptive bucket size for a domain span drawn over
// pixelSpan pixels: half the samples per pixel, at least 1.
func BucketSize(domainSpan, pixelSpan float64) int {
	if pixelSpan <= 0 || domainSpan <= 0 {
		return 1
	}
	n := int(math.Floor(domainSpan / pixelSpan / 2))
	if n < 1 {
		return 1
	}
	return n
}

// LTTB applies largest-triangle-three-buckets sampling. The first and last
// points are always kept; every interior bucket of size bucket contributes
// the point forming the largest triangle with the previously kept point and
// the average of the next bucket. Series shorter than 3*bucket are returned
// unchanged.
func LTTB(series []Point, bucket int) []Point {
	if bucket < 1 {
		bucket = 1
	}
	n := len(series)
	if n < bucket*3 || bucket == 1 {
		return series
	}

	interior := series[1 : n-1]
	nb := (len(interior) + bucket - 1) / bucket
	out := make([]Point, 0, nb+2)
	out = append(out, series[0])
	if nb == 0 {
		return append(out, series[n-1])
	}

	prev := series[0]
	for b := range nb {
		lo := b * bucket
		hi := min(lo+bucket, len(interior))

		next := series[n-1]
		if b+1 < nb {
			next = average(interior[hi:min(hi+bucket, len(interior))])
		}

		best := lo
		bestArea := -1.0
		for i := lo; i < hi; i++ {
			if a := area(prev, interior[i], next); a > bestArea {
				best, bestArea = i, a
			}
		}
		prev = interior[best]
		out = append(out, prev)
	}
	return append(out, series[n-1])
}

func average(points []Point) Point {
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n}
}

func area(a, b, c Point) float64 {
	return math.Abs((a.X-c.X)*(b.Y-a.Y)-(a.X-b.X)*(c.Y-a.Y)) / 2
}

// Sampler applies LTTB when enabled.
type Sampler struct {
	Enabled bool
}

// Sample downsamples every channel with the same bucket size. When the
// sampler is disabled the input is returned unchanged.
func (s Sampler) Sample(channels [][]Point, bucket int) [][]Point {
	if !s.Enabled {
		return channels
	}
	out := make([][]Point, len(channels))
	for i, ch := range channels {
		out[i] = LTTB(ch, bucket)
	}
	return out
}

// FromValues turns raw samples into index/value points.
func FromValues(values []float64) []Point {
	out := make([]Point, len(values))
	for i, v := range values {
		out[i] = Point{X: float64(i), Y: v}
	}
	return out
}
