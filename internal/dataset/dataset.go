package dataset

import (
	"sync"
	"time"
)

// Channel is one sensor signal: an ordered sequence of samples at the
// dataset's rate.
type Channel struct {
	Name    string
	Samples []float64
}

// Info describes where a dataset comes from and how to read it.
type Info struct {
	Name   string
	Path   string
	Format FormatKind
	Hz     float64
	Title  string
}

// Sample is a single derived point of a channel.
type Sample struct {
	Value     float64
	Index     float64
	Timestamp time.Duration
}

// Dataset is an immutable set of parallel channels sharing length and rate.
type Dataset struct {
	channels []Channel
	info     Info

	samplesOnce sync.Once
	samples     [][]Sample
}

// New builds a dataset. The channel slices are owned by the dataset from
// here on and must not be modified by the caller.
func New(channels []Channel, info Info) *Dataset {
	return &Dataset{channels: channels, info: info}
}

// Info returns the dataset description.
func (d *Dataset) Info() Info { return d.info }

// ChannelCount returns the number of channels.
func (d *Dataset) ChannelCount() int { return len(d.channels) }

// Len returns the number of samples per channel.
func (d *Dataset) Len() int {
	if len(d.channels) == 0 {
		return 0
	}
	return len(d.channels[0].Samples)
}

// Names returns the channel names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.channels))
	for i, ch := range d.channels {
		names[i] = ch.Name
	}
	return names
}

// Format returns the raw sample arrays, one per channel.
func (d *Dataset) Format() [][]float64 {
	out := make([][]float64, len(d.channels))
	for i, ch := range d.channels {
		out[i] = ch.Samples
	}
	return out
}

// Channel returns channel i, or false when i is out of range.
func (d *Dataset) Channel(i int) (Channel, bool) {
	if i < 0 || i >= len(d.channels) {
		return Channel{}, false
	}
	return d.channels[i], true
}

// Filter returns a new dataset holding the channels whose index appears in
// idx, in source order. Indices outside [0, ChannelCount) are ignored.
func (d *Dataset) Filter(idx []int) *Dataset {
	want := make(map[int]bool, len(idx))
	for _, i := range idx {
		want[i] = true
	}
	var kept []Channel
	for i, ch := range d.channels {
		if want[i] {
			kept = append(kept, ch)
		}
	}
	return New(kept, d.info)
}

// LabelsChannel returns the last channel as a one-channel dataset. An empty
// dataset yields an empty result.
func (d *Dataset) LabelsChannel() *Dataset {
	return d.Filter([]int{len(d.channels) - 1})
}

// ToSamples derives timestamped samples for every channel. The result is
// computed once and shared by later calls.
func (d *Dataset) ToSamples() [][]Sample {
	d.samplesOnce.Do(func() {
		period := samplePeriod(d.info.Hz)
		d.samples = make([][]Sample, len(d.channels))
		for j, ch := range d.channels {
			out := make([]Sample, len(ch.Samples))
			for i, v := range ch.Samples {
				out[i] = Sample{
					Value:     v,
					Index:     float64(i),
					Timestamp: time.Duration(float64(i) * period),
				}
			}
			d.samples[j] = out
		}
	})
	return d.samples
}

// samplePeriod returns the sample spacing in nanoseconds, or 0 when the rate
// is unknown.
func samplePeriod(hz float64) float64 {
	if hz <= 0 {
		return 0
	}
	return float64(time.Second) / hz
}

// Interval is a run of identical non-null label values in a labels channel.
type Interval struct {
	Start float64
	End   float64
	Label int
}

// Intervals run-length encodes a per-sample label channel, skipping runs of
// nullKey. End is the index of the last sample in the run.
func Intervals(samples []float64, nullKey int) []Interval {
	var out []Interval
	start := -1
	cur := nullKey
	flush := func(end int) {
		if start >= 0 && cur != nullKey {
			out = append(out, Interval{Start: float64(start), End: float64(end), Label: cur})
		}
	}
	for i, v := range samples {
		key := int(v)
		if start >= 0 && key == cur {
			continue
		}
		flush(i - 1)
		start, cur = i, key
	}
	flush(len(samples) - 1)
	return out
}
