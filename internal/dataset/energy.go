package dataset

import (
	"math"
	"sort"
	"strconv"
)

// DisplayMode selects how energy wells are presented.
type DisplayMode int

const (
	Overlayed DisplayMode = iota
	Stacked
)

// Next toggles between overlayed and stacked presentation.
func (m DisplayMode) Next() DisplayMode {
	if m == Overlayed {
		return Stacked
	}
	return Overlayed
}

func (m DisplayMode) String() string {
	if m == Stacked {
		return "stacked"
	}
	return "overlayed"
}

// Band is one stacked energy series: Low[i] and High[i] bound the band at
// sample i.
type Band struct {
	Key  string
	Low  []float64
	High []float64
}

// Energy tracks the energy-well overlay of a chart.
type Energy struct {
	ds      *Dataset
	Mode    DisplayMode
	Visible bool

	stacked []Band
	sums    []float64
}

// NewEnergy wraps an energy dataset. A nil dataset yields an overlay that
// reports no energy.
func NewEnergy(ds *Dataset) *Energy {
	return &Energy{ds: ds, Visible: true}
}

// HasEnergy reports whether there is anything to draw or pour into.
func (e *Energy) HasEnergy() bool {
	return e != nil && e.ds != nil && e.ds.ChannelCount() > 0 && e.ds.Len() > 0
}

// Name returns the energy dataset name.
func (e *Energy) Name() string {
	if !e.HasEnergy() {
		return "No Energy Data"
	}
	return e.ds.Info().Name
}

// Keys returns the energy channel names.
func (e *Energy) Keys() []string {
	if !e.HasEnergy() {
		return nil
	}
	return e.ds.Names()
}

// Data returns the raw energy channels.
func (e *Energy) Data() [][]float64 {
	if !e.HasEnergy() {
		return nil
	}
	return e.ds.Format()
}

// Len returns the number of samples per energy channel.
func (e *Energy) Len() int {
	if !e.HasEnergy() {
		return 0
	}
	return e.ds.Len()
}

// Stacked returns the energy channels stacked cumulatively, in ascending
// key order, bottom band first.
func (e *Energy) Stacked() []Band {
	if !e.HasEnergy() {
		return nil
	}
	if e.stacked != nil {
		return e.stacked
	}
	names := e.ds.Names()
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keyLess(names[order[a]], names[order[b]]) })

	n := e.ds.Len()
	base := make([]float64, n)
	bands := make([]Band, 0, len(order))
	for _, j := range order {
		ch, _ := e.ds.Channel(j)
		b := Band{Key: ch.Name, Low: make([]float64, n), High: make([]float64, n)}
		for i, v := range ch.Samples {
			b.Low[i] = base[i]
			b.High[i] = base[i] + v
			base[i] = b.High[i]
		}
		bands = append(bands, b)
	}
	e.stacked = bands
	e.sums = base
	return bands
}

// keyLess orders numeric keys by value and everything else as strings.
// Numeric keys sort before named ones.
func keyLess(a, b string) bool {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if x != y {
			return x < y
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// AtSync returns the total energy at the sample nearest to domain index x.
// Indices outside the data clamp to the first or last sample.
func (e *Energy) AtSync(x float64) float64 {
	if !e.HasEnergy() || math.IsNaN(x) {
		return 0
	}
	e.Stacked()
	x = math.Max(-1, math.Min(x, float64(len(e.sums))))
	i := int(math.Round(x))
	if i < 0 {
		i = 0
	}
	if i >= len(e.sums) {
		i = len(e.sums) - 1
	}
	return e.sums[i]
}
