package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/databar/internal/drawer"
)

// chartMargins are the drawer margins in braille dots: two columns of tick
// labels on each side and two rows under the frame for the x-axis.
var chartMargins = drawer.Margins{Top: 4, Right: 16, Bottom: 8, Left: 16}

// chart is one sensor chart placed on screen. top is the first screen row
// of the plot and cols/rows its size in cells.
type chart struct {
	drawer  *drawer.Drawer
	sensors []int
	title   string
	err     error

	top, rows, cols int
}

func newChart(d *drawer.Drawer, sensors []int) *chart {
	return &chart{drawer: d, sensors: sensors, title: "channels " + formatIndices(sensors)}
}

func (c *chart) contains(x, y int) bool {
	return y >= c.top && y < c.top+c.rows && x >= 0 && x < c.cols
}

// point maps a terminal cell (relative to the chart's left edge) to the
// centre dot of that cell in viewport pixels.
func (c *chart) point(x, y int) drawer.Point {
	return drawer.Point{X: float64(x*2 + 1), Y: float64((y-c.top)*4 + 2)}
}

func (c *chart) resize(cols, rows int) {
	c.cols, c.rows = cols, rows
	c.drawer.Resize(float64(cols*2), float64(rows*4))
}

// mouseButton maps a terminal mouse button to a drawer button. Wheel
// buttons are not buttons to the drawer.
func mouseButton(b tea.MouseButton) (drawer.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return drawer.ButtonPrimary, true
	case tea.MouseButtonMiddle:
		return drawer.ButtonMiddle, true
	case tea.MouseButtonRight:
		return drawer.ButtonSecondary, true
	case tea.MouseButtonBackward:
		return drawer.ButtonBack, true
	case tea.MouseButtonForward:
		return drawer.ButtonForward, true
	}
	return 0, false
}

func formatIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// ParseChannels parses one chart argument, a comma-separated list of one or
// two channel indices.
func ParseChannels(arg string) ([]int, error) {
	var idx []int
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid channel index %q", part)
		}
		idx = append(idx, v)
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("no channels in %q", arg)
	}
	return idx, nil
}
