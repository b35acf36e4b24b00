package ui

import (
	"fmt"
	"strings"

	"github.com/olivier-w/databar/internal/util"
)

// renderWindowBar draws where the visible window [lo, hi] sits within a
// recording of total samples.
func renderWindowBar(lo, hi, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2

	if total <= 0 {
		return strings.Repeat("─", barWidth)
	}
	start := int(clamp01(lo/total) * float64(barWidth))
	end := int(clamp01(hi/total)*float64(barWidth) + 0.5)
	if end <= start {
		end = min(start+1, barWidth)
	}

	return strings.Repeat("─", start) + strings.Repeat("━", end-start) + strings.Repeat("─", barWidth-end)
}

func renderZoom(k float64) string {
	return fmt.Sprintf("×%s", util.FormatValue(k))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
