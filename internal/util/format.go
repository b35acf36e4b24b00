package util

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// TimeFormatter returns a tick formatter suited to a visible span: coarse
// units when the whole recording is on screen, finer ones when zoomed in.
func TimeFormatter(span time.Duration) func(time.Duration) string {
	switch {
	case span >= 2*time.Hour:
		return func(d time.Duration) string {
			if d < 0 {
				d = 0
			}
			return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
		}
	case span >= 2*time.Minute:
		return FormatDuration
	case span >= 10*time.Second:
		return func(d time.Duration) string {
			if d < 0 {
				d = 0
			}
			return fmt.Sprintf("%.1fs", d.Seconds())
		}
	case span >= time.Second:
		return func(d time.Duration) string {
			if d < 0 {
				d = 0
			}
			return fmt.Sprintf("%.2fs", d.Seconds())
		}
	default:
		return func(d time.Duration) string {
			if d < 0 {
				d = 0
			}
			return fmt.Sprintf("%dms", d.Milliseconds())
		}
	}
}

// FormatIndex formats a sample index tick with thousands separators.
func FormatIndex(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FormatCount formats a sample count for the status line.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatValue formats a y-axis tick compactly.
func FormatValue(v float64) string {
	a := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case a >= 1e4:
		return humanize.SIWithDigits(v, 1, "")
	case a >= 100:
		return fmt.Sprintf("%.0f", v)
	case a >= 1:
		return trimZeros(fmt.Sprintf("%.2f", v))
	default:
		return trimZeros(fmt.Sprintf("%.3f", v))
	}
}

func trimZeros(s string) string {
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
