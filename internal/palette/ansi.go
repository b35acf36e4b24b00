package palette

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
)

// Profile is the color capability of the terminal.
type Profile uint8

const (
	ProfileNone Profile = iota
	ProfileANSI16
	ProfileANSI256
	ProfileTrueColor
)

var (
	profileOnce sync.Once
	profile     Profile
	seqCache    sync.Map
)

// CurrentProfile detects the terminal's color profile once.
func CurrentProfile() Profile {
	profileOnce.Do(func() {
		profile = detectProfile(os.Getenv)
	})
	return profile
}

func detectProfile(getenv func(string) string) Profile {
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return ProfileNone
	}
	term := strings.ToLower(getenv("TERM"))
	colorTerm := strings.ToLower(getenv("COLORTERM"))
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return ProfileTrueColor
	case strings.Contains(term, "256color"):
		return ProfileANSI256
	case term == "", term == "dumb":
		return ProfileNone
	default:
		return ProfileANSI16
	}
}

// State tracks the foreground and background colors already written to a
// builder so repeated cells don't repeat escape sequences.
type State struct {
	profile Profile
	fg      uint32
	bg      uint32
}

const unset = ^uint32(0)

// NewState returns a state for the detected profile.
func NewState() State { return NewStateFor(CurrentProfile()) }

// NewStateFor returns a state for an explicit profile.
func NewStateFor(p Profile) State {
	return State{profile: p, fg: unset, bg: unset}
}

// Set switches the foreground color.
func (s *State) Set(sb *strings.Builder, c RGB) {
	if s.profile == ProfileNone {
		return
	}
	if key := c.key(); key != s.fg {
		sb.WriteString(sequence(s.profile, c, false))
		s.fg = key
	}
}

// SetBackground switches the background color.
func (s *State) SetBackground(sb *strings.Builder, c RGB) {
	if s.profile == ProfileNone {
		return
	}
	if key := c.key(); key != s.bg {
		sb.WriteString(sequence(s.profile, c, true))
		s.bg = key
	}
}

// Reset clears all attributes if any color was written.
func (s *State) Reset(sb *strings.Builder) {
	if s.profile == ProfileNone || (s.fg == unset && s.bg == unset) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg, s.bg = unset, unset
}

// ResetBackground drops the background while keeping the foreground.
func (s *State) ResetBackground(sb *strings.Builder) {
	if s.profile == ProfileNone || s.bg == unset {
		return
	}
	sb.WriteString("\x1b[49m")
	s.bg = unset
}

var ansi16 = []RGB{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 49, B: 49},
	{R: 13, G: 188, B: 121},
	{R: 229, G: 229, B: 16},
	{R: 36, G: 114, B: 200},
	{R: 188, G: 63, B: 188},
	{R: 17, G: 168, B: 205},
	{R: 229, G: 229, B: 229},
}

func sequence(p Profile, c RGB, bg bool) string {
	key := uint64(p)<<32 | uint64(c.key())
	if bg {
		key |= 1 << 40
	}
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	layer := 38
	if bg {
		layer = 48
	}
	var seq string
	switch p {
	case ProfileTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", layer, c.R, c.G, c.B)
	case ProfileANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", layer, 16+36*r+6*g+b)
	case ProfileANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, q := range ansi16 {
			dr := float64(c.R) - float64(q.R)
			dg := float64(c.G) - float64(q.G)
			db := float64(c.B) - float64(q.B)
			if d := dr*dr + dg*dg + db*db; d < bestDist {
				bestDist = d
				best = i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", layer-8+best)
	}

	seqCache.Store(key, seq)
	return seq
}
