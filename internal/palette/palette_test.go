package palette

import (
	"strings"
	"testing"
)

func TestWheelIsStableAndDistinct(t *testing.T) {
	w := NewWheel(0)
	a := w.ColorFor("acc", 1)
	if a != w.ColorFor("acc", 1) {
		t.Fatal("expected the same color for the same stream and key")
	}
	if a == w.ColorFor("acc", 2) {
		t.Fatal("expected different keys to get different colors")
	}
	if got := w.ColorFor("acc", 0); got != w.Null {
		t.Fatalf("expected null color for null key, got %+v", got)
	}
}

func TestHSVPrimaries(t *testing.T) {
	tests := []struct {
		h    float64
		want RGB
	}{
		{0, RGB{R: 255}},
		{1.0 / 3, RGB{G: 255}},
		{2.0 / 3, RGB{B: 255}},
		{-1.0 / 3, RGB{B: 255}},
	}
	for _, tt := range tests {
		if got := HSV(tt.h, 1, 1); got != tt.want {
			t.Fatalf("HSV(%v): expected %+v, got %+v", tt.h, tt.want, got)
		}
	}
}

func TestStateSkipsRepeatedColors(t *testing.T) {
	var sb strings.Builder
	s := NewStateFor(ProfileTrueColor)
	red := RGB{R: 255}
	s.Set(&sb, red)
	s.Set(&sb, red)
	s.SetBackground(&sb, red)
	s.Reset(&sb)
	want := "\x1b[38;2;255;0;0m\x1b[48;2;255;0;0m\x1b[0m"
	if sb.String() != want {
		t.Fatalf("expected %q, got %q", want, sb.String())
	}
}

func TestNoColorProfileWritesNothing(t *testing.T) {
	var sb strings.Builder
	s := NewStateFor(ProfileNone)
	s.Set(&sb, RGB{R: 1})
	s.Reset(&sb)
	if sb.Len() != 0 {
		t.Fatalf("expected no output, got %q", sb.String())
	}
}

func TestANSI16PicksNearest(t *testing.T) {
	if got := sequence(ProfileANSI16, RGB{R: 200, G: 40, B: 40}, false); got != "\x1b[31m" {
		t.Fatalf("expected red foreground, got %q", got)
	}
	if got := sequence(ProfileANSI16, RGB{R: 200, G: 40, B: 40}, true); got != "\x1b[41m" {
		t.Fatalf("expected red background, got %q", got)
	}
}

func TestDetectProfile(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}
	t.Setenv("NO_COLOR", "")
	if got := detectProfile(env(nil)); got != ProfileNone {
		t.Fatalf("expected NO_COLOR to disable color, got %v", got)
	}
}
