package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/labels"
)

const (
	pourInjectInterval = 100 * time.Millisecond
	frameInterval      = time.Second / 30
)

type tickMsg time.Time

// chartLoadedMsg carries the channels of one chart for draw gen.
type chartLoadedMsg struct {
	chart  int
	gen    uint64
	data   *dataset.Dataset
	energy *dataset.Energy
	err    error
}

type labelsSeededMsg struct {
	labels []labels.Label
	err    error
}

type labelsSavedMsg struct {
	count int
	err   error
}

type pourInjectMsg struct {
	chart int
	gen   uint64
}

type pourFrameMsg struct {
	chart int
	gen   uint64
}

type animFrameMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func pourInjectCmd(chart int, gen uint64) tea.Cmd {
	return tea.Tick(pourInjectInterval, func(time.Time) tea.Msg {
		return pourInjectMsg{chart: chart, gen: gen}
	})
}

func pourFrameCmd(chart int, gen uint64) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return pourFrameMsg{chart: chart, gen: gen}
	})
}

func animFrameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return animFrameMsg{}
	})
}
