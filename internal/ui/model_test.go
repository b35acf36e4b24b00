package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/databar/internal/config"
	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/drawer"
	"github.com/olivier-w/databar/internal/labels"
	"github.com/olivier-w/databar/internal/store"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func testDataset() *dataset.Dataset {
	return dataset.New([]dataset.Channel{
		{Name: "ax", Samples: ramp(100)},
		{Name: "ay", Samples: ramp(100)},
		{Name: "label", Samples: append(append(make([]float64, 40), 1, 1, 1), make([]float64, 57)...)},
	}, dataset.Info{Name: "walk", Hz: 10})
}

func testConfig() *config.Config {
	return &config.Config{LogLevel: "info", Scheme: "0:none,1:fall", Downsample: true, SeedLabels: true}
}

func newTestModel(t *testing.T, charts [][]int, st *store.Store) Model {
	t.Helper()
	ds := testDataset()
	p := dataset.NewProvider(func(context.Context, dataset.Info) (*dataset.Dataset, error) {
		return ds, nil
	})
	m := New(Params{
		Info:     dataset.Info{Name: "walk"},
		Charts:   charts,
		Provider: p,
		Store:    st,
		Config:   testConfig(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 104, Height: 30})
	return next.(Model)
}

// load finishes the current draw of every chart with the test dataset.
func load(t *testing.T, m Model, energy *dataset.Energy) Model {
	t.Helper()
	for i, c := range m.charts {
		next, _ := m.Update(chartLoadedMsg{
			chart:  i,
			gen:    c.drawer.BeginDraw(),
			data:   testDataset().Filter(c.sensors),
			energy: energy,
		})
		m = next.(Model)
	}
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// messages runs cmd and every command nested in a batch, in order.
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, messages(c)...)
	}
	return out
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// frameCell is a screen cell inside the frame of chart i.
func frameCell(m Model, i, col int) (int, int) {
	return col + pad, m.charts[i].top + 5
}

func mouse(m Model, x, y int, action tea.MouseAction, b tea.MouseButton) (Model, tea.Cmd) {
	return update(m, tea.MouseMsg{X: x, Y: y, Action: action, Button: b})
}

func TestLayoutStacksCharts(t *testing.T) {
	m := newTestModel(t, [][]int{{0}, {1}}, nil)
	a, b := m.charts[0], m.charts[1]
	if a.top != headerRows+1 || b.top != a.top+a.rows+1 {
		t.Fatalf("unexpected chart tops %d, %d", a.top, b.top)
	}
	if a.cols != 100 || a.rows < minChartRows {
		t.Fatalf("unexpected chart size %dx%d", a.cols, a.rows)
	}
}

func TestStaleChartLoadIsDropped(t *testing.T) {
	m := newTestModel(t, [][]int{{0}}, nil)
	d := m.charts[0].drawer
	stale := d.BeginDraw()
	current := d.BeginDraw()

	m, _ = update(m, chartLoadedMsg{chart: 0, gen: stale, data: testDataset().Filter([]int{0})})
	if d.Loaded() {
		t.Fatal("expected stale load to be dropped")
	}
	m, _ = update(m, chartLoadedMsg{chart: 0, gen: current, data: testDataset().Filter([]int{0})})
	if !d.Loaded() {
		t.Fatal("expected current load to be drawn")
	}
	if m.charts[0].title != "ax" {
		t.Fatalf("expected chart titled by its channels, got %q", m.charts[0].title)
	}
}

func TestLoadErrorOnlyForCurrentDraw(t *testing.T) {
	m := newTestModel(t, [][]int{{0}}, nil)
	d := m.charts[0].drawer
	stale := d.BeginDraw()
	d.BeginDraw()

	m, _ = update(m, chartLoadedMsg{chart: 0, gen: stale, err: errors.New("boom")})
	if m.charts[0].err != nil || m.statusMsg != "" {
		t.Fatal("expected stale error to be ignored")
	}
	m, _ = update(m, chartLoadedMsg{chart: 0, gen: d.Generation(), err: errors.New("boom")})
	if m.charts[0].err == nil || !m.statusErr {
		t.Fatal("expected current error to be reported")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatal("expected the error in the chart area")
	}
}

func TestLoadChartCommandUsesProvider(t *testing.T) {
	m := newTestModel(t, [][]int{{1}}, nil)
	msg := m.loadChart(0)().(chartLoadedMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if msg.gen != m.charts[0].drawer.Generation() {
		t.Fatal("expected the message tagged with the latest draw")
	}
	if names := msg.data.Names(); len(names) != 1 || names[0] != "ay" {
		t.Fatalf("expected channel ay, got %v", names)
	}
}

func TestMouseClickCreatesLabel(t *testing.T) {
	m := load(t, newTestModel(t, [][]int{{0}}, nil), nil)
	x, y := frameCell(m, 0, 40)

	m, _ = mouse(m, x, y, tea.MouseActionPress, tea.MouseButtonLeft)
	m, cmd := mouse(m, x, y, tea.MouseActionRelease, tea.MouseButtonNone)
	if m.stream.Len() != 1 {
		t.Fatalf("expected a label from the click, got %d", m.stream.Len())
	}
	if cmd == nil || !m.animating {
		t.Fatal("expected the enter transition to be animated")
	}
}

func TestMiddleButtonSyncsModeAcrossCharts(t *testing.T) {
	m := load(t, newTestModel(t, [][]int{{0}, {1}}, nil), nil)
	x, y := frameCell(m, 0, 40)
	m, _ = mouse(m, x, y, tea.MouseActionPress, tea.MouseButtonMiddle)
	for i, c := range m.charts {
		if c.drawer.Mode() != drawer.ModeSelection {
			t.Fatalf("chart %d: expected selection mode, got %v", i, c.drawer.Mode())
		}
	}
}

func TestKeyZoomIsSynchronised(t *testing.T) {
	m := load(t, newTestModel(t, [][]int{{0}, {1}}, nil), nil)
	m, _ = update(m, keyMsg("+"))
	for i, c := range m.charts {
		if c.drawer.Transform().K != 2 {
			t.Fatalf("chart %d: expected k=2, got %+v", i, c.drawer.Transform())
		}
	}
	m, _ = update(m, keyMsg("0"))
	if m.charts[1].drawer.Transform().K != 1 {
		t.Fatal("expected reset to reach every chart")
	}
}

func TestWheelOverSecondChartZoomsBoth(t *testing.T) {
	m := load(t, newTestModel(t, [][]int{{0}, {1}}, nil), nil)
	x, y := frameCell(m, 1, 40)
	m, _ = mouse(m, x, y, tea.MouseActionPress, tea.MouseButtonWheelUp)
	if m.focus != 1 {
		t.Fatalf("expected focus on chart 1, got %d", m.focus)
	}
	a, b := m.charts[0].drawer.Transform(), m.charts[1].drawer.Transform()
	if a != b || a.K == 1 {
		t.Fatalf("expected matching zoomed transforms, got %+v and %+v", a, b)
	}
}

func TestTypeKeysCycleStream(t *testing.T) {
	m := load(t, newTestModel(t, [][]int{{0}}, nil), nil)
	m, _ = update(m, keyMsg("t"))
	if m.stream.ActiveType() != 1 {
		t.Fatalf("expected type 1, got %d", m.stream.ActiveType())
	}
	if !strings.Contains(m.statusLine(), "fall") {
		t.Fatalf("expected active type in the status line, got %q", m.statusLine())
	}
	m, _ = update(m, keyMsg("T"))
	if m.stream.ActiveType() != 0 {
		t.Fatalf("expected type 0, got %d", m.stream.ActiveType())
	}
}

func TestPourSchedulesTimers(t *testing.T) {
	e := dataset.NewEnergy(dataset.New([]dataset.Channel{
		{Name: "well", Samples: ramp(100)},
	}, dataset.Info{Name: "energy"}))
	m := load(t, newTestModel(t, [][]int{{0}}, nil), e)
	m, _ = update(m, keyMsg("m"))
	m, _ = update(m, keyMsg("m"))
	if m.charts[0].drawer.Mode() != drawer.ModePour {
		t.Fatalf("expected pour mode, got %v", m.charts[0].drawer.Mode())
	}

	x, y := frameCell(m, 0, 40)
	m, cmd := mouse(m, x, y, tea.MouseActionPress, tea.MouseButtonLeft)
	d := m.charts[0].drawer
	if !d.PourActive() || cmd == nil {
		t.Fatal("expected pour to start with timers")
	}
	gen := d.PourGeneration()

	if _, cmd := update(m, pourInjectMsg{chart: 0, gen: gen}); cmd == nil {
		t.Fatal("expected inject timer to reschedule")
	}
	if _, cmd := update(m, pourFrameMsg{chart: 0, gen: gen}); cmd == nil {
		t.Fatal("expected frame timer to reschedule")
	}

	for d.PourStep(gen) {
	}
	m, cmd = update(m, pourFrameMsg{chart: 0, gen: gen})
	if cmd != nil {
		t.Fatal("expected frame timer to stop once the pour settles")
	}
	m, cmd = update(m, pourInjectMsg{chart: 0, gen: gen})
	restarted := false
	for _, msg := range messages(cmd) {
		if f, ok := msg.(pourFrameMsg); ok && f.gen == gen {
			restarted = true
		}
	}
	if !restarted {
		t.Fatal("expected injection into a settled pour to restart the frame timer")
	}

	m, _ = mouse(m, x, y, tea.MouseActionRelease, tea.MouseButtonLeft)
	if d.PourActive() {
		t.Fatal("expected release to end the pour")
	}
	if _, cmd := update(m, pourInjectMsg{chart: 0, gen: gen}); cmd != nil {
		t.Fatal("expected stale inject timer to stop")
	}
	if _, cmd := update(m, pourFrameMsg{chart: 0, gen: gen}); cmd != nil {
		t.Fatal("expected stale frame timer to stop")
	}
}

func TestLeavingChartClearsHover(t *testing.T) {
	m := load(t, newTestModel(t, [][]int{{0}}, nil), nil)
	m.stream.Add(labels.Label{Start: 0, End: 99, Label: 1})
	x, y := frameCell(m, 0, 40)
	m, _ = mouse(m, x, y, tea.MouseActionMotion, tea.MouseButtonNone)
	if !strings.Contains(m.messageLine(), "fall event") {
		t.Fatalf("expected label tooltip, got %q", m.messageLine())
	}
	m, _ = mouse(m, x, 0, tea.MouseActionMotion, tea.MouseButtonNone)
	if m.hover != -1 || m.charts[0].drawer.Tooltip() != "" {
		t.Fatal("expected leaving the chart to clear the tooltip")
	}
}

func TestSeededLabelsOnlyFillEmptyStream(t *testing.T) {
	m := newTestModel(t, [][]int{{0}}, nil)
	if !m.seed {
		t.Fatal("expected seeding without saved labels")
	}
	msg := m.seedLabels()().(labelsSeededMsg)
	if msg.err != nil || len(msg.labels) != 1 {
		t.Fatalf("expected one seeded run, got %+v", msg)
	}
	m, _ = update(m, msg)
	if l, _ := m.stream.Get(0); l.Start != 40 || l.End != 42 || l.Label != 1 {
		t.Fatalf("unexpected seeded label %+v", l)
	}

	m, _ = update(m, labelsSeededMsg{labels: []labels.Label{{Start: 1, End: 2, Label: 1}}})
	if m.stream.Len() != 1 {
		t.Fatal("expected seeding to leave a non-empty stream alone")
	}
}

func TestSaveWithoutStore(t *testing.T) {
	m := newTestModel(t, [][]int{{0}}, nil)
	m, cmd := update(m, keyMsg("s"))
	if cmd != nil || !m.statusErr {
		t.Fatal("expected an error status without a store")
	}
}

func TestSaveAndRestoreLabels(t *testing.T) {
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	m := newTestModel(t, [][]int{{0}}, st)
	m.stream.Add(labels.Label{Start: 30, End: 10, Label: 1})
	m, cmd := update(m, keyMsg("s"))
	if cmd == nil || !m.saving {
		t.Fatal("expected a save command")
	}
	if _, again := update(m, keyMsg("s")); again != nil {
		t.Fatal("expected no second save while one is running")
	}
	var saved tea.Msg
	for _, msg := range messages(cmd) {
		if _, ok := msg.(labelsSavedMsg); ok {
			saved = msg
		}
	}
	if saved == nil {
		t.Fatal("expected the save command to report labelsSavedMsg")
	}
	m, _ = update(m, saved)
	if m.saving || m.statusErr || m.statusMsg != "Saved 1 labels" {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}

	restored := newTestModel(t, [][]int{{0}}, st)
	if restored.seed {
		t.Fatal("expected no seeding with saved labels")
	}
	l, ok := restored.stream.Get(0)
	if !ok || l.Start != 10 || l.End != 30 || l.Type != "fall" {
		t.Fatalf("expected normalised saved label, got %+v", l)
	}
}

func TestQuitClosesCharts(t *testing.T) {
	m := newTestModel(t, [][]int{{0}}, nil)
	m, cmd := update(m, keyMsg("q"))
	if !m.quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quitting")
	}
}

func TestViewShowsSpinnerUntilLoaded(t *testing.T) {
	m := newTestModel(t, [][]int{{0}}, nil)
	if !strings.Contains(m.View(), "Loading...") {
		t.Fatal("expected loading placeholder")
	}
	m = load(t, m, nil)
	view := m.View()
	if strings.Contains(view, "Loading...") {
		t.Fatal("expected chart instead of the placeholder")
	}
	if !strings.ContainsFunc(view, func(r rune) bool { return r > 0x2800 && r <= 0x28ff }) {
		t.Fatal("expected braille output")
	}
}

func TestParseChannels(t *testing.T) {
	tests := []struct {
		arg  string
		want []int
		ok   bool
	}{
		{"0", []int{0}, true},
		{"1, 3", []int{1, 3}, true},
		{"2,", []int{2}, true},
		{"", nil, false},
		{"a", nil, false},
		{"-1", nil, false},
	}
	for _, tt := range tests {
		got, err := ParseChannels(tt.arg)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseChannels(%q): unexpected error %v", tt.arg, err)
		}
		if formatIndices(got) != formatIndices(tt.want) {
			t.Fatalf("ParseChannels(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestRenderWindowBar(t *testing.T) {
	if got := renderWindowBar(0, 100, 100, 12); got != strings.Repeat("━", 10) {
		t.Fatalf("expected a full bar, got %q", got)
	}
	if got := renderWindowBar(50, 60, 100, 12); got != "─────━────" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := renderWindowBar(0, 0, 0, 12); got != strings.Repeat("─", 10) {
		t.Fatalf("expected an empty bar, got %q", got)
	}
}
