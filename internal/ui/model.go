package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/olivier-w/databar/internal/config"
	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/drawer"
	"github.com/olivier-w/databar/internal/labels"
	"github.com/olivier-w/databar/internal/palette"
	"github.com/olivier-w/databar/internal/scale"
	"github.com/olivier-w/databar/internal/store"
	"github.com/olivier-w/databar/internal/util"
)

const (
	streamName = "labels"

	pad           = 2
	headerRows    = 3
	footerRows    = 4
	minChartRows  = 6
	statusTimeout = 5 * time.Second
)

// Params describes what the TUI shows.
type Params struct {
	Info     dataset.Info
	Energy   *dataset.Info // nil when there is no energy overlay
	Charts   [][]int       // channel indices of each sensor chart
	Provider *dataset.Provider
	Store    *store.Store // nil disables saving
	Config   *config.Config
}

// Model is the Bubbletea model for the databar TUI.
type Model struct {
	info     dataset.Info
	energy   *dataset.Info
	provider *dataset.Provider
	store    *store.Store
	cfg      *config.Config

	stream *labels.Stream
	charts []*chart
	hover  int // chart under the pointer, -1 for none
	focus  int // chart that keyboard zoom and pan apply to

	spinner   spinner.Model
	help      help.Model
	width     int
	height    int
	animating bool
	quitting  bool
	seed      bool

	statusMsg  string
	statusErr  bool
	statusTime time.Time
	saving     bool
}

// New creates the model. Saved labels are read from the store up front;
// when there are none the stream is seeded from the dataset's labels
// channel once it loads.
func New(p Params) Model {
	cfg := p.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	m := Model{
		info:     p.Info,
		energy:   p.Energy,
		provider: p.Provider,
		store:    p.Store,
		cfg:      cfg,
		hover:    -1,
		spinner:  s,
		help:     help.New(),
	}
	if m.provider == nil {
		m.provider = dataset.NewProvider(nil)
	}

	scheme := cfg.LabelScheme(streamName)
	m.stream = labels.NewStream(streamName, scheme, m.savedLabels())
	m.seed = m.stream.IsEmpty() && cfg.SeedLabels

	colorer := palette.NewWheel(scheme.NullLabel)
	for _, sensors := range p.Charts {
		dims := 1
		if len(sensors) == 2 {
			dims = 2
		}
		d := drawer.New(m.info.Name+"/"+formatIndices(sensors), m.stream, drawer.Options{
			Dims:       dims,
			Margins:    chartMargins,
			Colorer:    colorer,
			Downsample: cfg.Downsample,
		})
		m.charts = append(m.charts, newChart(d, sensors))
	}
	for i, c := range m.charts {
		c.drawer.OnZoom = m.syncZoom(i)
	}
	return m
}

func (m Model) savedLabels() []labels.Label {
	if m.store == nil {
		return nil
	}
	data, err := m.store.Load(m.info.Name, streamName)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.WithError(err).Warn("reading saved labels")
		return nil
	}
	lbls, err := labels.FromJSON(data)
	if err != nil {
		log.WithError(err).Warn("decoding saved labels")
		return nil
	}
	return lbls
}

// syncZoom applies chart i's zoom to every other chart.
func (m Model) syncZoom(i int) func(scale.Transform) {
	charts := m.charts
	return func(t scale.Transform) {
		for j, c := range charts {
			if j != i {
				c.drawer.SetTransform(t)
			}
		}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tickCmd(), tea.SetWindowTitle(windowTitle(m.info))}
	for i := range m.charts {
		cmds = append(cmds, m.loadChart(i))
	}
	if m.seed {
		cmds = append(cmds, m.seedLabels())
	}
	return tea.Batch(cmds...)
}

// loadChart starts a draw of chart i and loads its channels off the UI
// loop. The result is tagged with the draw generation.
func (m Model) loadChart(i int) tea.Cmd {
	c := m.charts[i]
	c.err = nil
	gen := c.drawer.BeginDraw()
	provider, info, einfo, sensors := m.provider, m.info, m.energy, c.sensors
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := provider.Load(ctx, info); err != nil {
			return chartLoadedMsg{chart: i, gen: gen, err: err}
		}
		ds, err := provider.SensorStreams(ctx, info.Name, sensors)
		if err != nil {
			return chartLoadedMsg{chart: i, gen: gen, err: err}
		}
		var energy *dataset.Energy
		if einfo != nil {
			eds, err := provider.Load(ctx, *einfo)
			if err != nil {
				return chartLoadedMsg{chart: i, gen: gen, err: fmt.Errorf("loading energy: %w", err)}
			}
			energy = dataset.NewEnergy(eds)
		}
		return chartLoadedMsg{chart: i, gen: gen, data: ds, energy: energy}
	}
}

func (m Model) seedLabels() tea.Cmd {
	provider, info, nullKey := m.provider, m.info, m.cfg.NullLabel
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := provider.Load(ctx, info); err != nil {
			return labelsSeededMsg{err: err}
		}
		samples, err := provider.Labels(ctx, info.Name)
		if err != nil {
			return labelsSeededMsg{err: err}
		}
		return labelsSeededMsg{labels: labels.Seed(samples, nullKey)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handleMsg(msg)
	return next.withAnimation(cmd)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 2*pad
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading() {
			return m, cmd
		}
		return m, nil

	case tickMsg:
		if m.statusMsg != "" && time.Since(m.statusTime) > statusTimeout {
			m.statusMsg = ""
		}
		return m, tickCmd()

	case chartLoadedMsg:
		if msg.chart < 0 || msg.chart >= len(m.charts) {
			return m, nil
		}
		c := m.charts[msg.chart]
		if msg.err != nil {
			if msg.gen == c.drawer.Generation() {
				c.err = msg.err
				m.setStatus(fmt.Sprintf("Load failed: %v", msg.err), true)
				log.WithError(msg.err).WithField("chart", c.drawer.Name()).Error("loading chart")
			}
			return m, nil
		}
		if c.drawer.FinishDraw(msg.gen, msg.data, msg.energy) {
			c.title = strings.Join(msg.data.Names(), ", ")
			if t := msg.data.Info().Title; t != "" && m.info.Title == "" {
				m.info.Title = t
			}
		}
		return m, nil

	case labelsSeededMsg:
		if msg.err != nil {
			log.WithError(msg.err).Warn("seeding labels from the labels channel")
			return m, nil
		}
		if m.stream.IsEmpty() && len(msg.labels) > 0 {
			m.stream.SetLabels(msg.labels)
			log.WithField("labels", len(msg.labels)).Info("seeded labels from the labels channel")
		}
		return m, nil

	case labelsSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Save failed: %v", msg.err), true)
		} else {
			m.setStatus(fmt.Sprintf("Saved %s labels", util.FormatCount(msg.count)), false)
		}
		return m, nil

	case pourInjectMsg:
		c, ok := m.chart(msg.chart)
		if !ok {
			return m, nil
		}
		settled := c.drawer.PourSettled()
		if !c.drawer.PourInject(msg.gen) {
			return m, nil
		}
		if settled {
			return m, tea.Batch(pourInjectCmd(msg.chart, msg.gen), pourFrameCmd(msg.chart, msg.gen))
		}
		return m, pourInjectCmd(msg.chart, msg.gen)

	case pourFrameMsg:
		if c, ok := m.chart(msg.chart); ok && c.drawer.PourStep(msg.gen) {
			return m, pourFrameCmd(msg.chart, msg.gen)
		}
		return m, nil

	case animFrameMsg:
		m.animating = false
		for _, c := range m.charts {
			if c.drawer.Animate() {
				m.animating = true
			}
		}
		if m.animating {
			return m, animFrameCmd()
		}
		return m, nil
	}

	return m, nil
}

// withAnimation schedules animation frames when a label transition started.
func (m Model) withAnimation(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.animating {
		return m, cmd
	}
	for _, c := range m.charts {
		if c.drawer.Animating() {
			m.animating = true
			return m, tea.Batch(cmd, animFrameCmd())
		}
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		for _, c := range m.charts {
			c.drawer.Close()
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}
	c, ok := m.chart(m.focus)
	if !ok {
		return m, nil
	}
	d := c.drawer
	panStep := float64(c.cols*2) / 10

	switch {
	case key.Matches(msg, keys.Mode):
		m.setMode(d.Mode().Next())
	case key.Matches(msg, keys.NextType):
		m.stream.Cycle()
	case key.Matches(msg, keys.PrevType):
		m.stream.CycleDown()
	case key.Matches(msg, keys.Labels):
		for _, c := range m.charts {
			c.drawer.ToggleLabels()
		}
	case key.Matches(msg, keys.Energy):
		for _, c := range m.charts {
			c.drawer.ToggleEnergy()
		}
	case key.Matches(msg, keys.EnergyMode):
		for _, c := range m.charts {
			c.drawer.CycleEnergyMode()
		}
	case key.Matches(msg, keys.Delete):
		d.RemoveSelected()
	case key.Matches(msg, keys.ZoomIn):
		d.Zoom(2)
	case key.Matches(msg, keys.ZoomOut):
		d.Zoom(0.5)
	case key.Matches(msg, keys.PanLeft):
		d.Pan(panStep)
	case key.Matches(msg, keys.PanRight):
		d.Pan(-panStep)
	case key.Matches(msg, keys.Reset):
		d.ResetZoom()
	case key.Matches(msg, keys.Reload):
		return m, m.reload()
	case key.Matches(msg, keys.Save):
		return m.save()
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	x, y := msg.X-pad, msg.Y
	idx := -1
	for i, c := range m.charts {
		if c.contains(x, y) {
			idx = i
			break
		}
	}
	if m.hover >= 0 && m.hover != idx {
		m.charts[m.hover].drawer.MouseLeave()
	}
	m.hover = idx
	if idx < 0 {
		return m, nil
	}
	m.focus = idx

	c := m.charts[idx]
	d := c.drawer
	p := c.point(x, y)
	mode, gen := d.Mode(), d.PourGeneration()

	switch msg.Action {
	case tea.MouseActionMotion:
		d.MouseMove(p)
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			d.Wheel(p, 1)
		case tea.MouseButtonWheelDown:
			d.Wheel(p, -1)
		case tea.MouseButtonWheelLeft:
			d.Pan(float64(c.cols*2) / 10)
		case tea.MouseButtonWheelRight:
			d.Pan(-float64(c.cols*2) / 10)
		default:
			if b, ok := mouseButton(msg.Button); ok {
				d.MouseDown(p, b)
			}
		}
	case tea.MouseActionRelease:
		b, ok := mouseButton(msg.Button)
		if !ok {
			b = drawer.ButtonPrimary
		}
		d.MouseUp(p, b)
	}

	if d.Mode() != mode {
		m.setMode(d.Mode())
	}
	if d.PourActive() && d.PourGeneration() != gen {
		gen := d.PourGeneration()
		d.PourInject(gen)
		return m, tea.Batch(pourInjectCmd(idx, gen), pourFrameCmd(idx, gen))
	}
	return m, nil
}

func (m *Model) setMode(mode drawer.Mode) {
	for _, c := range m.charts {
		c.drawer.SetMode(mode)
	}
}

func (m Model) reload() tea.Cmd {
	m.provider.Forget(m.info.Name)
	if m.energy != nil {
		m.provider.Forget(m.energy.Name)
	}
	cmds := []tea.Cmd{m.spinner.Tick}
	for i := range m.charts {
		cmds = append(cmds, m.loadChart(i))
	}
	return tea.Batch(cmds...)
}

func (m Model) save() (Model, tea.Cmd) {
	if m.store == nil {
		m.setStatus("No label store configured", true)
		return m, nil
	}
	if m.saving {
		return m, nil
	}
	data, err := m.stream.ToJSON()
	if err != nil {
		m.setStatus(fmt.Sprintf("Save failed: %v", err), true)
		return m, nil
	}
	m.saving = true
	m.setStatus("Saving...", false)
	st, name, n := m.store, m.info.Name, m.stream.Len()
	return m, func() tea.Msg {
		return labelsSavedMsg{count: n, err: st.Save(name, streamName, data)}
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.statusMsg, m.statusErr, m.statusTime = s, isErr, time.Now()
}

func (m Model) chart(i int) (*chart, bool) {
	if i < 0 || i >= len(m.charts) {
		return nil, false
	}
	return m.charts[i], true
}

func (m Model) loading() bool {
	for _, c := range m.charts {
		if !c.drawer.Loaded() && c.err == nil {
			return true
		}
	}
	return false
}

// layout splits the window between the charts and resizes their drawers.
func (m *Model) layout() {
	n := len(m.charts)
	if n == 0 || m.width <= 0 {
		return
	}
	cols := max(20, m.width-2*pad)
	rows := m.cfg.ChartRows
	if rows <= 0 {
		footer := footerRows
		if m.help.ShowAll {
			footer += 4
		}
		rows = max(minChartRows, (m.height-headerRows-footer-n)/n)
	}
	top := headerRows
	for _, c := range m.charts {
		top++ // chart title
		c.top = top
		c.resize(cols, rows)
		top += rows
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(spaces(pad) + headerStyle.Render("databar") + "  " + titleStyle.Render(datasetTitle(m.info)) + "\n")
	b.WriteString("\n")

	for _, c := range m.charts {
		b.WriteString(spaces(pad) + chartTitleStyle.Render(c.title) + "\n")
		b.WriteString(m.renderChart(c))
	}

	b.WriteString("\n")
	b.WriteString(spaces(pad) + m.statusLine() + "\n")
	b.WriteString(spaces(pad) + m.messageLine() + "\n")
	b.WriteString(spaces(pad) + m.help.View(keys) + "\n")
	return b.String()
}

func (m Model) renderChart(c *chart) string {
	var b strings.Builder
	var lines []string
	switch {
	case c.err != nil:
		lines = []string{errorStyle.Render(c.err.Error())}
	case !c.drawer.Loaded():
		lines = []string{m.spinner.View() + " " + statusStyle.Render("Loading...")}
	default:
		lines = strings.Split(c.drawer.View(c.cols, c.rows), "\n")
	}
	for i := range max(c.rows, 1) {
		b.WriteString(spaces(pad))
		if i < len(lines) {
			b.WriteString(lines[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	c, ok := m.chart(m.focus)
	if !ok {
		return ""
	}
	d := c.drawer
	emap := m.stream.EventMap()
	left := fmt.Sprintf("%s  %s", d.Mode().Icon(), emap.Get(m.stream.ActiveType()))
	if d.Transform().K != 1 {
		left += "  " + renderZoom(d.Transform().K)
	}
	right := fmt.Sprintf("%s labels  %s samples", util.FormatCount(m.stream.Len()), util.FormatCount(d.Len()))

	w := max(40, m.width-2*pad)
	lo, hi := d.Space().X.Domain()
	window := util.FormatIndex(lo) + " " + renderWindowBar(lo, hi, float64(d.Len()), w/3) + " " + util.FormatIndex(hi)

	gap := w - lipgloss.Width(left) - lipgloss.Width(window) - lipgloss.Width(right) - 4
	if gap < 2 {
		return statusStyle.Render(left) + "  " + timeStyle.Render(window)
	}
	return statusStyle.Render(left) + spaces(gap/2+2) + timeStyle.Render(window) + spaces(gap-gap/2+2) + statusStyle.Render(right)
}

func (m Model) messageLine() string {
	if m.statusMsg != "" {
		if m.statusErr {
			return errorStyle.Render(m.statusMsg)
		}
		return helpStyle.Render(m.statusMsg)
	}
	if c, ok := m.chart(m.hover); ok && c.drawer.Tooltip() != "" {
		return tooltipStyle.Render(c.drawer.Tooltip())
	}
	return ""
}

func datasetTitle(info dataset.Info) string {
	if info.Title != "" {
		return info.Title
	}
	return info.Name
}

func windowTitle(info dataset.Info) string {
	return datasetTitle(info) + " · databar"
}
