package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

type keyMap struct {
	Mode       key.Binding
	NextType   key.Binding
	PrevType   key.Binding
	Labels     key.Binding
	Energy     key.Binding
	EnergyMode key.Binding
	Delete     key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	Reset      key.Binding
	Reload     key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mode, k.NextType, k.ZoomIn, k.ZoomOut, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Mode, k.NextType, k.PrevType, k.Delete},
		{k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanRight, k.Reset},
		{k.Labels, k.Energy, k.EnergyMode},
		{k.Reload, k.Save, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Mode: key.NewBinding(
		key.WithKeys("m", "tab"),
		key.WithHelp("m", "mode"),
	),
	NextType: key.NewBinding(
		key.WithKeys("t", "]"),
		key.WithHelp("t", "next type"),
	),
	PrevType: key.NewBinding(
		key.WithKeys("T", "["),
		key.WithHelp("T", "prev type"),
	),
	Labels: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "labels"),
	),
	Energy: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "energy"),
	),
	EnergyMode: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "stack/overlay"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x", "delete", "backspace"),
		key.WithHelp("x", "delete"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	PanLeft: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan"),
	),
	PanRight: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset zoom"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
