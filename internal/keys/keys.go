// Package keys contains the playground keybindings.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the playground.
type KeyMap struct {
	// Cursor
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Pointer emulation
	Grab       key.Binding
	NextEntity key.Binding
	PrevEntity key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding

	// Forwarded to behaviours as KeyDown
	SelectAll key.Binding
	Delete    key.Binding
	Escape    key.Binding

	// Editing
	AddNode     key.Binding
	AddNumber   key.Binding
	AddOperator key.Binding
	Increment   key.Binding
	Decrement   key.Binding

	// General
	Save           key.Binding
	Reload         key.Binding
	ToggleSidebar  key.Binding
	ToggleActivity key.Binding
	Behaviours     key.Binding
	Help           key.Binding
	Quit           key.Binding
}

// Playground holds the active bindings. Tests and the help view read it.
var Playground = DefaultKeyMap()

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "cursor down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "cursor right"),
		),

		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "press/release pointer"),
		),
		NextEntity: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next entity"),
		),
		PrevEntity: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous entity"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),

		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "select all"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "backspace", "x"),
			key.WithHelp("x/del", "delete selection"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),

		AddNode: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add node"),
		),
		AddNumber: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "add number"),
		),
		AddOperator: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "add operator (cycles + - * /)"),
		),
		Increment: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "increment number"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "decrement number"),
		),

		Save: key.NewBinding(
			key.WithKeys("w", "ctrl+s"),
			key.WithHelp("w", "save"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload from disk"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sidebar"),
		),
		ToggleActivity: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle activity"),
		),
		Behaviours: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"),
			key.WithHelp("1-8", "toggle behaviour"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Grab, k.NextEntity, k.PrevEntity, k.ZoomIn, k.ZoomOut},
		{k.SelectAll, k.Delete, k.Escape},
		{k.AddNode, k.AddNumber, k.AddOperator, k.Increment, k.Decrement},
		{k.Save, k.Reload, k.ToggleSidebar, k.ToggleActivity, k.Behaviours, k.Help, k.Quit},
	}
}

// BehaviourIndex maps a digit key to a zero-based behaviour index.
func BehaviourIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '8' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
