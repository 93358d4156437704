package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Account    key.Binding
	Plans      key.Binding
	Revalidate key.Binding
	Logout     key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Cycle      key.Binding
	Clear      key.Binding
	Checkout   key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Account:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "account")),
	Plans:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "plans")),
	Revalidate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "nav")),
	Down:       key.NewBinding(key.WithKeys("j", "down")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Cycle:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "billing")),
	Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
	Checkout:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "checkout")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpLine renders the help bar for bindings, in order.
func helpLine(bindings ...key.Binding) string {
	out := ""
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += helpEntry(h.Key, h.Desc)
	}
	return " " + out
}
