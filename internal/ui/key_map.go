package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	nextView key.Binding
	prevView key.Binding
	home     key.Binding
	find     key.Binding
	library  key.Binding
	create   key.Binding
	all      key.Binding
	music    key.Binding
	toggle   key.Binding
	next     key.Binding
	previous key.Binding
	rewind   key.Binding
	forward  key.Binding
	save     key.Binding
	player   key.Binding
	refresh  key.Binding
	logout   key.Binding
	help     key.Binding
	quit     key.Binding
	login    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		nextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevView: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		home:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
		find:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "search")),
		library:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "library")),
		create:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "create")),
		all:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		music:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "music")),
		toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous")),
		rewind:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "rewind")),
		forward:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward")),
		save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to library")),
		player:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "player")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		login:    key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open login page")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.nextView, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.home, k.find, k.library, k.create, k.search},
		{k.toggle, k.next, k.previous, k.rewind, k.forward, k.player},
		{k.all, k.music, k.save, k.refresh},
		{k.logout, k.help, k.quit},
	}
}
