package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the main view bindings; the help screen is generated from it
type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Earlier      key.Binding
	Later        key.Binding
	EarlierHour  key.Binding
	LaterHour    key.Binding
	PrevDay      key.Binding
	NextDay      key.Binding
	Edit         key.Binding
	Add          key.Binding
	Remove       key.Binding
	MoveUp       key.Binding
	MoveDown     key.Binding
	Reverse      key.Binding
	Sort         key.Binding
	Undo         key.Binding
	Redo         key.Binding
	Now          key.Binding
	Theme        key.Binding
	CopyCalendar key.Binding
	CopyShare    key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select previous zone")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select next zone")),
		Earlier:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "15 minutes earlier")),
		Later:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "15 minutes later")),
		EarlierHour:  key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "one hour earlier")),
		LaterHour:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "one hour later")),
		PrevDay:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous day")),
		NextDay:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next day")),
		Edit:         key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "type a time")),
		Add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add a zone")),
		Remove:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove the selected zone")),
		MoveUp:       key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move zone up")),
		MoveDown:     key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move zone down")),
		Reverse:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse the list")),
		Sort:         key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort by UTC offset")),
		Undo:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:         key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		Now:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "back to now")),
		Theme:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle dark/light")),
		CopyCalendar: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy Google Calendar link")),
		CopyShare:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "copy share link")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) all() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Earlier, k.Later, k.EarlierHour, k.LaterHour, k.PrevDay, k.NextDay,
		k.Edit, k.Add, k.Remove, k.MoveUp, k.MoveDown, k.Reverse, k.Sort, k.Undo, k.Redo,
		k.Now, k.Theme, k.CopyCalendar, k.CopyShare, k.Help, k.Quit,
	}
}
