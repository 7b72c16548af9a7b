package carousel

import "github.com/charmbracelet/bubbles/v2/key"

// keyMap lists every binding of the carousel. It implements help.KeyMap.
type keyMap struct {
	Prev       key.Binding
	Next       key.Binding
	First      key.Binding
	Last       key.Binding
	DayBack    key.Binding
	DayForward key.Binding
	StartEarly key.Binding
	StartLate  key.Binding
	EndEarly   key.Binding
	EndLate    key.Binding
	BothEarly  key.Binding
	BothLate   key.Binding
	BigStep    key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Copy       key.Binding
	CopyAct    key.Binding
	CopyTags   key.Binding
	CopyDesc   key.Binding
	Paste      key.Binding
	Delete     key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev fact")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next fact")),
		First:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		Last:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		DayBack:    key.NewBinding(key.WithKeys("pgup", "K"), key.WithHelp("K", "day back")),
		DayForward: key.NewBinding(key.WithKeys("pgdown", "J"), key.WithHelp("J", "day forward")),
		StartEarly: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "start earlier")),
		StartLate:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "start later")),
		EndEarly:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "end earlier")),
		EndLate:    key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "end later")),
		BothEarly:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "shift earlier")),
		BothLate:   key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "shift later")),
		BigStep:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle big step")),
		Undo:       key.NewBinding(key.WithKeys("ctrl+z", "u"), key.WithHelp("u", "undo")),
		Redo:       key.NewBinding(key.WithKeys("ctrl+y", "r"), key.WithHelp("r", "redo")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy meta")),
		CopyAct:    key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "copy activity")),
		CopyTags:   key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "copy tags")),
		CopyDesc:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "copy description")),
		Paste:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste")),
		Delete:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.StartEarly, k.EndLate, k.Undo, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last, k.DayBack, k.DayForward},
		{k.StartEarly, k.StartLate, k.EndEarly, k.EndLate, k.BothEarly, k.BothLate, k.BigStep},
		{k.Undo, k.Redo, k.Copy, k.CopyAct, k.CopyTags, k.CopyDesc, k.Paste, k.Delete},
		{k.Save, k.Help, k.Quit},
	}
}
