package console

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	ColLeft    key.Binding
	ColRight   key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	FirstPage  key.Binding
	LastPage   key.Binding
	PageSize   key.Binding
	Search     key.Binding
	Filter     key.Binding
	Sort       key.Binding
	Select     key.Binding
	SelectAll  key.Binding
	View       key.Binding
	Edit       key.Binding
	Status     key.Binding
	Delete     key.Binding
	BulkDelete key.Binding
	Export     key.Binding
	Copy       key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	ColLeft:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
	ColRight:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
	NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next list")),
	PrevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev list")),
	NextPage:   key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
	PrevPage:   key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
	FirstPage:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first page")),
	LastPage:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last page")),
	PageSize:   key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
	Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
	Select:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select")),
	SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	View:       key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "view")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Status:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "change status")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	BulkDelete: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
	Export:     key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export csv")),
	Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy row")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Search, k.Sort, k.View, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ColLeft, k.ColRight, k.NextTab, k.PrevTab},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.PageSize},
		{k.Search, k.Filter, k.Sort, k.Select, k.SelectAll, k.Refresh},
		{k.View, k.Edit, k.Status, k.Delete, k.BulkDelete, k.Export, k.Copy},
		{k.Help, k.Quit},
	}
}
