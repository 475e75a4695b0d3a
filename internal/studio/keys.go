package studio

import "github.com/charmbracelet/bubbles/key"

// briefKeys holds key bindings for the brief form.
type briefKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Cycle  key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// ShortHelp returns the brief form bindings for the help bar.
func (k briefKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Cycle, k.Toggle, k.Submit, k.Quit}
}

// FullHelp returns the brief form bindings grouped for expanded help.
func (k briefKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Cycle},
		{k.Toggle, k.Submit, k.Quit},
	}
}

// pipelineKeys holds key bindings for pipeline mode.
type pipelineKeys struct {
	Quit key.Binding
}

// ShortHelp returns the pipeline mode bindings for the help bar.
func (k pipelineKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

// FullHelp returns the pipeline mode bindings grouped for expanded help.
func (k pipelineKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

// resultsKeys holds key bindings for the results workspace.
type resultsKeys struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	Pane     key.Binding
	NewBrief key.Binding
	Send     key.Binding
	Quit     key.Binding
}

// ShortHelp returns the results workspace bindings for the help bar.
func (k resultsKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pane, k.NextTab, k.PrevTab, k.Send, k.NewBrief, k.Quit}
}

// FullHelp returns the results workspace bindings grouped for expanded help.
func (k resultsKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pane, k.NextTab, k.PrevTab},
		{k.Send, k.NewBrief, k.Quit},
	}
}

// BriefKeyMap returns the key bindings for the brief form.
func BriefKeyMap() briefKeys {
	return briefKeys{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "prev field"),
		),
		Cycle: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "tone"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle platform"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "generate"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// PipelineKeyMap returns the key bindings for pipeline mode.
func PipelineKeyMap() pipelineKeys {
	return pipelineKeys{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ResultsKeyMap returns the key bindings for the results workspace.
func ResultsKeyMap() resultsKeys {
	return resultsKeys{
		NextTab: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev tab"),
		),
		Pane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		NewBrief: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new brief"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}
