package studio

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/orchestrator"
)

// Model is the root Bubble Tea model for the studio. It routes messages by
// mode and is the single writer of all view state; async work comes back in
// through typed messages.
type Model struct {
	mode    Mode
	deps    Deps
	width   int
	height  int
	help    help.Model
	form    formState
	pipe    pipeState
	results resultsState
	err     error
}

// NewModel creates a studio Model in brief mode.
func NewModel(deps Deps) Model {
	return Model{
		mode:    ModeBrief,
		deps:    deps,
		help:    help.New(),
		form:    newFormState(),
		pipe:    newPipeState(),
		results: newResultsState(deps.Download),
	}
}

// Init starts the cursor blink and the stage update listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenStages(m.deps.Stages))
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StageUpdateMsg:
		var cmd tea.Cmd
		m.pipe, cmd = m.pipe.Update(msg)
		// Re-arm the listener for the next update.
		return m, tea.Batch(cmd, listenStages(m.deps.Stages))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.pipe, cmd = m.pipe.Update(msg)
		return m, cmd

	case submitBriefMsg:
		return m.handleSubmit(msg.Fields)

	case GenerateDoneMsg:
		return m.handleGenerateDone(msg)

	case sendChatMsg:
		m.results = m.results.beginSend(msg.Text)
		return m, refineCmd(m.deps.Sender, msg.Text)

	case RefineDoneMsg:
		m.results = m.results.finishSend(msg.Outcome, msg.Err)
		if msg.Outcome.Applied {
			if result := m.deps.Runner.CurrentResult(); result != nil {
				m.results = m.results.applyRefined(result)
			}
		}
		return m, nil

	case newBriefMsg:
		m.mode = ModeBrief
		m.err = nil
		m.form = newFormState()
		return m, textinput.Blink

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToMode(msg)
}

// handleSubmit validates the form locally before dispatching. Missing text
// fields refuse silently; a missing platform shows a visible warning.
// The orchestrator re-validates on its own side of the boundary.
func (m Model) handleSubmit(fields brief.Fields) (tea.Model, tea.Cmd) {
	if _, err := brief.Build(fields); err != nil {
		switch {
		case errors.Is(err, brief.ErrNoPlatform):
			m.form.warning = "Select at least one platform"
		case errors.Is(err, brief.ErrMissingField):
			// Silent refusal: focus stays where it is.
		default:
			m.form.warning = err.Error()
		}
		return m, nil
	}

	m.form.warning = ""
	m.err = nil
	m.mode = ModePipeline
	m.pipe = newPipeState()
	return m, tea.Batch(
		m.pipe.spinner.Tick,
		submitCmd(m.deps.Runner, fields),
	)
}

// handleGenerateDone routes a submission outcome: results on success,
// back to the form with a failure banner otherwise.
func (m Model) handleGenerateDone(msg GenerateDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// Validation errors were already surfaced by handleSubmit; anything
		// arriving here is a request failure or a rejected overlap.
		if !errors.Is(msg.Err, orchestrator.ErrBusy) {
			m.err = msg.Err
			m.mode = ModeBrief
		}
		return m, nil
	}

	m.err = nil
	m.results = m.results.setResult(msg.Result)
	m.mode = ModeResults
	if m.results.pane == paneChat {
		m.results.chatInput.Focus()
	}
	return m, nil
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		// A generation in flight keeps running to completion; esc only
		// quits from the stable modes.
		if m.mode != ModePipeline {
			return m, tea.Quit
		}
		return m, nil
	}

	return m.routeToMode(msg)
}

// routeToMode forwards a message to the active mode's state.
func (m Model) routeToMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ModeBrief:
		m.form, cmd = m.form.Update(msg)
	case ModeResults:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

// View renders the active mode with the title and help bar.
func (m Model) View() string {
	title := titleStyle.Render("AdForge Studio")

	var body string
	var bindings help.KeyMap
	switch m.mode {
	case ModePipeline:
		body = m.pipe.View()
		bindings = PipelineKeyMap()
	case ModeResults:
		body = m.results.View()
		bindings = ResultsKeyMap()
	default:
		body = m.form.View()
		bindings = BriefKeyMap()
		if m.err != nil {
			body += "\n\n" + warnStyle.Render(fmt.Sprintf("Generation failed: %v", m.err))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", m.help.View(bindings))
}
