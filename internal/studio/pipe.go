package studio

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/adforge/internal/pipeline"
)

// pipeState tracks the animated agent stage list for pipeline mode.
// Stages are discovered from the reset burst of pending updates, so the
// list always mirrors the animator's order.
type pipeState struct {
	stages  []pipeline.Stage
	spinner spinner.Model
}

// newPipeState creates an empty pipeline view with a dot spinner.
func newPipeState() pipeState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = stageActiveStyle
	return pipeState{spinner: s}
}

// Update processes messages for the pipeline view.
func (ps pipeState) Update(msg tea.Msg) (pipeState, tea.Cmd) {
	switch msg := msg.(type) {
	case StageUpdateMsg:
		return ps.applyUpdate(msg.Update), nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		ps.spinner, cmd = ps.spinner.Update(msg)
		return ps, cmd
	}
	return ps, nil
}

func (ps pipeState) applyUpdate(u pipeline.StageUpdate) pipeState {
	for i := range ps.stages {
		if ps.stages[i].Key == u.Key {
			ps.stages[i].State = u.State
			return ps
		}
	}
	ps.stages = append(ps.stages, pipeline.Stage{Key: u.Key, Name: u.Name, State: u.State})
	return ps
}

func stageIndicator(state pipeline.StageState, spinnerView string) string {
	switch state {
	case pipeline.StageActive:
		return spinnerView
	case pipeline.StageDone:
		return stageDoneStyle.Render("✓")
	default:
		return stagePendingStyle.Render("○")
	}
}

func stageName(state pipeline.StageState, name string) string {
	switch state {
	case pipeline.StageActive:
		return stageActiveStyle.Render(name)
	case pipeline.StagePending:
		return stagePendingStyle.Render(name)
	default:
		return name
	}
}

// View renders the agent stage list.
func (ps pipeState) View() string {
	if len(ps.stages) == 0 {
		return ps.spinner.View() + " Briefing agents..."
	}

	var b strings.Builder
	for i, stage := range ps.stages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  ")
		b.WriteString(stageIndicator(stage.State, ps.spinner.View()))
		b.WriteByte(' ')
		b.WriteString(stageName(stage.State, stage.Name))
	}
	return b.String()
}
