// Package studio implements the interactive ad-creation TUI: brief form,
// animated agent pipeline, and the results workspace with refinement chat.
// Separate from internal/display which handles headless runs.
package studio

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/pipeline"
	"github.com/smileynet/adforge/internal/refine"
)

// Mode represents the current studio view mode.
type Mode int

const (
	ModeBrief    Mode = iota // Editing the campaign brief form.
	ModePipeline             // Generation in flight, agent stages animating.
	ModeResults              // Results workspace with refinement chat.
)

// --- Consumer-side interfaces ---

// GenerateRunner runs a generation submission and exposes the current result.
type GenerateRunner interface {
	Submit(ctx context.Context, fields brief.Fields) (*creative.Result, error)
	CurrentResult() *creative.Result
}

// RefineSender runs one refinement chat turn.
type RefineSender interface {
	Send(ctx context.Context, message string) (refine.Outcome, error)
}

// Deps wires the studio model to the rest of the application.
type Deps struct {
	Runner GenerateRunner
	Sender RefineSender
	Stages <-chan pipeline.StageUpdate

	// Download builds the proxy download URL for a gallery item.
	Download func(url, filename string) string
}

// --- tea.Msg types ---

// StageUpdateMsg carries one pipeline stage transition into Update.
type StageUpdateMsg struct {
	Update pipeline.StageUpdate
}

// GenerateDoneMsg carries the outcome of a Submit call.
type GenerateDoneMsg struct {
	Result *creative.Result
	Err    error
}

// RefineDoneMsg carries the outcome of a RefineSender.Send call.
type RefineDoneMsg struct {
	Outcome refine.Outcome
	Err     error
}

// submitBriefMsg signals the form requested submission.
type submitBriefMsg struct {
	Fields brief.Fields
}

// sendChatMsg signals the chat input requested a refinement send.
type sendChatMsg struct {
	Text string
}

// newBriefMsg signals the user wants to start over with a fresh brief.
type newBriefMsg struct{}

// listenStages returns a tea.Cmd that waits for the next stage update.
// Update re-arms it after each StageUpdateMsg; a closed channel ends the loop.
func listenStages(ch <-chan pipeline.StageUpdate) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return StageUpdateMsg{Update: u}
	}
}

// submitCmd runs the submission on a goroutine and wraps the outcome.
func submitCmd(runner GenerateRunner, fields brief.Fields) tea.Cmd {
	return func() tea.Msg {
		result, err := runner.Submit(context.Background(), fields)
		return GenerateDoneMsg{Result: result, Err: err}
	}
}

// refineCmd runs one chat turn on a goroutine and wraps the outcome.
func refineCmd(sender RefineSender, text string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := sender.Send(context.Background(), text)
		return RefineDoneMsg{Outcome: outcome, Err: err}
	}
}
