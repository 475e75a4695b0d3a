// Package display renders generation progress for headless runs. The
// interactive terminal UI lives in studio; this package covers pipes,
// CI logs, and --no-tui.
package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/pipeline"
	"github.com/smileynet/adforge/internal/render"
)

// Event is an event sent to a Display via the bridge channel.
// Implemented by StageMsg, DoneMsg, and ErrorMsg.
type Event interface {
	isEvent()
}

// StageMsg reports one pipeline stage transition.
type StageMsg struct {
	Update pipeline.StageUpdate
}

// DoneMsg carries the completed generation result.
type DoneMsg struct {
	Result *creative.Result
}

// ErrorMsg reports generation failure.
type ErrorMsg struct {
	Err error
}

func (StageMsg) isEvent() {}
func (DoneMsg) isEvent()  {}
func (ErrorMsg) isEvent() {}

// Display renders generation progress events.
type Display interface {
	Run(ctx context.Context, events <-chan Event) error
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bridge manages the channel between the orchestrator's stage callback and
// a Display consumer.
type Bridge struct {
	ch chan Event
}

// NewBridge creates a Bridge with a buffered event channel.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan Event, 16)}
}

// Events returns the read-only channel for Display.Run to consume.
func (b *Bridge) Events() <-chan Event {
	return b.ch
}

// Stage delivers a stage transition to the display.
// It blocks if the channel buffer (16) is full.
func (b *Bridge) Stage(u pipeline.StageUpdate) {
	b.ch <- StageMsg{Update: u}
}

// Done signals successful generation and closes the channel.
func (b *Bridge) Done(result *creative.Result) {
	b.ch <- DoneMsg{Result: result}
	close(b.ch)
}

// Error signals generation failure and closes the channel.
func (b *Bridge) Error(err error) {
	b.ch <- ErrorMsg{Err: err}
	close(b.ch)
}

// Plain renders progress as timestamped text lines and the final result
// as a sectioned report.
type Plain struct {
	w   io.Writer
	now func() time.Time
}

// NewPlain creates a plain text display writing to w (default os.Stdout).
func NewPlain(w io.Writer) *Plain {
	if w == nil {
		w = os.Stdout
	}
	return &Plain{w: w, now: time.Now}
}

// Run loops over events, printing stage transitions as they land and the
// result report on completion. Returns the generation error on failure,
// or the context error if cancelled.
func (d *Plain) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch msg := ev.(type) {
			case StageMsg:
				d.renderStage(msg.Update)
			case DoneMsg:
				d.renderResult(msg.Result)
				return nil
			case ErrorMsg:
				return msg.Err
			}
		}
	}
}

func (d *Plain) renderStage(u pipeline.StageUpdate) {
	// Pending transitions are reset noise in text mode.
	if u.State == pipeline.StagePending {
		return
	}
	ts := d.now().Format("15:04:05")
	_, _ = fmt.Fprintf(d.w, "[%s] %s %s\n", ts, u.Name, u.State)
}

func (d *Plain) renderResult(result *creative.Result) {
	if result == nil {
		return
	}
	view := render.Project(*result)

	_, _ = fmt.Fprintf(d.w, "\njob %s\n", result.JobID)
	_, _ = fmt.Fprintf(d.w, "\nheadline: %s\n", view.Copy.Headline)
	_, _ = fmt.Fprintf(d.w, "body:     %s\n", view.Copy.Body)
	_, _ = fmt.Fprintf(d.w, "cta:      %s\n", view.Copy.CTA)

	if len(view.Gallery) > 0 {
		_, _ = fmt.Fprintln(d.w, "\nvisuals:")
		for _, item := range view.Gallery {
			_, _ = fmt.Fprintf(d.w, "  %s  %s\n", item.Filename, item.URL)
		}
	}

	if len(view.Variations) > 0 {
		_, _ = fmt.Fprintln(d.w, "\nvariations:")
		for _, tab := range view.Variations {
			_, _ = fmt.Fprintf(d.w, "  %s: %s\n", tab.Label, tab.Variation.Headline)
		}
	}

	if len(view.Platforms) > 0 {
		_, _ = fmt.Fprintln(d.w, "\nplatforms:")
		for _, tab := range view.Platforms {
			_, _ = fmt.Fprintf(d.w, "  %s: %s\n", tab.Label, tab.Preview.AdaptedCopy.Headline)
		}
	}
}
