package studio

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/refine"
	"github.com/smileynet/adforge/internal/render"
	"github.com/smileynet/adforge/internal/tabs"
)

// Results workspace panes in tab order.
const (
	paneVariations = iota
	panePlatforms
	paneChat
)

// resultsState manages the results workspace: copy, gallery, variation and
// platform tabs, and the refinement chat.
type resultsState struct {
	jobID     string
	view      render.View
	varTabs   tabs.Selection
	platTabs  tabs.Selection
	pane      int
	chatInput textinput.Model
	turns     []refine.Turn
	typing    bool
	download  func(url, filename string) string
}

// newResultsState creates an empty results workspace.
func newResultsState(download func(url, filename string) string) resultsState {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Ask for changes, e.g. \"make it punchier\""
	in.CharLimit = 500
	return resultsState{chatInput: in, download: download}
}

// setResult projects a fresh generation into the workspace. All surfaces
// switch to the new result in one step; tab selections reset to the first
// item. The chat transcript carries across generations.
func (rs resultsState) setResult(result *creative.Result) resultsState {
	rs.jobID = result.JobID
	rs.view = render.Project(*result)
	rs.varTabs = tabs.NewSelection(len(rs.view.Variations))
	rs.platTabs = tabs.NewSelection(len(rs.view.Platforms))
	return rs
}

// applyRefined re-projects the result after an applied refinement,
// preserving the platform tab selection where possible.
func (rs resultsState) applyRefined(result *creative.Result) resultsState {
	active := rs.platTabs.Active()
	rs.view = render.Project(*result)
	rs.varTabs = tabs.NewSelection(len(rs.view.Variations))
	rs.platTabs = tabs.NewSelection(len(rs.view.Platforms)).Select(active)
	return rs
}

// beginSend appends the user turn, raises the typing indicator, and clears
// the input. Mirrors the refinement loop's own transcript.
func (rs resultsState) beginSend(text string) resultsState {
	rs.turns = append(rs.turns, refine.Turn{Role: refine.RoleUser, Text: text})
	rs.typing = true
	rs.chatInput.SetValue("")
	return rs
}

// finishSend lowers the typing indicator and appends the agent reply.
// Stale outcomes leave the transcript untouched.
func (rs resultsState) finishSend(outcome refine.Outcome, err error) resultsState {
	rs.typing = false
	if err != nil || outcome.Stale || outcome.Reply.Text == "" {
		return rs
	}
	rs.turns = append(rs.turns, outcome.Reply)
	return rs
}

// Update processes messages for the results workspace.
func (rs resultsState) Update(msg tea.Msg) (resultsState, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return rs.handleKey(key)
	}
	return rs.updateChatInput(msg)
}

func (rs resultsState) handleKey(msg tea.KeyMsg) (resultsState, tea.Cmd) {
	switch msg.String() {
	case "tab":
		rs.pane = (rs.pane + 1) % 3
		if rs.pane == paneChat {
			rs.chatInput.Focus()
		} else {
			rs.chatInput.Blur()
		}
		return rs, nil

	case "left", "h":
		switch rs.pane {
		case paneVariations:
			rs.varTabs = rs.varTabs.Prev()
			return rs, nil
		case panePlatforms:
			rs.platTabs = rs.platTabs.Prev()
			return rs, nil
		}

	case "right", "l":
		switch rs.pane {
		case paneVariations:
			rs.varTabs = rs.varTabs.Next()
			return rs, nil
		case panePlatforms:
			rs.platTabs = rs.platTabs.Next()
			return rs, nil
		}

	case "n":
		if rs.pane != paneChat {
			return rs, func() tea.Msg { return newBriefMsg{} }
		}

	case "enter":
		if rs.pane == paneChat {
			text := strings.TrimSpace(rs.chatInput.Value())
			if text == "" || rs.typing {
				return rs, nil
			}
			return rs, func() tea.Msg { return sendChatMsg{Text: text} }
		}
		return rs, nil
	}

	return rs.updateChatInput(msg)
}

// updateChatInput forwards a message to the chat input when it has focus.
func (rs resultsState) updateChatInput(msg tea.Msg) (resultsState, tea.Cmd) {
	if rs.pane != paneChat {
		return rs, nil
	}
	var cmd tea.Cmd
	rs.chatInput, cmd = rs.chatInput.Update(msg)
	return rs, cmd
}

// View renders the results workspace.
func (rs resultsState) View() string {
	var b strings.Builder

	if rs.jobID != "" {
		b.WriteString(mutedText.Render("job "+rs.jobID) + "\n\n")
	}

	b.WriteString(titleStyle.Render(rs.view.Copy.Headline))
	b.WriteString("\n" + rs.view.Copy.Body)
	b.WriteString("\n" + focusedLabelStyle.Render(rs.view.Copy.CTA))

	if len(rs.view.Gallery) > 0 {
		b.WriteString("\n\n" + labelStyle.Render("Visuals"))
		for _, item := range rs.view.Gallery {
			url := item.URL
			if rs.download != nil {
				url = rs.download(item.URL, item.Filename)
			}
			fmt.Fprintf(&b, "\n  %s  %s", item.Filename, mutedText.Render(url))
		}
	}

	b.WriteString("\n\n" + rs.paneTitle(paneVariations, "Variations"))
	b.WriteString("\n" + rs.variationsView())

	b.WriteString("\n\n" + rs.paneTitle(panePlatforms, "Platforms"))
	b.WriteString("\n" + rs.platformsView())

	b.WriteString("\n\n" + rs.paneTitle(paneChat, "Refine"))
	b.WriteString("\n" + rs.chatView())

	return b.String()
}

func (rs resultsState) paneTitle(pane int, title string) string {
	if rs.pane == pane {
		return CursorMarker + focusedLabelStyle.Render(title)
	}
	return "  " + labelStyle.Render(title)
}

func (rs resultsState) variationsView() string {
	if len(rs.view.Variations) == 0 {
		return "  " + mutedText.Render("No variations")
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, tab := range rs.view.Variations {
		if rs.varTabs.IsActive(i) {
			b.WriteString(activeTabStyle.Render(tab.Label))
		} else {
			b.WriteString(inactiveTabStyle.Render(tab.Label))
		}
	}

	v := rs.view.Variations[rs.varTabs.Active()].Variation
	fmt.Fprintf(&b, "\n  %s", v.Headline)
	fmt.Fprintf(&b, "\n  %s", v.Body)
	fmt.Fprintf(&b, "\n  %s", focusedLabelStyle.Render(v.CTA))
	if v.PerformanceHint.BestFor != "" {
		hint := fmt.Sprintf("best for %s, CTR %s, conversion %s",
			v.PerformanceHint.BestFor, v.PerformanceHint.AvgCTR, v.PerformanceHint.Conversion)
		b.WriteString("\n  " + mutedText.Render(hint))
	}
	return b.String()
}

func (rs resultsState) platformsView() string {
	if len(rs.view.Platforms) == 0 {
		return "  " + mutedText.Render("No platform previews")
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, tab := range rs.view.Platforms {
		if rs.platTabs.IsActive(i) {
			b.WriteString(activeTabStyle.Render(tab.Label))
		} else {
			b.WriteString(inactiveTabStyle.Render(tab.Label))
		}
	}

	p := rs.view.Platforms[rs.platTabs.Active()].Preview
	fmt.Fprintf(&b, "\n  %s", p.AdaptedCopy.Headline)
	fmt.Fprintf(&b, "\n  %s", p.AdaptedCopy.Body)
	if p.PrimaryFormat.Name != "" {
		fmt.Fprintf(&b, "\n  %s", mutedText.Render(p.PrimaryFormat.Name+" "+p.PrimaryFormat.Ratio))
	}
	if p.AudienceReach != "" {
		fmt.Fprintf(&b, "\n  %s", mutedText.Render("reach "+p.AudienceReach))
	}
	if p.Tips != "" {
		fmt.Fprintf(&b, "\n  %s", mutedText.Render(p.Tips))
	}
	return b.String()
}

func (rs resultsState) chatView() string {
	var b strings.Builder
	for _, turn := range rs.turns {
		switch turn.Role {
		case refine.RoleUser:
			fmt.Fprintf(&b, "  %s %s\n", userTurnStyle.Render("you"), turn.Text)
		default:
			fmt.Fprintf(&b, "  %s %s\n", agentTurnStyle.Render("agent"), turn.Text)
		}
	}
	if rs.typing {
		b.WriteString("  " + mutedText.Render("Agent is typing...") + "\n")
	}
	box := UnfocusedBorder()
	if rs.pane == paneChat {
		box = FocusedBorder()
	}
	b.WriteString(box.Padding(0, 1).Render(rs.chatInput.View()))
	return b.String()
}
