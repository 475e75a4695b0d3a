package studio

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/tabs"
)

// Form field labels in focus order. Text inputs come first, then the tone
// selector, the platform checkboxes, and the generate row.
var fieldLabels = []string{"Product", "Description", "Audience"}

// formState manages the brief form: three text inputs, the tone selector,
// the platform checkbox list, and the generate row.
type formState struct {
	inputs  []textinput.Model
	tone    tabs.Selection
	checked []bool
	focus   int
	warning string
}

// newFormState creates a form with the first text input focused and the
// default tone preselected.
func newFormState() formState {
	placeholders := []string{
		"What are you advertising?",
		"Key features, benefits, or offer",
		"Who should see this ad?",
	}
	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		inputs[i] = in
	}
	inputs[0].Focus()

	return formState{
		inputs:  inputs,
		tone:    tabs.NewSelection(len(brief.Tones)),
		checked: make([]bool, len(brief.Platforms)),
	}
}

// Focus row indexes past the text inputs.
func (fs formState) toneRow() int     { return len(fs.inputs) }
func (fs formState) platformRow() int { return fs.toneRow() + 1 }
func (fs formState) generateRow() int { return fs.platformRow() + len(fs.checked) }
func (fs formState) rowCount() int    { return fs.generateRow() + 1 }

// Fields assembles the raw form input for validation.
func (fs formState) Fields() brief.Fields {
	f := brief.Fields{
		ProductName: fs.inputs[0].Value(),
		Description: fs.inputs[1].Value(),
		Audience:    fs.inputs[2].Value(),
		Tone:        brief.Tones[fs.tone.Active()],
	}
	for i, on := range fs.checked {
		if on {
			f.Platforms = append(f.Platforms, brief.Platforms[i].Key)
		}
	}
	return f
}

// Update processes messages for the form.
func (fs formState) Update(msg tea.Msg) (formState, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return fs.handleKey(key)
	}
	return fs.updateFocusedInput(msg)
}

func (fs formState) handleKey(msg tea.KeyMsg) (formState, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return fs.moveFocus(1), nil

	case "shift+tab", "up":
		return fs.moveFocus(-1), nil

	case "enter":
		if fs.focus == fs.generateRow() {
			fields := fs.Fields()
			return fs, func() tea.Msg { return submitBriefMsg{Fields: fields} }
		}
		return fs.moveFocus(1), nil

	case "left":
		if fs.focus == fs.toneRow() {
			fs.tone = fs.tone.Prev()
			return fs, nil
		}

	case "right":
		if fs.focus == fs.toneRow() {
			fs.tone = fs.tone.Next()
			return fs, nil
		}

	case " ":
		if idx, ok := fs.platformIndex(); ok {
			fs.checked[idx] = !fs.checked[idx]
			fs.warning = ""
			return fs, nil
		}
	}

	return fs.updateFocusedInput(msg)
}

// platformIndex maps the focus row onto a checkbox index.
func (fs formState) platformIndex() (int, bool) {
	idx := fs.focus - fs.platformRow()
	if idx < 0 || idx >= len(fs.checked) {
		return 0, false
	}
	return idx, true
}

// moveFocus shifts focus by delta with wraparound, updating input focus.
func (fs formState) moveFocus(delta int) formState {
	fs.focus = (fs.focus + delta + fs.rowCount()) % fs.rowCount()
	for i := range fs.inputs {
		if i == fs.focus {
			fs.inputs[i].Focus()
		} else {
			fs.inputs[i].Blur()
		}
	}
	return fs
}

// updateFocusedInput forwards a message to the focused text input, if any.
func (fs formState) updateFocusedInput(msg tea.Msg) (formState, tea.Cmd) {
	if fs.focus >= len(fs.inputs) {
		return fs, nil
	}
	var cmd tea.Cmd
	fs.inputs[fs.focus], cmd = fs.inputs[fs.focus].Update(msg)
	return fs, cmd
}

// View renders the brief form.
func (fs formState) View() string {
	var b strings.Builder

	for i, in := range fs.inputs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fs.rowPrefix(i))
		label := labelStyle.Render(fieldLabels[i])
		if i == fs.focus {
			label = focusedLabelStyle.Render(fieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString("  ")
		b.WriteString(in.View())
	}

	b.WriteString("\n\n")
	b.WriteString(fs.rowPrefix(fs.toneRow()))
	b.WriteString(labelStyle.Render("Tone"))
	b.WriteString("  ")
	for i, tone := range brief.Tones {
		if fs.tone.IsActive(i) {
			b.WriteString(activeTabStyle.Render(tone))
		} else {
			b.WriteString(inactiveTabStyle.Render(tone))
		}
	}

	b.WriteString("\n\n")
	b.WriteString("  " + labelStyle.Render("Platforms"))
	for i, p := range brief.Platforms {
		b.WriteByte('\n')
		b.WriteString(fs.rowPrefix(fs.platformRow() + i))
		box := "[ ]"
		if fs.checked[i] {
			box = "[x]"
		}
		b.WriteString(box + " " + p.Name)
	}

	b.WriteString("\n\n")
	b.WriteString(fs.rowPrefix(fs.generateRow()))
	generate := "Generate Ads"
	if fs.focus == fs.generateRow() {
		generate = focusedLabelStyle.Render(generate)
	}
	b.WriteString(generate)

	if fs.warning != "" {
		b.WriteString("\n\n" + warnStyle.Render(fs.warning))
	}

	return b.String()
}

// rowPrefix returns the cursor marker for the focused row.
func (fs formState) rowPrefix(row int) string {
	if row == fs.focus {
		return CursorMarker
	}
	return "  "
}
