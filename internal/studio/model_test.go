package studio

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/pipeline"
	"github.com/smileynet/adforge/internal/refine"
)

type stubRunner struct {
	mu      sync.Mutex
	result  *creative.Result
	err     error
	submits int
}

func (s *stubRunner) Submit(_ context.Context, _ brief.Fields) (*creative.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRunner) CurrentResult() *creative.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

type stubSender struct {
	outcome refine.Outcome
	err     error
}

func (s *stubSender) Send(_ context.Context, _ string) (refine.Outcome, error) {
	return s.outcome, s.err
}

func testResult() *creative.Result {
	return &creative.Result{
		JobID: "job-7",
		Brief: brief.Brief{ProductName: "Trail Runner X", Platforms: []string{"instagram", "linkedin"}},
		Copy:  creative.Copy{Headline: "Run Further", Body: "Grip that lasts.", CTA: "Shop Now"},
		Images: []creative.Image{
			{URL: "https://cdn.example.com/a.jpg"},
		},
		Variations: []creative.Variation{
			{Tone: "professional", Headline: "Run Further", IsPrimary: true},
			{Tone: "playful", Headline: "Zoom zoom!"},
		},
		Platforms: map[string]creative.PlatformPreview{
			"instagram": {Name: "Instagram", AdaptedCopy: creative.Copy{Headline: "Run Further ✨"}},
			"linkedin":  {Name: "LinkedIn", AdaptedCopy: creative.Copy{Headline: "Run Further."}},
		},
	}
}

func testModel(runner *stubRunner, sender *stubSender) Model {
	return NewModel(Deps{
		Runner: runner,
		Sender: sender,
		Download: func(url, filename string) string {
			return "http://localhost:5000/api/download-image?url=" + url + "&filename=" + filename
		},
	})
}

func fillForm(m Model) Model {
	m.form.inputs[0].SetValue("Trail Runner X")
	m.form.inputs[1].SetValue("Grip that lasts")
	m.form.inputs[2].SetValue("weekend hikers")
	m.form.checked[0] = true
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	newModel, cmd := m.Update(msg)
	return newModel.(Model), cmd
}

// --- Initialization ---

func TestNewModel_StartsInBriefMode(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	if m.mode != ModeBrief {
		t.Errorf("mode = %d, want ModeBrief", m.mode)
	}
	if m.form.focus != 0 {
		t.Errorf("focus = %d, want 0", m.form.focus)
	}
}

func TestModel_Init_ReturnsCmd(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	if m.Init() == nil {
		t.Fatal("Init() should return a non-nil Cmd")
	}
}

// --- Brief form ---

func TestForm_TabMovesFocus(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.form.focus != 1 {
		t.Errorf("focus = %d, want 1", m.form.focus)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.form.focus != 0 {
		t.Errorf("focus = %d, want 0", m.form.focus)
	}
}

func TestForm_FocusWrapsAround(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.form.focus != m.form.generateRow() {
		t.Errorf("focus = %d, want generate row %d", m.form.focus, m.form.generateRow())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.form.focus != 0 {
		t.Errorf("focus = %d, want 0 after wrap", m.form.focus)
	}
}

func TestForm_TypingReachesFocusedInput(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Trail")})

	if got := m.form.inputs[0].Value(); got != "Trail" {
		t.Errorf("input value = %q, want %q", got, "Trail")
	}
}

func TestForm_ToneCycling(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.form.focus = m.form.toneRow()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.form.tone.Active(); got != 1 {
		t.Errorf("tone = %d, want 1", got)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.form.tone.Active(); got != len(brief.Tones)-1 {
		t.Errorf("tone = %d, want wrap to %d", got, len(brief.Tones)-1)
	}
}

func TestForm_SpaceTogglesPlatform(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.form.focus = m.form.platformRow()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.form.checked[0] {
		t.Error("first platform should be checked after space")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.form.checked[0] {
		t.Error("first platform should be unchecked after second space")
	}
}

func TestForm_SpaceTypesIntoTextField(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.form.inputs[0].SetValue("Trail")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if got := m.form.inputs[0].Value(); got != "Trail " {
		t.Errorf("input value = %q, want %q", got, "Trail ")
	}
}

func TestForm_FieldsAssemblesInput(t *testing.T) {
	m := fillForm(testModel(&stubRunner{}, &stubSender{}))
	m.form.checked[3] = true
	m.form.tone = m.form.tone.Select(2)

	f := m.form.Fields()

	if f.ProductName != "Trail Runner X" {
		t.Errorf("ProductName = %q", f.ProductName)
	}
	if f.Tone != brief.Tones[2] {
		t.Errorf("Tone = %q, want %q", f.Tone, brief.Tones[2])
	}
	want := []string{brief.Platforms[0].Key, brief.Platforms[3].Key}
	if len(f.Platforms) != 2 || f.Platforms[0] != want[0] || f.Platforms[1] != want[1] {
		t.Errorf("Platforms = %v, want %v", f.Platforms, want)
	}
}

// --- Submission ---

func TestSubmit_MissingFieldIsSilent(t *testing.T) {
	runner := &stubRunner{result: testResult()}
	m := testModel(runner, &stubSender{})
	m.form.checked[0] = true // platforms ok, text fields empty

	m, cmd := update(t, m, submitBriefMsg{Fields: m.form.Fields()})

	if m.mode != ModeBrief {
		t.Errorf("mode = %d, want ModeBrief", m.mode)
	}
	if m.form.warning != "" {
		t.Errorf("warning = %q, want empty (silent refusal)", m.form.warning)
	}
	if cmd != nil {
		t.Error("silent refusal should not dispatch a Cmd")
	}
}

func TestSubmit_NoPlatformShowsWarning(t *testing.T) {
	m := fillForm(testModel(&stubRunner{result: testResult()}, &stubSender{}))
	m.form.checked[0] = false

	m, cmd := update(t, m, submitBriefMsg{Fields: m.form.Fields()})

	if m.mode != ModeBrief {
		t.Errorf("mode = %d, want ModeBrief", m.mode)
	}
	if !strings.Contains(m.form.warning, "platform") {
		t.Errorf("warning = %q, want platform warning", m.form.warning)
	}
	if cmd != nil {
		t.Error("platform warning should not dispatch a Cmd")
	}
}

func TestSubmit_ValidBriefEntersPipelineMode(t *testing.T) {
	m := fillForm(testModel(&stubRunner{result: testResult()}, &stubSender{}))

	m, cmd := update(t, m, submitBriefMsg{Fields: m.form.Fields()})

	if m.mode != ModePipeline {
		t.Errorf("mode = %d, want ModePipeline", m.mode)
	}
	if cmd == nil {
		t.Fatal("valid submission should dispatch a Cmd")
	}
}

func TestSubmit_WarningClearedOnValidSubmission(t *testing.T) {
	m := fillForm(testModel(&stubRunner{result: testResult()}, &stubSender{}))
	m.form.warning = "Select at least one platform"

	m, _ = update(t, m, submitBriefMsg{Fields: m.form.Fields()})

	if m.form.warning != "" {
		t.Errorf("warning = %q, want cleared", m.form.warning)
	}
}

// --- Pipeline mode ---

func TestStageUpdate_AppliesAndRearmsListener(t *testing.T) {
	ch := make(chan pipeline.StageUpdate, 1)
	m := testModel(&stubRunner{}, &stubSender{})
	m.deps.Stages = ch
	m.mode = ModePipeline

	m, cmd := update(t, m, StageUpdateMsg{
		Update: pipeline.StageUpdate{Key: "creative", Name: "Creative Agent", State: pipeline.StageActive},
	})

	if len(m.pipe.stages) != 1 {
		t.Fatalf("got %d stages, want 1", len(m.pipe.stages))
	}
	if m.pipe.stages[0].State != pipeline.StageActive {
		t.Errorf("stage state = %q, want active", m.pipe.stages[0].State)
	}
	if cmd == nil {
		t.Error("stage update should re-arm the listener")
	}
}

func TestStageUpdate_DiscoveryPreservesArrivalOrder(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})

	for _, key := range pipeline.StageKeys {
		m, _ = update(t, m, StageUpdateMsg{
			Update: pipeline.StageUpdate{Key: key, Name: key, State: pipeline.StagePending},
		})
	}

	if len(m.pipe.stages) != len(pipeline.StageKeys) {
		t.Fatalf("got %d stages, want %d", len(m.pipe.stages), len(pipeline.StageKeys))
	}
	for i, key := range pipeline.StageKeys {
		if m.pipe.stages[i].Key != key {
			t.Errorf("stages[%d].Key = %q, want %q", i, m.pipe.stages[i].Key, key)
		}
	}
}

func TestPipelineView_Indicators(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.mode = ModePipeline
	m.pipe.stages = []pipeline.Stage{
		{Key: "creative", Name: "Creative Agent", State: pipeline.StageDone},
		{Key: "design", Name: "Design Agent", State: pipeline.StageActive},
		{Key: "variation", Name: "Variation Agent", State: pipeline.StagePending},
	}

	view := m.View()

	if !strings.Contains(view, "✓") {
		t.Error("view should contain done indicator")
	}
	if !strings.Contains(view, "○") {
		t.Error("view should contain pending indicator")
	}
	if !strings.Contains(view, "Design Agent") {
		t.Error("view should contain active stage name")
	}
}

// --- Generation outcomes ---

func TestGenerateDone_SuccessShowsAllSurfaces(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.mode = ModePipeline

	m, _ = update(t, m, GenerateDoneMsg{Result: testResult()})

	if m.mode != ModeResults {
		t.Fatalf("mode = %d, want ModeResults", m.mode)
	}

	view := m.View()
	for _, want := range []string{
		"Run Further",
		"Shop Now",
		"trail-runner-x-1.jpg",
		"Professional",
		"Playful",
		"Instagram",
		"LinkedIn",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGenerateDone_TabsResetToFirst(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})

	m, _ = update(t, m, GenerateDoneMsg{Result: testResult()})

	if got := m.results.varTabs.Active(); got != 0 {
		t.Errorf("variation tab = %d, want 0", got)
	}
	if got := m.results.platTabs.Active(); got != 0 {
		t.Errorf("platform tab = %d, want 0", got)
	}
}

func TestGenerateDone_PlatformTabsFollowBriefOrder(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})

	m, _ = update(t, m, GenerateDoneMsg{Result: testResult()})

	if m.results.view.Platforms[0].Key != "instagram" {
		t.Errorf("first platform tab = %q, want instagram", m.results.view.Platforms[0].Key)
	}
	if m.results.view.Platforms[1].Key != "linkedin" {
		t.Errorf("second platform tab = %q, want linkedin", m.results.view.Platforms[1].Key)
	}
}

func TestGenerateDone_FailureReturnsToFormWithBanner(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.mode = ModePipeline

	m, _ = update(t, m, GenerateDoneMsg{Err: errors.New("backend unavailable")})

	if m.mode != ModeBrief {
		t.Errorf("mode = %d, want ModeBrief", m.mode)
	}
	if !strings.Contains(m.View(), "backend unavailable") {
		t.Error("view should show the failure banner")
	}
}

func TestGenerateDone_SuccessClearsPriorFailure(t *testing.T) {
	m := testModel(&stubRunner{}, &stubSender{})
	m.err = errors.New("backend unavailable")

	m, _ = update(t, m, GenerateDoneMsg{Result: testResult()})

	if m.err != nil {
		t.Errorf("err = %v, want nil after success", m.err)
	}
}

// --- Results workspace ---

func resultsModel(t *testing.T, sender *stubSender) Model {
	t.Helper()
	m := testModel(&stubRunner{result: testResult()}, sender)
	m, _ = update(t, m, GenerateDoneMsg{Result: testResult()})
	return m
}

func TestResults_TabKeySwitchesPane(t *testing.T) {
	m := resultsModel(t, &stubSender{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.results.pane != panePlatforms {
		t.Errorf("pane = %d, want platforms", m.results.pane)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.results.pane != paneChat {
		t.Errorf("pane = %d, want chat", m.results.pane)
	}
	if !m.results.chatInput.Focused() {
		t.Error("chat input should be focused in chat pane")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.results.pane != paneVariations {
		t.Errorf("pane = %d, want variations after wrap", m.results.pane)
	}
	if m.results.chatInput.Focused() {
		t.Error("chat input should blur when leaving chat pane")
	}
}

func TestResults_VariationTabCycling(t *testing.T) {
	m := resultsModel(t, &stubSender{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.results.varTabs.Active(); got != 1 {
		t.Errorf("variation tab = %d, want 1", got)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.results.varTabs.Active(); got != 0 {
		t.Errorf("variation tab = %d, want wrap to 0", got)
	}
}

func TestResults_NewBriefResetsForm(t *testing.T) {
	m := resultsModel(t, &stubSender{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if cmd == nil {
		t.Fatal("n should dispatch the new-brief Cmd")
	}

	m, _ = update(t, m, cmd())
	if m.mode != ModeBrief {
		t.Errorf("mode = %d, want ModeBrief", m.mode)
	}
	if got := m.form.inputs[0].Value(); got != "" {
		t.Errorf("form should be reset, product = %q", got)
	}
}

func TestResults_GalleryUsesDownloadProxy(t *testing.T) {
	m := resultsModel(t, &stubSender{})

	view := m.View()
	if !strings.Contains(view, "download-image") {
		t.Errorf("gallery should render the proxy download URL, got:\n%s", view)
	}
}

func TestResults_ChatInputRendersBordered(t *testing.T) {
	m := resultsModel(t, &stubSender{})

	for _, pane := range []int{paneVariations, paneChat} {
		m.results.pane = pane
		view := m.results.View()
		if !strings.Contains(view, "╭") || !strings.Contains(view, "╰") {
			t.Errorf("pane %d: chat input should render inside a rounded border, got:\n%s", pane, view)
		}
	}
}

// --- Refinement chat ---

func TestChat_EnterSendsMessage(t *testing.T) {
	m := resultsModel(t, &stubSender{})
	m.results.pane = paneChat
	m.results.chatInput.Focus()
	m.results.chatInput.SetValue("make it punchier")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter with text should dispatch a Cmd")
	}

	m, cmd2 := update(t, m, cmd())
	if cmd2 == nil {
		t.Fatal("sendChatMsg should dispatch the refine Cmd")
	}
	if !m.results.typing {
		t.Error("typing indicator should be up while in flight")
	}
	if got := m.results.chatInput.Value(); got != "" {
		t.Errorf("chat input = %q, want cleared", got)
	}

	turns := m.results.turns
	if len(turns) != 1 || turns[0].Role != refine.RoleUser || turns[0].Text != "make it punchier" {
		t.Errorf("turns = %+v, want single user turn", turns)
	}
}

func TestChat_EmptyMessageIsNoOp(t *testing.T) {
	m := resultsModel(t, &stubSender{})
	m.results.pane = paneChat
	m.results.chatInput.SetValue("   ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("whitespace-only message should not dispatch")
	}
	if len(m.results.turns) != 0 {
		t.Errorf("got %d turns, want 0", len(m.results.turns))
	}
}

func TestChat_SendBlockedWhileTyping(t *testing.T) {
	m := resultsModel(t, &stubSender{})
	m.results.pane = paneChat
	m.results.typing = true
	m.results.chatInput.SetValue("another request")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("send should be blocked while the typing indicator is up")
	}
}

func TestChat_RefineDoneAppendsReply(t *testing.T) {
	m := resultsModel(t, &stubSender{})
	m.results = m.results.beginSend("make it punchier")

	m, _ = update(t, m, RefineDoneMsg{Outcome: refine.Outcome{
		Reply:   refine.Turn{Role: refine.RoleAgent, Text: "Done, punched up."},
		Applied: true,
	}})

	if m.results.typing {
		t.Error("typing indicator should clear")
	}
	turns := m.results.turns
	if len(turns) != 2 || turns[1].Text != "Done, punched up." {
		t.Errorf("turns = %+v, want agent reply appended", turns)
	}
}

func TestChat_RefineDoneAppliedReprojects(t *testing.T) {
	runner := &stubRunner{result: testResult()}
	m := testModel(runner, &stubSender{})
	m, _ = update(t, m, GenerateDoneMsg{Result: testResult()})

	refined := testResult()
	refined.Copy.Headline = "Refined Headline"
	runner.mu.Lock()
	runner.result = refined
	runner.mu.Unlock()

	m, _ = update(t, m, RefineDoneMsg{Outcome: refine.Outcome{
		Reply:   refine.Turn{Role: refine.RoleAgent, Text: "Updated."},
		Applied: true,
	}})

	if got := m.results.view.Copy.Headline; got != "Refined Headline" {
		t.Errorf("headline = %q, want re-projected copy", got)
	}
}

func TestChat_StaleOutcomeLeavesTranscript(t *testing.T) {
	m := resultsModel(t, &stubSender{})
	m.results = m.results.beginSend("late request")

	m, _ = update(t, m, RefineDoneMsg{Outcome: refine.Outcome{Stale: true}})

	if m.results.typing {
		t.Error("typing indicator should clear on stale discard")
	}
	if len(m.results.turns) != 1 {
		t.Errorf("got %d turns, want 1 (no agent reply for stale outcome)", len(m.results.turns))
	}
}

// --- Full flow via teatest ---

func TestStudio_Teatest_GenerateFlow(t *testing.T) {
	runner := &stubRunner{result: testResult()}
	m := fillForm(testModel(runner, &stubSender{}))
	m.form.focus = m.form.generateRow()

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 40))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Run Further"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if final.mode != ModeResults {
		t.Errorf("final mode = %d, want ModeResults", final.mode)
	}
	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.submits != 1 {
		t.Errorf("submits = %d, want 1", runner.submits)
	}
}
