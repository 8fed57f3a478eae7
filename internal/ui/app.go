package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/history"
	"github.com/abelbrown/truthlens/internal/lifecycle"
	"github.com/abelbrown/truthlens/internal/render"
)

// Screen is the top-level view being shown.
type Screen int

const (
	ScreenInput Screen = iota
	ScreenResult
	ScreenHistory
)

// Commands are the side effects the App may request. Any of them may be nil;
// the matching feature is then unavailable.
type Commands struct {
	// Start validates and accepts a submission. It must not block; the
	// returned command performs the request and yields AnalysisResolved.
	Start func(req analysis.Request) (seq uint64, run tea.Cmd, err error)
	// Cancel aborts the outstanding submission.
	Cancel func() bool
	// Reset abandons any outstanding submission and clears the last outcome.
	Reset       func()
	LoadHistory func() tea.Cmd
	OpenHistory func(e history.Entry) tea.Cmd
	Copy        func(text string) tea.Cmd
}

// Options are the App's startup settings.
type Options struct {
	Tab      analysis.Tab
	User     string // empty for anonymous
	MaxWidth int
	HideHelp bool // drop the key hints from the status bar
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the controller or the store. It talks to them
// through Commands and learns results via messages.
type App struct {
	cmds Commands

	tab     analysis.Tab
	text    textarea.Model
	url     textinput.Model
	image   textinput.Model
	example int

	spinner  spinner.Model
	viewport viewport.Model

	screen      Screen
	analyzing   bool
	seq         uint64
	view        *analysis.ViewModel
	failure     string
	fromHistory bool

	entries        []history.Entry
	stats          history.Stats
	cursor         int
	historyLoading bool
	historyErr     error

	flash    string
	flashErr bool

	user     string
	maxWidth int
	hideHelp bool
	width    int
	height   int
	ready    bool
}

// NewApp creates an App on the input screen.
func NewApp(cmds Commands, opts Options) App {
	ta := textarea.New()
	ta.Placeholder = "Paste a news article, social media post, or any text to analyze..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	url := textinput.New()
	url.Placeholder = "https://example.com/news/article"

	image := textinput.New()
	image.Placeholder = "https://example.com/image.jpg"

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	tab := opts.Tab
	if tab == "" {
		tab = analysis.TabText
	}

	a := App{
		cmds:     cmds,
		text:     ta,
		url:      url,
		image:    image,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		user:     opts.User,
		maxWidth: opts.MaxWidth,
		hideHelp: opts.HideHelp,
	}
	a.setTab(tab)
	return a
}

// Init starts the cursor blinking.
func (a App) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case spinner.TickMsg:
		if !a.analyzing && !a.historyLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case AnalysisResolved:
		return a.resolve(msg)

	case HistoryLoaded:
		a.historyLoading = false
		a.historyErr = msg.Err
		if msg.Err == nil {
			a.entries = msg.Entries
			a.stats = msg.Stats
			if a.cursor >= len(a.entries) {
				a.cursor = max(len(a.entries)-1, 0)
			}
		}
		return a, nil

	case HistoryOpened:
		a.historyLoading = false
		if msg.Err != nil {
			a.setFlash("Could not open analysis: "+msg.Err.Error(), true)
			return a, nil
		}
		a.showResult(msg.View, true)
		return a, nil

	case SharedToClipboard:
		if msg.Err != nil {
			a.setFlash("Copy failed: "+msg.Err.Error(), true)
		} else {
			a.setFlash("Summary copied to clipboard", false)
		}
		return a, nil
	}

	if a.screen == ScreenInput {
		return a.updateInput(msg)
	}
	return a, nil
}

func (a App) resolve(msg AnalysisResolved) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, lifecycle.ErrSuperseded) || msg.Snapshot.Seq != a.seq || !a.analyzing {
		return a, nil
	}
	a.analyzing = false

	snap := msg.Snapshot
	switch snap.State {
	case lifecycle.Succeeded:
		a.showResult(snap.View, false)
	case lifecycle.Failed:
		a.view = nil
		a.failure = "Analysis failed."
		if snap.Failure != nil {
			a.failure = snap.Failure.Message
		}
		a.fromHistory = false
		a.screen = ScreenResult
		a.refreshViewport()
	default:
		if msg.Err != nil {
			a.setFlash(msg.Err.Error(), true)
		}
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return a, tea.Quit
	}

	// Clear any transient message on key press
	a.flash = ""
	a.flashErr = false

	switch a.screen {
	case ScreenResult:
		return a.handleResultKey(msg)
	case ScreenHistory:
		return a.handleHistoryKey(msg)
	}
	return a.handleInputKey(msg)
}

func (a App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		if a.analyzing {
			if a.cmds.Cancel != nil && a.cmds.Cancel() {
				a.analyzing = false
				a.setFlash("Analysis cancelled", false)
			}
			return a, nil
		}
		if a.view != nil || a.failure != "" {
			a.screen = ScreenResult
		}
		return a, nil

	case key.Matches(msg, keys.NextTab):
		return a, a.setTab(a.tab.Next())

	case key.Matches(msg, keys.PrevTab):
		return a, a.setTab(a.tab.Prev())

	case key.Matches(msg, keys.Submit):
		return a.submit()

	case key.Matches(msg, keys.Enter) && a.tab != analysis.TabText:
		return a.submit()

	case key.Matches(msg, keys.Example):
		a.loadExample()
		return a, nil

	case key.Matches(msg, keys.History):
		return a.openHistory()
	}

	return a.updateInput(msg)
}

func (a App) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQ):
		return a, tea.Quit

	case key.Matches(msg, keys.Escape):
		if a.fromHistory {
			a.screen = ScreenHistory
			return a, nil
		}
		a.screen = ScreenInput
		return a, a.focusActive()

	case key.Matches(msg, keys.Share):
		if a.view != nil && a.cmds.Copy != nil {
			return a, a.cmds.Copy(a.view.Score.ShareText())
		}
		return a, nil

	case key.Matches(msg, keys.New):
		a.abandon()
		a.text.Reset()
		a.url.Reset()
		a.image.Reset()
		a.view = nil
		a.failure = ""
		a.fromHistory = false
		a.screen = ScreenInput
		return a, a.focusActive()

	case key.Matches(msg, keys.History), key.Matches(msg, keys.HistoryH):
		return a.openHistory()
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQ):
		return a, tea.Quit

	case key.Matches(msg, keys.Escape):
		a.screen = ScreenInput
		return a, a.focusActive()

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, keys.Down):
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Enter):
		if a.cursor < len(a.entries) && a.cmds.OpenHistory != nil {
			a.historyLoading = true
			return a, tea.Batch(a.cmds.OpenHistory(a.entries[a.cursor]), a.spinner.Tick)
		}
		return a, nil

	case key.Matches(msg, keys.HistoryH), key.Matches(msg, keys.History):
		return a.openHistory()
	}
	return a, nil
}

func (a App) submit() (tea.Model, tea.Cmd) {
	req, err := analysis.NormalizeInput(a.tab, a.fields())
	if err != nil {
		a.setFlash(err.Error(), true)
		return a, nil
	}
	if a.cmds.Start == nil {
		return a, nil
	}

	seq, run, err := a.cmds.Start(req)
	if err != nil {
		a.setFlash(err.Error(), true)
		return a, nil
	}
	a.analyzing = true
	a.seq = seq
	return a, tea.Batch(run, a.spinner.Tick)
}

func (a App) openHistory() (tea.Model, tea.Cmd) {
	if a.cmds.LoadHistory == nil {
		a.setFlash("History is not available", true)
		return a, nil
	}
	if a.abandon() {
		a.setFlash("Analysis cancelled", false)
	}
	a.screen = ScreenHistory
	a.historyLoading = true
	a.historyErr = nil
	a.text.Blur()
	a.url.Blur()
	a.image.Blur()
	return a, tea.Batch(a.cmds.LoadHistory(), a.spinner.Tick)
}

// abandon drops the outstanding analysis so its late result cannot replace
// whatever the user moved on to. It reports whether one was running.
func (a *App) abandon() bool {
	running := a.analyzing
	switch {
	case a.cmds.Reset != nil:
		a.cmds.Reset()
	case running && a.cmds.Cancel != nil:
		a.cmds.Cancel()
	}
	a.analyzing = false
	return running
}

func (a *App) showResult(vm *analysis.ViewModel, fromHistory bool) {
	a.view = vm
	a.failure = ""
	a.fromHistory = fromHistory
	a.screen = ScreenResult
	a.refreshViewport()
	a.viewport.GotoTop()
}

func (a *App) refreshViewport() {
	w := a.contentWidth()
	switch {
	case a.failure != "":
		a.viewport.SetContent(render.Failure(a.failure, w))
	case a.view != nil:
		a.viewport.SetContent(render.Result(*a.view, w))
	}
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash = msg
	a.flashErr = isErr
}

func (a *App) loadExample() {
	examples := analysis.Examples(a.tab)
	if len(examples) == 0 {
		return
	}
	ex := examples[a.example%len(examples)]
	a.example++
	switch a.tab {
	case analysis.TabText:
		a.text.SetValue(ex.Content)
	case analysis.TabURL:
		a.url.SetValue(ex.Content)
	case analysis.TabImage:
		a.image.SetValue(ex.Content)
	}
	a.setFlash(fmt.Sprintf("Example: %s", ex.Label), false)
}

// setTab switches the active input and returns its focus command.
func (a *App) setTab(t analysis.Tab) tea.Cmd {
	a.tab = t
	a.example = 0
	return a.focusActive()
}

func (a *App) focusActive() tea.Cmd {
	a.text.Blur()
	a.url.Blur()
	a.image.Blur()
	switch a.tab {
	case analysis.TabURL:
		return a.url.Focus()
	case analysis.TabImage:
		return a.image.Focus()
	}
	return a.text.Focus()
}

// updateInput forwards msg to the active input.
func (a App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.tab {
	case analysis.TabURL:
		a.url, cmd = a.url.Update(msg)
	case analysis.TabImage:
		a.image, cmd = a.image.Update(msg)
	default:
		a.text, cmd = a.text.Update(msg)
	}
	return a, cmd
}

func (a App) fields() analysis.FormFields {
	return analysis.FormFields{
		Text:     a.text.Value(),
		URL:      a.url.Value(),
		ImageURL: a.image.Value(),
	}
}

func (a App) contentWidth() int {
	w := a.width
	if w == 0 {
		w = 80
	}
	if a.maxWidth > 0 && w > a.maxWidth {
		w = a.maxWidth
	}
	return w
}

func (a *App) resize() {
	w := a.contentWidth()
	a.text.SetWidth(w - InputFrame.GetHorizontalFrameSize())
	a.text.SetHeight(min(max(a.height-14, 3), 12))
	a.url.Width = w - InputFrame.GetHorizontalFrameSize() - 3
	a.image.Width = a.url.Width

	// header, flash line, status bar
	a.viewport.Width = w
	a.viewport.Height = max(a.height-3, 1)
	a.refreshViewport()
}

// Tab returns the active input tab (for testing).
func (a App) Tab() analysis.Tab { return a.tab }

// Screen returns the current screen (for testing).
func (a App) Screen() Screen { return a.screen }

// Analyzing reports whether a submission is outstanding (for testing).
func (a App) Analyzing() bool { return a.analyzing }

// Flash returns the transient status message (for testing).
func (a App) Flash() string { return a.flash }

// Result returns the displayed view model (for testing).
func (a App) Result() *analysis.ViewModel { return a.view }

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	switch a.screen {
	case ScreenResult:
		b.WriteString(a.viewport.View())
	case ScreenHistory:
		b.WriteString(a.renderHistory())
	default:
		b.WriteString(a.renderInput())
	}
	b.WriteString("\n")

	switch {
	case a.flash != "" && a.flashErr:
		b.WriteString(ErrorStyle.Render(a.flash))
	case a.flash != "":
		b.WriteString(FlashStyle.Render(a.flash))
	}
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a App) renderHeader() string {
	user := a.user
	if user == "" {
		user = "anonymous"
	}
	title := Title.Render("TruthLens")
	badge := UserBadge.Render(user)
	gap := a.contentWidth() - lipgloss.Width(title) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + badge
}

func (a App) renderTabs() string {
	out := make([]string, 0, len(analysis.Tabs))
	for _, t := range analysis.Tabs {
		if t == a.tab {
			out = append(out, ActiveTab.Render(t.Label()))
		} else {
			out = append(out, InactiveTab.Render(t.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (a App) renderInput() string {
	var field string
	switch a.tab {
	case analysis.TabURL:
		field = a.url.View()
	case analysis.TabImage:
		field = a.image.View()
	default:
		field = a.text.View()
	}

	lines := []string{a.renderTabs(), InputFrame.Render(field)}
	if a.analyzing {
		lines = append(lines, HelpStyle.Render(a.spinner.View()+" Analyzing... esc to cancel"))
	} else if ex := analysis.Examples(a.tab); len(ex) > 0 {
		labels := make([]string, len(ex))
		for i, e := range ex {
			labels[i] = e.Label
		}
		lines = append(lines, HelpStyle.Render("Examples: "+strings.Join(labels, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderHistory() string {
	w := a.contentWidth()
	switch {
	case a.historyLoading:
		return HelpStyle.Render(a.spinner.View() + " Loading history...")
	case a.historyErr != nil:
		return ErrorStyle.Render("Could not load history: " + a.historyErr.Error())
	}
	return render.Stats(a.stats) + "\n\n" + render.HistoryTable(a.entries, w, a.cursor)
}

// renderStatusBar renders the key hints for the current screen.
func (a App) renderStatusBar() string {
	if a.hideHelp {
		return StatusBar.Width(a.contentWidth()).Render("")
	}
	var bindings []key.Binding
	switch a.screen {
	case ScreenResult:
		bindings = []key.Binding{keys.Share, keys.New, keys.HistoryH, keys.Escape, keys.ForceQ}
	case ScreenHistory:
		bindings = []key.Binding{keys.Up, keys.Down, keys.Enter, keys.Escape, keys.ForceQ}
	default:
		if a.analyzing {
			bindings = []key.Binding{withDesc(keys.Escape, "cancel"), keys.Quit}
		} else {
			submit := keys.Submit
			if a.tab != analysis.TabText {
				submit = withDesc(keys.Enter, "analyze")
			}
			bindings = []key.Binding{submit, keys.NextTab, keys.Example, keys.History, keys.Quit}
		}
	}

	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, StatusBarKey.Render(h.Key)+StatusBarText.Render(":"+h.Desc))
	}
	return StatusBar.Width(a.contentWidth()).Render(strings.Join(parts, "  "))
}

func withDesc(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}
