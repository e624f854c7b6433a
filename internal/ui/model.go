// Package ui implements the interactive launcher: type a query, pick a
// ranked result, and paste it into whatever application had focus.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/kartikmehra/flowprompt/internal/capture"
	"github.com/kartikmehra/flowprompt/internal/models"
	"github.com/kartikmehra/flowprompt/internal/paste"
	"github.com/kartikmehra/flowprompt/internal/service"
)

// ViewMode determines which screen is displayed
type ViewMode int

const (
	ViewLauncher ViewMode = iota
	ViewPreview
	ViewQuickSave
)

// resultItem adapts a search result to the bubbles list.
type resultItem struct {
	result models.SearchResult
}

func (r resultItem) Title() string { return r.result.Prompt.Title() }

func (r resultItem) Description() string {
	parts := []string{r.result.CategoryName}
	if len(r.result.Prompt.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(r.result.Prompt.Tags, ", "))
	}
	return strings.Join(parts, " • ")
}

func (r resultItem) FilterValue() string { return r.result.Prompt.FilterValue() }

// KeyMap defines the launcher key bindings
type KeyMap struct {
	Paste     key.Binding
	Copy      key.Binding
	Preview   key.Binding
	QuickSave key.Binding
	Back      key.Binding
	Quit      key.Binding
}

var keys = KeyMap{
	Paste: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "paste"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy"),
	),
	Preview: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "preview"),
	),
	QuickSave: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "quick save"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back/quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// Model is the launcher's bubbletea model.
type Model struct {
	service  *service.Service
	capturer *capture.Capturer
	paster   *paste.Paster
	trigger  func()
	simulate func()

	searchInput textinput.Model
	resultList  list.Model
	viewport    viewport.Model
	renderer    *glamour.TermRenderer

	mode    ViewMode
	results []models.SearchResult

	// Quick save state
	titleInput   textinput.Model
	capturedText string

	width  int
	height int

	statusMsg     string
	statusTimeout int
	err           error
}

// NewModel creates the launcher model. trigger and simulate are the OS
// keystroke collaborators handed through to the clipboard orchestrators.
func NewModel(svc *service.Service, capturer *capture.Capturer, paster *paste.Paster, trigger, simulate func()) (*Model, error) {
	initializeStyles()

	input := textinput.New()
	input.Placeholder = "Search prompts..."
	input.Prompt = "> "
	input.Focus()

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 80, 20)
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // the search input drives the list
	l.SetShowHelp(false)

	vp := viewport.New(80, 20)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	titleInput := textinput.New()
	titleInput.Placeholder = "Title for captured prompt..."
	titleInput.Prompt = "> "

	m := &Model{
		service:     svc,
		capturer:    capturer,
		paster:      paster,
		trigger:     trigger,
		simulate:    simulate,
		searchInput: input,
		resultList:  l,
		viewport:    vp,
		renderer:    renderer,
		titleInput:  titleInput,
		mode:        ViewLauncher,
	}
	m.refreshResults()
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// tickMsg clears the status message after a delay
type tickMsg time.Time

func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pastedMsg reports the outcome of a paste command
type pastedMsg struct {
	err error
}

// capturedMsg carries text captured from the foreground app
type capturedMsg struct {
	text string
	err  error
}

func (m *Model) pasteCmd(result models.SearchResult) tea.Cmd {
	return func() tea.Msg {
		if err := m.paster.Paste(result.Prompt.Content, m.simulate); err != nil {
			return pastedMsg{err: err}
		}
		m.service.RecordUse(result.Prompt.ID)
		// Commands run on their own goroutine, so waiting out the
		// clipboard restore here keeps the program alive until it has
		// resolved without freezing the update loop.
		m.paster.Wait()
		return pastedMsg{}
	}
}

func (m *Model) captureCmd() tea.Cmd {
	return func() tea.Msg {
		text, err := m.capturer.Capture(m.trigger)
		return capturedMsg{text: text, err: err}
	}
}

// refreshResults re-runs the ranked search for the current query. An
// empty query shows recently used prompts instead, like the original
// launcher's idle state.
func (m *Model) refreshResults() {
	query := m.searchInput.Value()

	if strings.TrimSpace(query) == "" {
		m.results = nil
		var items []list.Item
		for _, p := range m.service.RecentlyUsed(5) {
			res := models.SearchResult{Prompt: p}
			if _, catID, err := m.service.Prompt(p.ID); err == nil {
				for _, cat := range m.service.Categories() {
					if cat.ID == catID {
						res.CategoryID = cat.ID
						res.CategoryName = cat.Name
						break
					}
				}
			}
			m.results = append(m.results, res)
			items = append(items, resultItem{result: res})
		}
		m.resultList.SetItems(items)
		return
	}

	m.results = m.service.Search(query)
	items := make([]list.Item, len(m.results))
	for i, r := range m.results {
		items[i] = resultItem{result: r}
	}
	m.resultList.SetItems(items)
}

func (m *Model) selectedResult() (models.SearchResult, bool) {
	idx := m.resultList.Index()
	if idx < 0 || idx >= len(m.results) {
		return models.SearchResult{}, false
	}
	return m.results[idx], true
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusTimeout = 2
	return clearStatusCmd()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
			} else {
				return m, clearStatusCmd()
			}
		}

	case pastedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// pasteCmd only reports success after the clipboard restore
		// has resolved, so quitting here cannot strand it.
		return m, tea.Quit

	case capturedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.text == "" {
			return m, m.setStatus("Nothing captured")
		}
		m.capturedText = msg.text
		m.titleInput.SetValue("")
		m.titleInput.Focus()
		m.searchInput.Blur()
		m.mode = ViewQuickSave
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := m.height - 6
		if listHeight < 5 {
			listHeight = 5
		}
		m.resultList.SetSize(m.width-2, listHeight)
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 4

	case tea.KeyMsg:
		switch m.mode {
		case ViewLauncher:
			return m.updateLauncher(msg)
		case ViewPreview:
			return m.updatePreview(msg)
		case ViewQuickSave:
			return m.updateQuickSave(msg)
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) updateLauncher(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit), key.Matches(msg, keys.Back):
		return m, tea.Quit

	case key.Matches(msg, keys.Paste):
		if result, ok := m.selectedResult(); ok {
			return m, m.pasteCmd(result)
		}
		return m, nil

	case key.Matches(msg, keys.Copy):
		if result, ok := m.selectedResult(); ok {
			if err := m.paster.Copy(result.Prompt.Content); err != nil {
				m.err = err
				return m, nil
			}
			m.service.RecordUse(result.Prompt.ID)
			return m, m.setStatus("Copied to clipboard!")
		}
		return m, nil

	case key.Matches(msg, keys.Preview):
		if result, ok := m.selectedResult(); ok {
			rendered, err := m.renderer.Render(result.Prompt.Content)
			if err != nil {
				rendered = result.Prompt.Content
			}
			m.viewport.SetContent(rendered)
			m.viewport.GotoTop()
			m.mode = ViewPreview
		}
		return m, nil

	case key.Matches(msg, keys.QuickSave):
		return m, m.captureCmd()

	case msg.Type == tea.KeyUp || msg.Type == tea.KeyDown:
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	cmds = append(cmds, cmd)
	if m.searchInput.Value() != before {
		m.refreshResults()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Preview):
		m.mode = ViewLauncher
		return m, nil
	case key.Matches(msg, keys.Paste):
		if result, ok := m.selectedResult(); ok {
			return m, m.pasteCmd(result)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateQuickSave(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Back):
		m.mode = ViewLauncher
		m.titleInput.Blur()
		m.searchInput.Focus()
		return m, nil

	case msg.Type == tea.KeyEnter:
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.err = fmt.Errorf("a title is required to save")
			return m, nil
		}
		cats := m.service.Categories()
		if len(cats) == 0 {
			cat, err := m.service.AddCategory("Captured")
			if err != nil {
				m.err = err
				return m, nil
			}
			cats = []models.Category{cat}
		}
		prompt := models.NewPrompt(title, m.capturedText)
		if err := m.service.AddPrompt(cats[0].ID, prompt); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.mode = ViewLauncher
		m.titleInput.Blur()
		m.searchInput.Focus()
		m.refreshResults()
		return m, m.setStatus("Saved captured prompt")
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

// View renders the current screen
func (m Model) View() string {
	switch m.mode {
	case ViewPreview:
		return m.viewPreview()
	case ViewQuickSave:
		return m.viewQuickSave()
	default:
		return m.viewLauncher()
	}
}

func (m Model) viewLauncher() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("FlowPrompt"))
	b.WriteString("\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n")
	b.WriteString(m.resultList.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg))
	} else {
		b.WriteString(helpStyle.Render("enter paste • ctrl+y copy • tab preview • ctrl+s quick save • esc quit"))
	}

	return b.String()
}

func (m Model) viewPreview() string {
	var b strings.Builder

	title := "Preview"
	if result, ok := m.selectedResult(); ok {
		title = result.Prompt.Title()
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter paste • tab/esc back"))

	return b.String()
}

func (m Model) viewQuickSave() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Quick Save"))
	b.WriteString("\n")
	b.WriteString(m.titleInput.View())
	b.WriteString("\n\n")

	preview := m.capturedText
	if len(preview) > 400 {
		preview = preview[:400] + "..."
	}
	b.WriteString(panelStyle.Render(preview))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else {
		b.WriteString(helpStyle.Render("enter save • esc cancel"))
	}

	return b.String()
}
