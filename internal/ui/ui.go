package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/shelfsync/internal/binder"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FileListView ViewState = iota
	CandidateListView
	DoneView
)

// Model represents the TUI application state for resolving a [binder.Plan]'s
// NeedsSelection entries. It holds no reference to the binder.Engine: the
// caller runs Analyze, launches the TUI with the resulting plan, and feeds
// [Model.Resolutions] back into Execute once the program exits.
type Model struct {
	view        ViewState
	width       int
	height      int
	files       []fileItem
	current     int
	fileList    list.Model
	candidates  list.Model
	resolutions map[string]string
	skipped     map[string]bool
	help        help.Model
	keys        keyMap
}

// NewModel builds a Model over a plan's ambiguous files.
func NewModel(plan *binder.Plan) *Model {
	files := make([]fileItem, len(plan.NeedsSelection))
	items := make([]list.Item, len(plan.NeedsSelection))
	for i, sel := range plan.NeedsSelection {
		files[i] = fileItem{selection: sel}
		items[i] = files[i]
	}

	fileList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	fileList.Title = "Files needing a selection"

	candidates := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		view:        FileListView,
		files:       files,
		fileList:    fileList,
		candidates:  candidates,
		resolutions: make(map[string]string),
		skipped:     make(map[string]bool),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Resolutions returns filePath -> chosen URI for every file the user
// accepted a candidate for. Skipped files are absent.
func (m *Model) Resolutions() map[string]string {
	return m.resolutions
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements [tea.Model].
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateLists(msg)
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.fileList.SetSize(msg.Width-4, msg.Height-8)
	m.candidates.SetSize(msg.Width-4, msg.Height-8)
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case FileListView:
		return m.handleFileListKeys(msg)
	case CandidateListView:
		return m.handleCandidateKeys(msg)
	case DoneView:
		return m.handleDoneKeys(msg)
	}
	return m, nil
}

func (m *Model) handleFileListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected, ok := m.fileList.SelectedItem().(fileItem); ok {
			m.current = m.fileList.Index()
			m.openCandidates(selected)
			return m, nil
		}
	case "s":
		if selected, ok := m.fileList.SelectedItem().(fileItem); ok {
			m.skip(selected)
		}
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleCandidateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FileListView
		return m, nil
	case "enter":
		if item, ok := m.candidates.SelectedItem().(candidateItem); ok {
			m.accept(m.files[m.current], item.candidate)
		}
		return m, nil
	case "s":
		m.skip(m.files[m.current])
		return m, nil
	}

	var cmd tea.Cmd
	m.candidates, cmd = m.candidates.Update(msg)
	return m, cmd
}

func (m *Model) handleDoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FileListView:
		m.fileList, cmd = m.fileList.Update(msg)
	case CandidateListView:
		m.candidates, cmd = m.candidates.Update(msg)
	}
	return m, cmd
}

func (m *Model) openCandidates(selected fileItem) {
	items := make([]list.Item, len(selected.selection.Candidates))
	for i, c := range selected.selection.Candidates {
		items[i] = candidateItem{candidate: c}
	}
	m.candidates.SetItems(items)
	m.candidates.Title = fmt.Sprintf("Candidates for %s", selected.Title())
	if m.width > 0 && m.height > 0 {
		m.candidates.SetSize(m.width-4, m.height-8)
	}
	m.view = CandidateListView
}

func (m *Model) accept(file fileItem, candidate binder.Candidate) {
	m.resolutions[file.selection.FilePath] = candidate.URI
	m.files[m.current].resolved = true
	m.advance()
}

func (m *Model) skip(file fileItem) {
	m.skipped[file.selection.FilePath] = true
	idx := m.indexOf(file.selection.FilePath)
	if idx >= 0 {
		m.files[idx].skipped = true
	}
	m.advance()
}

func (m *Model) indexOf(filePath string) int {
	for i, f := range m.files {
		if f.selection.FilePath == filePath {
			return i
		}
	}
	return -1
}

func (m *Model) advance() {
	items := make([]list.Item, len(m.files))
	for i, f := range m.files {
		items[i] = f
	}
	m.fileList.SetItems(items)

	for _, f := range m.files {
		if !f.resolved && !f.skipped {
			m.view = FileListView
			return
		}
	}
	m.view = DoneView
}

// View implements [tea.Model].
func (m *Model) View() string {
	switch m.view {
	case FileListView:
		return m.renderFileList()
	case CandidateListView:
		return m.renderCandidates()
	case DoneView:
		return m.renderDone()
	default:
		return ""
	}
}

func (m *Model) renderFileList() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.fileList.View(), helpView)
}

func (m *Model) renderCandidates() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.skip, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.candidates.View(), helpView)
}

func (m *Model) renderDone() string {
	title := styles.ok.Render("✓ All files resolved")
	info := fmt.Sprintf("\n%d bound, %d skipped\n", len(m.resolutions), len(m.skipped))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s%s\n%s", title, info, helpView)
}
