package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmcdonald/docdeploy/internal/ports"
	"github.com/jmcdonald/docdeploy/internal/preview"
)

// View represents the current view state
type View int

const (
	ReposView   View = iota
	PreviewView // Showing the pending change for one repository
)

// RepoState is the deployment state of a row.
type RepoState int

const (
	StatePending RepoState = iota
	StateDeploying
	StateDone
	StateUnchanged
	StateFailed
)

// RepoItem represents a repository in the list
type RepoItem struct {
	Info    ports.TUIRepoInfo
	State   RepoState
	Message string
}

// Model is the main TUI model
type Model struct {
	service  ports.TUIService
	view     View
	width    int
	height   int
	quitting bool

	// Repos view
	repos    []RepoItem
	cursor   int
	selected map[int]bool
	opts     ports.TUIDeployOptions

	// Deployment queue, processed one repository at a time
	queue     []int
	deploying bool
	succeeded int
	failed    int

	// Preview view
	preview       *preview.Result
	previewRepo   string
	previewScroll int

	// Status message
	statusMsg string
	statusErr bool
}

// Key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Commit    key.Binding
	Push      key.Binding
	DryRun    key.Binding
	Deploy    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preview"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Select: key.NewBinding(
		key.WithKeys(" ", "tab"),
		key.WithHelp("space", "select"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	Commit: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "commit"),
	),
	Push: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "push"),
	),
	DryRun: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "dry run"),
	),
	Deploy: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "deploy"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModel creates a model with no repositories loaded.
func NewModel(svc ports.TUIService, opts ports.TUIDeployOptions) *Model {
	if opts.Push {
		opts.Commit = true
	}
	return &Model{
		service:  svc,
		view:     ReposView,
		opts:     opts,
		selected: make(map[int]bool),
	}
}

// NewModelWithService creates a model and loads the repository list from svc.
func NewModelWithService(svc ports.TUIService, opts ports.TUIDeployOptions) (*Model, error) {
	m := NewModel(svc, opts)
	if err := m.loadRepos(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) loadRepos() error {
	repos, err := m.service.ListRepos()
	if err != nil {
		return err
	}
	m.repos = nil
	for _, r := range repos {
		m.repos = append(m.repos, RepoItem{Info: r})
	}
	m.selected = make(map[int]bool)
	m.cursor = 0
	return nil
}

// Options returns the current deploy toggles.
func (m *Model) Options() ports.TUIDeployOptions {
	return m.opts
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

type previewMsg struct {
	repo   string
	result *preview.Result
	err    error
}

type deployMsg struct {
	index  int
	result ports.TUIDeployResult
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case previewMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Preview failed: %v", msg.err)
			m.statusErr = true
			return m, nil
		}
		m.preview = msg.result
		m.previewRepo = msg.repo
		m.previewScroll = 0
		m.view = PreviewView
		m.statusMsg = ""
		return m, nil

	case deployMsg:
		return m, m.handleDeployed(msg)

	case tea.KeyMsg:
		// Clear status on any key
		m.statusMsg = ""
		m.statusErr = false

		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)

		case key.Matches(msg, keys.Down):
			m.moveCursor(1)

		case key.Matches(msg, keys.Back):
			if m.view == PreviewView {
				m.view = ReposView
				m.preview = nil
				m.previewScroll = 0
			}
		}

		if m.view != ReposView {
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Enter):
			if len(m.repos) > 0 {
				return m, m.previewRepoCmd(m.cursor)
			}

		case key.Matches(msg, keys.Select):
			if len(m.repos) > 0 && !m.deploying {
				m.selected[m.cursor] = !m.selected[m.cursor]
				if !m.selected[m.cursor] {
					delete(m.selected, m.cursor)
				}
			}

		case key.Matches(msg, keys.SelectAll):
			if !m.deploying {
				m.toggleSelectAll()
			}

		case key.Matches(msg, keys.Commit):
			if !m.deploying {
				m.opts.Commit = !m.opts.Commit
				if !m.opts.Commit {
					m.opts.Push = false
				}
			}

		case key.Matches(msg, keys.Push):
			if !m.deploying {
				m.opts.Push = !m.opts.Push
				if m.opts.Push {
					m.opts.Commit = true
				}
			}

		case key.Matches(msg, keys.DryRun):
			if !m.deploying {
				m.opts.DryRun = !m.opts.DryRun
			}

		case key.Matches(msg, keys.Deploy):
			return m, m.startDeploy()
		}
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	switch m.view {
	case ReposView:
		m.cursor += delta
		if m.cursor >= len(m.repos) {
			m.cursor = len(m.repos) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
	case PreviewView:
		if m.preview != nil {
			m.previewScroll += delta
			maxScroll := len(m.preview.Lines) - m.visibleHeight()
			if maxScroll < 0 {
				maxScroll = 0
			}
			if m.previewScroll > maxScroll {
				m.previewScroll = maxScroll
			}
			if m.previewScroll < 0 {
				m.previewScroll = 0
			}
		}
	}
}

func (m *Model) toggleSelectAll() {
	if len(m.selected) == len(m.repos) {
		m.selected = make(map[int]bool)
		return
	}
	for i := range m.repos {
		m.selected[i] = true
	}
}

func (m *Model) previewRepoCmd(index int) tea.Cmd {
	repo := m.repos[index].Info
	return func() tea.Msg {
		result, err := m.service.Preview(repo)
		return previewMsg{repo: repo.Source, result: result, err: err}
	}
}

// startDeploy queues the selected repositories, or the highlighted one when
// nothing is selected, and starts the first deployment.
func (m *Model) startDeploy() tea.Cmd {
	if m.deploying || len(m.repos) == 0 {
		return nil
	}
	m.queue = nil
	for i := range m.repos {
		if m.selected[i] {
			m.queue = append(m.queue, i)
		}
	}
	if len(m.queue) == 0 {
		m.queue = []int{m.cursor}
	}
	for _, i := range m.queue {
		m.repos[i].State = StatePending
		m.repos[i].Message = ""
	}
	m.deploying = true
	m.succeeded, m.failed = 0, 0
	return m.nextDeploy()
}

func (m *Model) nextDeploy() tea.Cmd {
	if len(m.queue) == 0 {
		m.deploying = false
		m.statusMsg = fmt.Sprintf("Deployment finished: %d succeeded, %d failed", m.succeeded, m.failed)
		m.statusErr = m.failed > 0
		if m.opts.DryRun {
			m.statusMsg += " (dry run)"
		}
		return nil
	}
	index := m.queue[0]
	m.queue = m.queue[1:]
	m.repos[index].State = StateDeploying
	repo := m.repos[index].Info
	opts := m.opts
	return func() tea.Msg {
		return deployMsg{index: index, result: m.service.Deploy(repo, opts)}
	}
}

func (m *Model) handleDeployed(msg deployMsg) tea.Cmd {
	item := &m.repos[msg.index]
	item.Message = msg.result.Message
	switch {
	case msg.result.Error != nil:
		item.State = StateFailed
		if item.Message == "" {
			item.Message = msg.result.Error.Error()
		}
		m.failed++
	case msg.result.Unchanged:
		item.State = StateUnchanged
		m.succeeded++
	default:
		item.State = StateDone
		m.succeeded++
	}
	return m.nextDeploy()
}

func (m *Model) visibleHeight() int {
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	return h
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.view {
	case ReposView:
		content = m.renderReposView()
	case PreviewView:
		content = m.renderPreviewView()
	}

	return appStyle.Render(content)
}

func (m *Model) renderReposView() string {
	var b strings.Builder

	// Title
	title := titleStyle.Render(" 📄 docdeploy ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderOptions())
	b.WriteString("\n\n")

	// Header
	header := fmt.Sprintf("     %-4s %-44s %-7s %s", "LINE", "REPOSITORY", "TYPE", "STATUS")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 76)))
	b.WriteString("\n")

	if len(m.repos) == 0 {
		b.WriteString(dimStyle.Render("  No repositories in list"))
		b.WriteString("\n")
	}

	visibleHeight := m.visibleHeight()
	start := 0
	if m.cursor >= visibleHeight {
		start = m.cursor - visibleHeight + 1
	}

	for i := start; i < len(m.repos) && i < start+visibleHeight; i++ {
		r := m.repos[i]
		cursor := "  "
		style := normalStyle
		checkbox := "[ ]"
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		if m.selected[i] {
			checkbox = "[✓]"
		}

		kind := "local"
		if r.Info.Remote {
			kind = "remote"
		}

		line := fmt.Sprintf("%s%s %-4d %-44s %-7s ", cursor, checkbox, r.Info.Line, truncate(r.Info.Source, 44), kind)
		b.WriteString(style.Render(line))
		b.WriteString(renderState(r))
		b.WriteString("\n")
	}

	// Pad to fixed height
	for i := len(m.repos); i < visibleHeight; i++ {
		b.WriteString("\n")
	}

	// Status
	b.WriteString("\n")
	if m.statusMsg != "" {
		if m.statusErr {
			b.WriteString(errorBadge.Render(m.statusMsg))
		} else {
			b.WriteString(successBadge.Render(m.statusMsg))
		}
	} else if m.deploying {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Deploying... %d remaining", len(m.queue))))
	}
	b.WriteString("\n")

	// Help
	help := "[↑/↓] navigate  [space] select  [a] all  [c] commit  [p] push  [n] dry run  [enter] preview  [d] deploy  [q] quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) renderOptions() string {
	toggle := func(name string, on bool) string {
		if on {
			return optionOnStyle.Render("[x] " + name)
		}
		return optionOffStyle.Render("[ ] " + name)
	}
	parts := []string{
		toggle("commit", m.opts.Commit),
		toggle("push", m.opts.Push),
		toggle("dry run", m.opts.DryRun),
	}
	selected := fmt.Sprintf("%d of %d selected", len(m.selected), len(m.repos))
	return "  " + strings.Join(parts, "  ") + "   " + dimStyle.Render(selected)
}

func renderState(r RepoItem) string {
	switch r.State {
	case StateDeploying:
		return warningBadge.Render("deploying...")
	case StateDone:
		return successBadge.Render("✓ " + r.Message)
	case StateUnchanged:
		return warningBadge.Render("⚠ unchanged")
	case StateFailed:
		return errorBadge.Render("✗ " + r.Message)
	default:
		return dimStyle.Render("-")
	}
}

func (m *Model) renderPreviewView() string {
	var b strings.Builder

	if m.preview == nil {
		return "Loading..."
	}

	// Title with repository and file path
	title := titleStyle.Render(fmt.Sprintf(" 🔍 %s ", truncate(m.previewRepo, 60)))
	b.WriteString(title)
	b.WriteString("\n")

	header := fmt.Sprintf("  %s   +%d -%d", m.preview.Path, m.preview.Added, m.preview.Removed)
	if !m.preview.Exists {
		header = fmt.Sprintf("  %s   new file, +%d", m.preview.Path, m.preview.Added)
	}
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 75)))
	b.WriteString("\n")

	// Handle special cases
	if m.preview.IsBinary {
		b.WriteString(dimStyle.Render("  Binary file - content diff not available"))
		b.WriteString("\n")
	} else if m.preview.Identical() {
		b.WriteString(successBadge.Render("  Already up to date"))
		b.WriteString("\n")
	} else if len(m.preview.Lines) == 0 {
		b.WriteString(dimStyle.Render("  No differences"))
		b.WriteString("\n")
	} else {
		visibleHeight := m.visibleHeight()

		endIdx := m.previewScroll + visibleHeight
		if endIdx > len(m.preview.Lines) {
			endIdx = len(m.preview.Lines)
		}

		for i := m.previewScroll; i < endIdx; i++ {
			line := m.preview.Lines[i]

			// Format line numbers
			ln1 := "   "
			ln2 := "   "
			if line.LineNum1 > 0 {
				ln1 = fmt.Sprintf("%3d", line.LineNum1)
			}
			if line.LineNum2 > 0 {
				ln2 = fmt.Sprintf("%3d", line.LineNum2)
			}

			// Truncate content for display
			content := line.Content
			maxWidth := 60
			if len(content) > maxWidth {
				content = content[:maxWidth-3] + "..."
			}

			// Style based on change type
			var lineStr string
			switch line.Type {
			case '+':
				lineStr = fmt.Sprintf("%s %s + %s", ln1, ln2, content)
				b.WriteString(addedStyle.Render(lineStr))
			case '-':
				lineStr = fmt.Sprintf("%s %s - %s", ln1, ln2, content)
				b.WriteString(deletedStyle.Render(lineStr))
			default:
				lineStr = fmt.Sprintf("%s %s   %s", ln1, ln2, content)
				b.WriteString(dimStyle.Render(lineStr))
			}
			b.WriteString("\n")
		}

		// Scroll indicator
		if len(m.preview.Lines) > visibleHeight {
			scrollInfo := fmt.Sprintf("  Lines %d-%d of %d",
				m.previewScroll+1, endIdx, len(m.preview.Lines))
			b.WriteString(dimStyle.Render(scrollInfo))
			b.WriteString("\n")
		}
	}

	// Help
	help := "[↑/↓] scroll  [esc] back  [q] quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// Run starts the TUI and releases the service when it exits.
func Run(svc ports.TUIService, opts ports.TUIDeployOptions) error {
	m, err := NewModelWithService(svc, opts)
	if err != nil {
		_ = svc.Close()
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	if cerr := svc.Close(); err == nil {
		err = cerr
	}
	return err
}

// Helper functions
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
