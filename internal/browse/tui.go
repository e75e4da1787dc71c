// Package browse is an interactive terminal browser for the most recent
// collection snapshot.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/aisocjobs/internal/model"
)

// Lines per posting item in the list view (title + subtitle + blank
// separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

// categoryFilters cycles with the c key; empty string means all.
var categoryFilters = []string{"", "research", "policy", "technical", "legal"}

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	scoreHighStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	scoreLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	snapshot model.Snapshot
	visible  []model.Posting

	listViewport   viewport.Model
	detailViewport viewport.Model
	cursor         int
	width          int
	height         int
	ready          bool

	view          viewState
	detail        model.Posting
	showFullDesc  bool
	categoryIndex int
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "c":
		m.categoryIndex = (m.categoryIndex + 1) % len(categoryFilters)
		m.applyFilter()
		m.recalcContent()
		return m, nil
	case "o":
		if len(m.visible) > 0 {
			openURL(m.visible[m.cursor].SourceURL)
		}
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.listViewport, cmd = m.listViewport.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detail.SourceURL)
		return m, nil
	case "r":
		if m.detail.FullDescription != "" {
			m.showFullDesc = !m.showFullDesc
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.visible)-1, 0))
}

func (m *browseModel) ensureCursorVisible() {
	cursorTop := m.cursor * itemHeight
	cursorBottom := cursorTop + itemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m *browseModel) applyFilter() {
	category := categoryFilters[m.categoryIndex]
	if category == "" {
		m.visible = m.snapshot.Jobs
	} else {
		var filtered []model.Posting
		for _, p := range m.snapshot.Jobs {
			if string(p.Category) == category {
				filtered = append(filtered, p)
			}
		}
		m.visible = filtered
	}
	m.cursor = 0
	m.listViewport.SetYOffset(0)
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if len(m.visible) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detail = m.visible[m.cursor]
	m.showFullDesc = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	paneWidth := max(m.width-2, 20)
	// Header (1) + border top/bottom (2) + status bar (1).
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderPostings(m.visible, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m browseModel) viewList() string {
	category := categoryFilters[m.categoryIndex]
	if category == "" {
		category = "all"
	}
	header := headerStyle.Render(fmt.Sprintf(" Postings (%d) · category: %s", len(m.visible), category))

	pane := borderStyle.Width(m.listViewport.Width).Render(m.listViewport.View())

	statusText := fmt.Sprintf(" %d total | avg score %d | updated %s    ↑/↓ cursor  Enter detail  c category  o open  q quit",
		m.snapshot.Stats.Total,
		m.snapshot.Stats.AverageScore,
		m.snapshot.Metadata.LastUpdate.Format("2006-01-02 15:04"),
	)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return header + "\n" + pane + "\n" + statusBar
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Posting Details")

	border := borderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusText := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detail.FullDescription != "" {
		statusText = " o open URL  r full description  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	p := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Job Type", string(p.JobType))
	addField("Category", string(p.Category))
	addField("Source", p.SourceSite)

	b.WriteByte('\n')
	addField("Relevance", fmt.Sprintf("%d/100", p.RelevanceScore))
	if p.Analyzed {
		addField("Confidence", string(p.Confidence))
	}
	addField("Posted", p.PostingDate)
	addField("Deadline", p.Deadline)
	addField("Salary", p.SalaryInfo)
	if p.IsRemote {
		addField("Remote", "yes")
	}
	if len(p.Tags) > 0 {
		addField("Tags", strings.Join(p.Tags, ", "))
	}

	b.WriteByte('\n')
	addField("URL", p.SourceURL)

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if p.Reasoning != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Assessment ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(p.Reasoning, wrapWidth)) + "\n")
		if len(p.KeyTopics) > 0 {
			b.WriteByte('\n')
			for _, topic := range p.KeyTopics {
				b.WriteString("  • " + topic + "\n")
			}
		}
	}

	if p.FullDescription != "" {
		b.WriteByte('\n')
		if m.showFullDesc {
			b.WriteString(divider("── Description ") + "\n\n")
			b.WriteString(bodyStyle.Render(wordWrap(p.FullDescription, wrapWidth)) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r for the full description") + "\n")
		}
	} else if p.Description != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Description ") + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(p.Description, wrapWidth)) + "\n")
	}

	return b.String()
}

func renderPostings(postings []model.Posting, cursor int) string {
	if len(postings) == 0 {
		return "  (no postings)"
	}

	var b strings.Builder
	for i, p := range postings {
		isSelected := i == cursor

		titleSt := titleStyle
		subtitleSt := subtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		scoreSt := scoreLowStyle
		if p.RelevanceScore >= 80 {
			scoreSt = scoreHighStyle
		}

		b.WriteString(prefix)
		b.WriteString(scoreSt.Render(fmt.Sprintf("%3d ", p.RelevanceScore)))
		b.WriteString(titleSt.Render(p.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("    %s · %s · %s", p.Company, p.Location, p.SourceSite)))
		b.WriteByte('\n')

		if i < len(postings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the interactive snapshot browser. Postings arrive sorted
// by relevance score from the snapshot, so no extra sorting happens
// here.
func Run(snapshot model.Snapshot) error {
	m := browseModel{snapshot: snapshot}
	m.applyFilter()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
