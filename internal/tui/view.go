package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/docvoice/docvoice/internal/core/domain"
)

// View renders the whole shell.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", m.width)))

	switch m.mode {
	case modeLogin:
		sections = append(sections, m.renderCredentialForm("LOGIN"))
	case modeRegister:
		sections = append(sections, m.renderCredentialForm("REGISTER"))
	case modeAsk:
		sections = append(sections, m.renderAskForm())
	default:
		sections = append(sections, m.renderMainContent())
	}

	sections = append(sections, dividerStyle.Render(strings.Repeat("─", m.width)))
	if m.errorText != "" {
		sections = append(sections, errorStyle.Render("✗ "+m.errorText))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("DOCVOICE")

	var session string
	if m.sessionName != "" {
		session = dimStyle.Render(" — " + m.sessionName)
	}

	var welcome string
	if m.welcome != "" {
		welcome = dimStyle.Render("  " + m.welcome)
	}

	return title + session + welcome
}

func (m Model) renderStatusBar() string {
	var status string
	if m.busy {
		status = busyStyle.Render("⟳ " + m.statusText)
	} else {
		status = statusStyle.Render(m.statusText)
	}

	lang := dimStyle.Render("  [" + domain.LanguageName(m.lang) + "]")

	return status + lang + m.renderPlaybackBadges()
}

func (m Model) renderPlaybackBadges() string {
	var badges string
	for _, ch := range []domain.Channel{domain.ChannelPrimary, domain.ChannelSecondary} {
		state := m.deps.Speech.State(ch)
		switch state.Status {
		case domain.PlaybackSpeaking:
			badges += "  " + speakingStyle.Render("▶ "+ch.String())
		case domain.PlaybackPaused:
			badges += "  " + pausedStyle.Render("⏸ "+ch.String())
		}
	}
	return badges
}

func (m Model) renderMainContent() string {
	left := m.renderSidePanels()
	right := m.renderDocumentPanel()
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " │ ", right)
}

func (m Model) renderSidePanels() string {
	width := m.sidePanelWidth()

	var b strings.Builder

	filesTitle := panelTitleStyle
	if m.focus == focusFiles {
		filesTitle = panelTitleActiveStyle
	}
	b.WriteString(filesTitle.Render("FILES") + "\n")
	if len(m.files) == 0 {
		b.WriteString(dimStyle.Render("  (drop PDFs into the documents folder)") + "\n")
	}
	for i, name := range m.files {
		line := "  " + truncate(name, width-4)
		if i == m.fileIndex {
			line = selectedStyle.Render("▸ " + truncate(name, width-4))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	histTitle := panelTitleStyle
	if m.focus == focusHistory {
		histTitle = panelTitleActiveStyle
	}
	b.WriteString(histTitle.Render("HISTORY") + "\n")
	if m.sessionName == "" {
		b.WriteString(dimStyle.Render("  (log in to see past summaries)") + "\n")
	}
	for i, entry := range m.entries {
		line := "  " + truncate(entry.Summary, width-4)
		if i == m.histIndex {
			line = selectedStyle.Render("▸ " + truncate(entry.Summary, width-4))
		}
		b.WriteString(line + "\n")
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (m Model) renderDocumentPanel() string {
	width := max(30, m.width-m.sidePanelWidth()-3)

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("SUMMARY") + "\n")
	if m.summary == "" {
		b.WriteString(dimStyle.Render("  (select a file and press s)") + "\n")
	} else {
		b.WriteString(wrap(m.summary, width) + "\n")
	}

	if m.translation != "" {
		b.WriteString("\n")
		b.WriteString(panelTitleStyle.Render("TRANSLATION ("+domain.LanguageName(m.translLang)+")") + "\n")
		b.WriteString(wrap(m.translation, width) + "\n")
	}

	if m.answer != "" {
		b.WriteString("\n")
		b.WriteString(panelTitleStyle.Render("ANSWER") + "\n")
		b.WriteString(dimStyle.Render("Q: "+m.question) + "\n")
		b.WriteString(wrap(m.answer, width) + "\n")
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (m Model) renderCredentialForm(title string) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(title) + "\n\n")

	userLabel := "  username: "
	passLabel := "  password: "
	if m.formField == 0 {
		userLabel = selectedStyle.Render("▸ username: ")
	} else {
		passLabel = selectedStyle.Render("▸ password: ")
	}
	b.WriteString(userLabel + m.inputUser + "\n")
	b.WriteString(passLabel + strings.Repeat("•", len([]rune(m.inputPass))) + "\n\n")
	b.WriteString(dimStyle.Render("enter to submit, esc to cancel"))
	return b.String()
}

func (m Model) renderAskForm() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("ASK A QUESTION") + "\n\n")
	b.WriteString(selectedStyle.Render("▸ ") + m.inputQuestion + dimStyle.Render("█") + "\n\n")
	b.WriteString(dimStyle.Render("enter to ask, esc to cancel"))
	return b.String()
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"s", "summarize"},
		{"t", "translate"},
		{"a", "ask"},
		{"l", "language"},
		{"1/2", "speak"},
		{"0", "stop"},
		{"g", "login"},
		{"x", "logout"},
		{"q", "quit"},
	}
	var parts []string
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+footerDescStyle.Render(" "+k.desc))
	}
	return strings.Join(parts, "  ")
}

func (m Model) sidePanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(24, m.width*30/100)
}

func truncate(s string, width int) string {
	if width <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func wrap(s string, width int) string {
	if width < 10 {
		return s
	}
	words := strings.Fields(s)
	var b strings.Builder
	lineLen := 0
	for _, word := range words {
		if lineLen > 0 && lineLen+1+len([]rune(word)) > width {
			b.WriteString("\n")
			lineLen = 0
		} else if lineLen > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len([]rune(word))
	}
	return b.String()
}
