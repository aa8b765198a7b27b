package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"docdeck/internal/guide"
	"docdeck/internal/session"
)

func (m *model) View() string {
	m.refreshTranscriptIfDirty()

	parts := []string{m.heroView(), m.viewport.View()}
	if m.showDocuments {
		parts = append(parts, m.documentsView())
	}
	if panel := m.queueView(); panel != "" {
		parts = append(parts, panel)
	}
	if banner := m.config.Session.Banner(); banner != "" {
		parts = append(parts, errorStyle.Render(banner+"  (Esc dismisses)"))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	parts = append(parts, m.composerPanel(), m.keyLegendView())
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	logo := logoStyle.Render(" docdeck ")
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, logo, taglineStyle.Render("  "+heroTagline)),
	)
}

func (m *model) composerPanel() string {
	header := "Composer"
	if m.composerMode == composerModeAttach {
		header = "Composer — attach"
	}
	return joinNonEmpty([]string{
		sectionHeaderStyle.Render(header),
		m.composer.View(),
	})
}

func (m *model) keyLegendView() string {
	return helperStyle.Render("Enter ask • Ctrl+A attach • Ctrl+U upload • Ctrl+D library • Ctrl+R refresh • Ctrl+X drop • Ctrl+S export • Ctrl+C quit")
}

func (m *model) documentsView() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Library"))
	b.WriteRune('\n')
	docs := m.config.Registry.Snapshot()
	if len(docs) == 0 {
		b.WriteString(helperStyle.Render("No documents indexed yet."))
		return b.String()
	}
	for _, doc := range docs {
		line := "• " + doc.Filename
		var meta []string
		if doc.TotalPages != nil {
			meta = append(meta, fmt.Sprintf("%d pages", *doc.TotalPages))
		}
		if chunks := doc.Chunks(); chunks != nil {
			meta = append(meta, fmt.Sprintf("%d chunks", *chunks))
		}
		if len(meta) > 0 {
			line += helperStyle.Render("  (" + strings.Join(meta, ", ") + ")")
		}
		b.WriteString(line)
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) queueView() string {
	pending := m.config.Queue.Pending()
	if len(pending) == 0 && !m.config.Queue.Uploading() {
		return ""
	}
	var b strings.Builder
	header := fmt.Sprintf("Pending uploads (%d)", len(pending))
	if m.config.Queue.Uploading() {
		header += " — uploading"
	}
	b.WriteString(sectionHeaderStyle.Render(header))
	for _, c := range pending {
		b.WriteRune('\n')
		b.WriteString(fmt.Sprintf("• %s %s", c.Name, helperStyle.Render(formatSize(c.Size))))
	}
	return b.String()
}

func formatSize(size int64) string {
	const mib = 1 << 20
	if size >= mib {
		return fmt.Sprintf("(%.1f MiB)", float64(size)/mib)
	}
	return fmt.Sprintf("(%d KiB)", (size+1023)/1024)
}

func (m *model) refreshTranscriptIfDirty() {
	if !m.transcriptDirty {
		return
	}
	m.transcriptDirty = false
	m.viewport.SetContent(m.transcriptContent())
	m.viewport.GotoBottom()
}

func (m *model) transcriptContent() string {
	turns := m.config.Session.Turns()
	if len(turns) == 0 {
		return m.guideContent()
	}

	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteRune('\n')
		}
		switch turn.Role {
		case session.RoleUser:
			b.WriteString(userLabelStyle.Render(userLabel))
			b.WriteRune('\n')
			b.WriteString(wordwrap.String(turn.Content, wrap))
		default:
			b.WriteString(assistantLabelStyle.Render(assistantLabel))
			b.WriteRune('\n')
			b.WriteString(m.renderMarkdown(turn.Content, wrap))
			for _, src := range turn.Sources {
				b.WriteRune('\n')
				b.WriteString(citationStyle.Render("  ↳ " + session.FormatSource(src)))
			}
		}
		b.WriteRune('\n')
	}
	if m.config.Session.State() == session.AwaitingAnswer {
		b.WriteRune('\n')
		b.WriteString(assistantLabelStyle.Render(assistantLabel))
		b.WriteRune('\n')
		b.WriteString(helperStyle.Render("thinking…"))
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) guideContent() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Getting started"))
	b.WriteRune('\n')
	wrap := m.viewport.Width - 4
	if wrap < 20 {
		wrap = 20
	}
	for i, step := range guide.Build() {
		b.WriteRune('\n')
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d. %s", i+1, step.Title)))
		b.WriteRune('\n')
		b.WriteString(wordwrap.String(step.Description, wrap))
		b.WriteRune('\n')
	}
	return b.String()
}

// renderMarkdown renders assistant answers with glamour, falling back to a
// plain wrap when the renderer is unavailable.
func (m *model) renderMarkdown(content string, wrap int) string {
	if m.mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.mdRenderer = r
		}
	}
	if m.mdRenderer != nil {
		if out, err := m.mdRenderer.Render(content); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wordwrap.String(content, wrap)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

var (
	sectionHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	subtitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	citationStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Italic(true)
	logoStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff4d0")).Background(lipgloss.Color("#1d3557")).Padding(0, 1)
	taglineStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#a8dadc")).Italic(true)
)
