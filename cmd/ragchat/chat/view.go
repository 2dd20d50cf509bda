package chat

import (
	"strings"

	"ragchat/internal/widget"

	"github.com/charmbracelet/lipgloss"
)

const zoneHint = "click, ctrl+o or drop files here"

// renderTranscript renders the log. AI text is shown line by line with no
// interpretation unless markdown rendering is enabled.
func (m Model) renderTranscript() string {
	var sb strings.Builder
	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}

	for i, msg := range m.state.Transcript.Messages() {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch msg.Sender {
		case widget.SenderUser:
			sb.WriteString(m.styles.Prompt.Render("You") + " " + m.styles.Timestamp.Render(msg.Time.Format("15:04")) + "\n")
			sb.WriteString(m.styles.UserMessage.MaxWidth(width).Render(msg.Text))
		default:
			sb.WriteString(m.styles.ZoneTitle.Render("Assistant") + " " + m.styles.Timestamp.Render(msg.Time.Format("15:04")) + "\n")
			sb.WriteString(m.renderReply(msg, width))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m Model) renderReply(msg widget.Message, width int) string {
	if m.renderer != nil {
		return m.safeRenderMarkdown(msg.Text)
	}
	return m.styles.AIMessage.Width(width).Render(strings.Join(msg.Lines(), "\n"))
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

// renderZone draws the upload panel with its status lines.
func (m Model) renderZone(width, height int) string {
	var lines []string
	lines = append(lines, m.styles.ZoneTitle.Render("Documents"))
	lines = append(lines, m.styles.Muted.Render(zoneHint), "")

	if m.state.Uploads.ShowPlaceholder() {
		lines = append(lines, m.styles.Placeholder.Render(widget.PlaceholderText))
	}
	for _, s := range m.state.Uploads.Entries() {
		lines = append(lines, m.statusStyle(s).Render(s.Text()))
	}

	style := m.styles.Zone
	if m.focus == focusZone {
		style = m.styles.ZoneHighlighted
	}
	// Border takes two cells in each direction.
	innerWidth, innerHeight := width-2, height-2
	if innerWidth < 1 {
		innerWidth = 1
	}
	if innerHeight < 1 {
		innerHeight = 1
	}
	return style.Width(innerWidth).Height(innerHeight).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

func (m Model) statusStyle(s widget.UploadStatus) lipgloss.Style {
	switch s.State {
	case widget.UploadSucceeded:
		return m.styles.StatusSuccess
	case widget.UploadFailed:
		return m.styles.StatusFailure
	default:
		return m.styles.StatusPending
	}
}

func (m Model) renderInput() string {
	prompt := m.input.View()
	if m.state.Loading() {
		prompt = m.spinner.View() + " " + m.styles.PromptLoading.Render(m.input.View())
	}
	style := m.styles.InputBox
	if m.focus == focusInput {
		style = m.styles.InputFocused
	}
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return style.Width(w).Render(prompt)
}

func (m Model) renderFooter() string {
	help := "enter send • tab focus upload zone • ctrl+o pick file • pgup/pgdn scroll • esc quit"
	if m.mode == pickerView {
		help = "enter select • backspace up a directory • esc cancel"
	}
	return m.styles.Footer.Render(help)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.styles.Header.Render("ragchat")

	if m.mode == pickerView {
		title := m.styles.Header.Render("Select a file to upload")
		return lipgloss.JoinVertical(lipgloss.Left, title, m.filepicker.View(), m.renderFooter())
	}

	chatWidth, zoneWidth, bodyHeight := m.layout()
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(chatWidth).Height(bodyHeight).Render(m.viewport.View()),
		m.renderZone(zoneWidth, bodyHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderInput(), m.renderFooter())
}
