package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	headingStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1).MarginBottom(1)
	questionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("244")).
			Padding(0, 1)
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	screen := view.Select(m.state)

	var b strings.Builder
	b.WriteString(titleStyle.Render(screen.Title))
	b.WriteString("\n")
	if screen.Alert != "" {
		b.WriteString(alertStyle.Render("! " + screen.Alert + "  (esc to dismiss)"))
		b.WriteString("\n")
	}

	switch screen.Kind {
	case view.ScreenStart:
		b.WriteString(headingStyle.Render("What do you want summarized?"))
		b.WriteString("\n")
	case view.ScreenConversation:
		b.WriteString(m.renderConversation(screen))
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.attachment != nil {
		b.WriteString(fileStyle.Render("attached: " + m.attachment.Name))
		b.WriteString("\n")
	}
	b.WriteString(warningStyle.Render(screen.Warning))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderConversation(screen view.Screen) string {
	var b strings.Builder
	bubble := screen.Question
	if screen.FileName != "" {
		bubble += "\n" + fileStyle.Render(screen.FileName)
	}
	question := questionStyle.Render(bubble)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, question))
	b.WriteString("\n\n")

	if screen.Loading {
		b.WriteString(m.spinner.View() + " generating your video...")
	} else {
		b.WriteString(resultStyle.Render(screen.ResultURL(config.BaseURL)))
	}
	b.WriteString("\n")
	return b.String()
}
