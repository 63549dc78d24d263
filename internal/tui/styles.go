package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#7C3AED")
	muted  = lipgloss.Color("#6B7280")
	danger = lipgloss.Color("#EF4444")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	sessionTagStyle = lipgloss.NewStyle().Foreground(muted).PaddingLeft(1)

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	userBodyStyle       = lipgloss.NewStyle().PaddingLeft(2)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	assistantBodyStyle  = lipgloss.NewStyle().PaddingLeft(2)
	errorBodyStyle      = lipgloss.NewStyle().PaddingLeft(2).Foreground(danger)
	thinkingStyle       = lipgloss.NewStyle().Italic(true).Foreground(muted)
	emptyStyle          = lipgloss.NewStyle().Foreground(muted).Align(lipgloss.Center).PaddingTop(2)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(muted).
			PaddingRight(1)
	sidebarTitleStyle   = lipgloss.NewStyle().Bold(true)
	sidebarItemStyle    = lipgloss.NewStyle()
	sidebarCursorStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	sidebarActiveMarker = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render("●")
	sidebarTimeStyle    = lipgloss.NewStyle().Foreground(muted)
	confirmStyle        = lipgloss.NewStyle().Foreground(danger).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(muted)
)

const sidebarWidth = 34
