package tui

import "github.com/charmbracelet/lipgloss"

// bankprobe slate theme
var (
	Slate      = lipgloss.Color("#8CA0B3")
	DeepSlate  = lipgloss.Color("#4A6FA5")
	LightSlate = lipgloss.Color("#C3D0DB")

	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#B0B0B0")

	Success = lipgloss.Color("#00FF88")
	Warning = lipgloss.Color("#FFD700")
	Error   = lipgloss.Color("#FF6B6B")

	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(DeepSlate).
			Bold(true).
			Padding(0, 2)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Slate).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(LightSlate)

	ValueStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)
