package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	colorPrimary   = lipgloss.Color("#7AA2F7") // Night blue
	colorSecondary = lipgloss.Color("#BB9AF7") // Nebula violet
	colorDanger    = lipgloss.Color("#FF6B6B") // Red for errors
	colorWarning   = lipgloss.Color("#FFD93D") // Yellow for warnings
	colorSuccess   = lipgloss.Color("#6BCF7F") // Green
	colorMuted     = lipgloss.Color("#6C757D") // Gray
	colorBorder    = lipgloss.Color("#3D59A1") // Border blue

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	linkStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Underline(true)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginTop(1)

	sectionBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	// Chart styles
	nightStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#24283B"))
	astroNightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#414868"))
	thresholdStyle  = lipgloss.NewStyle().Foreground(colorWarning)
)

// azimuthPalette approximates matplotlib's viridis, north (0°) to north (360°).
var azimuthPalette = []lipgloss.Color{
	"#440154", "#482475", "#414487", "#355F8D", "#2A788E", "#21918C",
	"#22A884", "#44BF70", "#7AD151", "#BDDF26", "#FDE725",
}

// azimuthColor maps an azimuth in degrees onto the palette.
func azimuthColor(az float64) lipgloss.Color {
	for az < 0 {
		az += 360
	}
	for az >= 360 {
		az -= 360
	}
	i := int(az / 360 * float64(len(azimuthPalette)))
	if i >= len(azimuthPalette) {
		i = len(azimuthPalette) - 1
	}
	return azimuthPalette[i]
}
