package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/models"
)

const nedSearchURL = "https://ned.ipac.caltech.edu/cgi-bin/objsearch?objname="

// NEDLink returns the NASA/IPAC Extragalactic Database search URL for an object.
func NEDLink(name string) string {
	return nedSearchURL + url.QueryEscape(name)
}

// viewProvisioning renders the initial setup screen
func (m Model) viewProvisioning() string {
	title := titleStyle.Render("✦ Astroscope Setup")

	sp := m.spinner.View()
	status := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render(m.provisionStatus)

	info := helpStyle.Render("One-time setup: downloading the OpenNGC catalog...")

	return lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		title,
		"",
		fmt.Sprintf("%s %s", sp, status),
		"",
		info,
	)
}

// viewError renders the error view
func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")

	var errorMsg string
	if m.err != nil {
		errorMsg = m.err.Error()
	} else {
		errorMsg = "An unknown error occurred"
	}

	help := helpStyle.Render("Press any key to go back • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", errorMsg, "", help)
}

// viewSearch renders the location prompt
func (m Model) viewSearch() string {
	title := titleStyle.Render("✦ Astroscope")
	subtitle := mutedStyle.Render("Where are you observing from?")

	searchBox := inputBoxStyle.
		Padding(1, 2).
		Width(64).
		Render(m.searchInput.View())

	examples := mutedStyle.Render("Examples: Ghent, Belgium | 51.05, 3.72 | Flagstaff, AZ")
	help := helpStyle.Render("Enter: Search • Esc: Continue without location • Ctrl+C: Quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		searchBox,
		"",
		examples,
		"",
		help,
	)
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	s := m.spinner.View() + " "
	if m.catalogLoaded {
		s += "Locating observer..."
	} else {
		s += "Loading catalog..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", s)
}

func (m Model) viewHeader() string {
	var tabs []string
	for _, t := range []Tab{TabOverview, TabSuggestions} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.String()))
		}
	}

	location := warningStyle.Render("Location unavailable")
	if m.site != nil {
		location = mutedStyle.Render(fmt.Sprintf("@ %s (%.4f, %.4f)", m.site.Name, m.site.Latitude, m.site.Longitude))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Astroscope "),
		strings.Join(tabs, " "),
		"  ",
		location,
	)
}

// viewBrowse renders the overview and suggestions tables
func (m Model) viewBrowse() string {
	var body, total string
	if m.tab == TabSuggestions {
		total = fmt.Sprintf("Total: %d", len(m.suggestionList.Items()))
		if m.reportErr != nil && len(m.rows) == 0 {
			body = mutedStyle.Render("No object data found.")
			if !isNoReport(m.reportErr) {
				body += "\n" + errorStyle.Render(m.reportErr.Error())
			}
			body += "\n" + mutedStyle.Render("Run `astroscope suggest` to build it.")
		} else {
			body = m.suggestionList.View()
		}
	} else {
		total = fmt.Sprintf("Total: %d", len(m.objectList.Items()))
		body = m.objectList.View()
	}

	filterLine := labelStyle.Render("Filter: ") + valueStyle.Render(m.filter.String())
	if m.filtering {
		filterLine = m.filterInput.View()
	}

	help := helpStyle.Render("Tab: Switch • /: Filter • Enter: Details • L: Location • S: Sites • R: Reload report • Q: Quit")

	sections := []string{
		m.viewHeader(),
		filterLine + "  " + mutedStyle.Render(total),
	}
	if m.status != "" {
		sections = append(sections, m.status)
	}
	sections = append(sections, "", body, help)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewDetail renders the single object panel
func (m Model) viewDetail() string {
	if m.detail == nil {
		return ""
	}
	d := m.detail

	title := d.name
	if d.object != nil {
		title = d.object.DisplayName()
	}
	sections := []string{titleStyle.Render("✦ " + title)}

	if m.loadingDetail {
		sections = append(sections, "", m.spinner.View()+" Computing visibility...")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if d.object != nil {
		sections = append(sections, "", m.viewObjectInfo(*d.object))
	}
	sections = append(sections, labelStyle.Render("More info: ")+linkStyle.Render(NEDLink(d.name)))

	switch {
	case d.err != nil:
		sections = append(sections, "", errorStyle.Render("Cannot get object info."))
	case m.site == nil || d.now == nil:
		sections = append(sections, "", warningStyle.Render("Location unavailable"))
	default:
		sections = append(sections,
			"",
			labelStyle.Render("Altitude: ")+valueStyle.Render(astro.FormatDMS(d.now.Alt)),
			labelStyle.Render("Azimuth:  ")+valueStyle.Render(astro.FormatDMS(d.now.Az)),
		)
		if d.night != nil {
			chartWidth := m.width - 8
			if chartWidth > 100 {
				chartWidth = 100
			}
			sections = append(sections,
				sectionHeaderStyle.Render("TONIGHT"),
				sectionBoxStyle.Render(renderChart(*d.night, m.deps.Thresholds, chartWidth, 16)),
				valueStyle.Render(d.night.Caption()),
			)
		}
	}

	sections = append(sections, helpStyle.Render("Esc: Back • Q: Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewObjectInfo(o models.Object) string {
	lines := []string{
		labelStyle.Render("Type:          ") + valueStyle.Render(models.TypeName(o.Type)),
		labelStyle.Render("Constellation: ") + valueStyle.Render(o.Constellation),
		labelStyle.Render("Magnitude:     ") + valueStyle.Render(o.MagnitudeString()),
	}
	if len(o.CommonNames) > 0 {
		lines = append(lines, labelStyle.Render("Common names:  ")+valueStyle.Render(strings.Join(o.CommonNames, ", ")))
	}
	return strings.Join(lines, "\n")
}

// viewSites renders the saved sites list
func (m Model) viewSites() string {
	sections := []string{m.viewHeader(), ""}
	if m.state == StateSiteName {
		sections = append(sections,
			labelStyle.Render("Save current location as:"),
			inputBoxStyle.Width(44).Render(m.nameInput.View()),
		)
	}
	if m.status != "" {
		sections = append(sections, m.status)
	}
	sections = append(sections,
		m.siteList.View(),
		helpStyle.Render("Enter: Use site • A: Save current • D: Delete • Esc: Back • Q: Quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
