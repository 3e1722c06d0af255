package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/ngmaloney/astroscope/internal/models"
)

// objectItem wraps a catalog object for use in a list
type objectItem struct {
	object models.Object
}

// FilterValue implements list.Item
func (o objectItem) FilterValue() string {
	return o.object.Name + " " + strings.Join(o.object.CommonNames, " ")
}

// Title implements list.DefaultItem
func (o objectItem) Title() string {
	return o.object.DisplayName()
}

// Description implements list.DefaultItem
func (o objectItem) Description() string {
	parts := []string{
		models.TypeName(o.object.Type),
		o.object.Constellation,
		"mag " + o.object.MagnitudeString(),
	}
	if len(o.object.CommonNames) > 0 {
		parts = append(parts, strings.Join(o.object.CommonNames, ", "))
	}
	return strings.Join(parts, " · ")
}

// rowItem wraps a suggestions report row
type rowItem struct {
	row models.ReportRow
}

func (r rowItem) FilterValue() string { return r.row.Name }

func (r rowItem) Title() string { return r.row.Name }

func (r rowItem) Description() string {
	return fmt.Sprintf("%s · %s · %dh - %dh (%.2fh) · mag %.2f",
		models.TypeName(r.row.Type), r.row.Constellation,
		r.row.Rise, r.row.Set, r.row.Duration, r.row.Magnitude)
}

// siteItem wraps a saved observing site
type siteItem struct {
	site models.Site
}

func (s siteItem) FilterValue() string { return s.site.Name }

func (s siteItem) Title() string { return s.site.Name }

func (s siteItem) Description() string {
	return fmt.Sprintf("%.4f, %.4f", s.site.Latitude, s.site.Longitude)
}

func objectItems(objects []models.Object) []list.Item {
	items := make([]list.Item, len(objects))
	for i, o := range objects {
		items[i] = objectItem{object: o}
	}
	return items
}

func rowItems(rows []models.ReportRow) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowItem{row: r}
	}
	return items
}

func siteItems(sites []models.Site) []list.Item {
	items := make([]list.Item, len(sites))
	for i, s := range sites {
		items[i] = siteItem{site: s}
	}
	return items
}

// newList creates a list.Model with the shared settings; filtering is done
// by the filter expression, not the list's fuzzy search.
func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	return l
}

func newObjectList(objects []models.Object, width, height int) list.Model {
	return newList("Overview", objectItems(objects), width, height)
}

func newSuggestionList(rows []models.ReportRow, width, height int) list.Model {
	return newList("Suggestions", rowItems(rows), width, height)
}

func newSiteList(sites []models.Site, width, height int) list.Model {
	l := newList("Saved sites", siteItems(sites), width, height)
	l.SetShowTitle(true)
	return l
}
