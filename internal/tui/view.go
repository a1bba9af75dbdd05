package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/okian/fideboard/internal/domain/federation"
	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/internal/rankview"
)

// column widths
const (
	colRank   = 6
	colFed    = 8
	colRating = 7
	colDelta  = 9
	minName   = 16
)

// View renders the model (Bubble Tea interface).
func (m Model) View() string {
	s := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderTitle(s))
	b.WriteString("\n\n")
	b.WriteString(m.renderHeader(s.Sort))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", m.tableWidth())))
	b.WriteString("\n")
	b.WriteString(m.renderRows(s))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(s))
	if s.Error != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + s.Error))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTitle(s rankview.Snapshot) string {
	title := titleStyle.Render("FIDE Top Players")
	if s.LastUpdated != nil {
		title += mutedStyle.Render("  standard list of " + s.LastUpdated.Format("January 2006"))
	}
	if s.Loading() {
		title += "  " + m.spinner.View() + mutedStyle.Render(" loading")
	}
	return title
}

func (m Model) nameWidth() int {
	w := m.width - colRank - colFed - colRating - 2*colDelta - 5
	if w < minName {
		return minName
	}
	return w
}

func (m Model) tableWidth() int {
	return colRank + m.nameWidth() + colFed + colRating + 2*colDelta + 5
}

// sortHeader labels a sortable column with its indicator; the active column is highlighted.
func sortHeader(label string, s rankview.SortState, field types.SortField, width int) string {
	ind := rankview.IndicatorFor(s, field)
	text := pad(label+" "+ind.Glyph(), width, true)
	if ind == rankview.IndicatorNeutral {
		return headerStyle.Render(text)
	}
	return activeStyle.Render(text)
}

func (m Model) renderHeader(s rankview.SortState) string {
	return strings.Join([]string{
		sortHeader("#", s, types.SortRank, colRank),
		headerStyle.Render(pad("Name", m.nameWidth(), false)),
		headerStyle.Render(pad("Fed", colFed, false)),
		headerStyle.Render(pad("Rating", colRating, true)),
		sortHeader("Month", s, types.SortDeltaMonth, colDelta),
		sortHeader("Year", s, types.SortDeltaYear, colDelta),
	}, " ")
}

func (m Model) renderRows(s rankview.Snapshot) string {
	switch {
	case s.Status == rankview.StatusEmpty:
		return mutedStyle.Render("No rated players in the latest list.")
	case len(s.Records) == 0 && s.Loading():
		return mutedStyle.Render("Loading rankings…")
	case len(s.Records) == 0:
		return mutedStyle.Render(rankview.NoData)
	}
	rows := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		rows = append(rows, m.renderRow(r))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderRow(r types.Record) string {
	return strings.Join([]string{
		pad(fmt.Sprint(r.Rank), colRank, true),
		pad(r.Name, m.nameWidth(), false),
		pad(federationLabel(r.Federation), colFed, false),
		pad(fmt.Sprint(r.Rating), colRating, true),
		renderDelta(r.DeltaMonth),
		renderDelta(r.DeltaYear),
	}, " ")
}

func renderDelta(d *int) string {
	fd := rankview.FormatDelta(d)
	return toneStyles[fd.Tone].Render(pad(fd.Text, colDelta, true))
}

// federationLabel shows the flag followed by the code, or the bare code when no flag is known.
func federationLabel(code string) string {
	mk := federation.Resolve(code)
	if !mk.Resolved {
		return mk.Text
	}
	return mk.Text + " " + mk.Code
}

// RangeLabel renders the visible range with thousands separators.
func RangeLabel(r rankview.Range) string {
	if r.Empty() {
		return "No players"
	}
	return fmt.Sprintf("%s–%s of %s",
		humanize.Comma(int64(r.From)), humanize.Comma(int64(r.To)), humanize.Comma(int64(r.Total)))
}

func (m Model) renderFooter(s rankview.Snapshot) string {
	prev := disabledKey.Render("‹ prev")
	if s.CanPrev {
		prev = enabledKey.Render("‹ prev")
	}
	next := disabledKey.Render("next ›")
	if s.CanNext {
		next = enabledKey.Render("next ›")
	}

	pages := fmt.Sprintf("page %d of %d", s.Page.CurrentPage, max(s.Page.TotalPages, 1))
	input := mutedStyle.Render("g to jump")
	if m.editing {
		input = m.input.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		RangeLabel(s.Range), "   ", prev, "  ", pages, "  ", next, "   ", input)
}

// pad fits s into width display cells, truncating with an ellipsis.
func pad(s string, width int, right bool) string {
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	if right {
		return strings.Repeat(" ", width-w) + s
	}
	return s + strings.Repeat(" ", width-w)
}
