package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-headers/internal/theme"
)

// Render formats a report as three panels: summary, Received hops, and
// every header field in order.
func Render(r *Report) string {
	sections := []string{
		section("Summary", renderSummary(r.Summary)),
	}
	if len(r.Hops) > 0 {
		sections = append(sections, section("Received", renderHops(r.Hops)))
	}
	sections = append(sections, section("Headers", renderFields(r.Fields)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func section(title, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderStyle.Render(title),
		theme.PanelStyle.Render(body),
	)
}

func renderSummary(s Summary) string {
	var date string
	if !s.Date.IsZero() {
		date = s.Date.Format(time.RFC1123Z)
	}

	rows := [][2]string{
		{"Subject", s.Subject},
		{"From", s.From},
		{"To", s.To},
		{"Date", date},
		{"Message-ID", s.MessageID},
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		value := row[1]
		if value == "" {
			value = theme.DimmedStyle.Render("(none)")
		}
		fmt.Fprintf(&b, "%s %s", theme.KeyStyle.Render(fmt.Sprintf("%-11s", row[0]+":")), value)
	}
	return b.String()
}

func renderHops(hops []Hop) string {
	lines := make([]string, 0, len(hops))
	for _, h := range hops {
		lines = append(lines, fmt.Sprintf("%s %s", theme.DimmedStyle.Render(fmt.Sprintf("%2d.", h.Number)), h.Value))
	}
	return strings.Join(lines, "\n")
}

func renderFields(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s %s", theme.KeyStyle.Render(f.Key+":"), collapseSpace(f.Value)))
	}
	return strings.Join(lines, "\n")
}
