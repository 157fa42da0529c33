package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AnTengye/clausewise/model"
)

// renderClauseCount bounds how many clauses the terminal report lists.
const renderClauseCount = 10

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	riskStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// RenderReport formats a report for the terminal.
func RenderReport(name string, r *model.Report) string {
	sections := []string{
		titleStyle.Render("ClauseWise · " + name),
		fmt.Sprintf("%s %s   %s %s",
			headingStyle.Render("Type:"), r.DocumentType,
			headingStyle.Render("NDA:"), yesNo(r.IsNDA)),
		r.Message,
		"",
		headingStyle.Render("Fairness"),
		fairnessBar(r.Fairness.Score) + fmt.Sprintf(" %d/100 %s", r.Fairness.Score, r.Fairness.Label),
		mutedStyle.Render(fmt.Sprintf("you %d%% · company %d%%", r.Fairness.YourPosition, r.Fairness.CompanyPosition)),
		"",
		headingStyle.Render("Risks"),
	}

	if len(r.Risks) == 0 {
		sections = append(sections, goodStyle.Render(r.RiskNote))
	}
	for _, f := range r.Risks {
		sections = append(sections, riskStyle.Render("! "+f.Label)+mutedStyle.Render(fmt.Sprintf(" (clause %d)", f.ClauseIndex+1)))
	}

	sections = append(sections, "", headingStyle.Render(fmt.Sprintf("Clauses (%d)", len(r.Clauses))))
	for _, c := range r.Clauses[:min(len(r.Clauses), renderClauseCount)] {
		sections = append(sections, fmt.Sprintf("%2d. %s", c.Index+1, ellipsis(c.Text, 100)))
	}
	if len(r.Clauses) > renderClauseCount {
		sections = append(sections, mutedStyle.Render(fmt.Sprintf("    … %d more", len(r.Clauses)-renderClauseCount)))
	}

	if entities := renderEntities(r); entities != "" {
		sections = append(sections, "", headingStyle.Render("Entities"), entities)
	}

	if len(r.Alternatives) > 0 {
		sections = append(sections, "", headingStyle.Render("Safer alternatives"))
		for _, alt := range r.Alternatives {
			sections = append(sections, "• "+alt)
		}
	}

	sections = append(sections, "", mutedStyle.Render(r.Disclaimer))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func renderEntities(r *model.Report) string {
	categories := make([]string, 0, len(r.Entities))
	for category, values := range r.Entities {
		if len(values) > 0 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	lines := make([]string, len(categories))
	for i, category := range categories {
		lines[i] = fmt.Sprintf("%s: %s", category, ellipsis(strings.Join(r.Entities[category], ", "), 100))
	}
	return strings.Join(lines, "\n")
}

func fairnessBar(score int) string {
	filled := max(0, min(score, 100)) / 5
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
	if score < 50 {
		return riskStyle.Render(bar)
	}
	return goodStyle.Render(bar)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ellipsis(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
