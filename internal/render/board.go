// Package render draws board and dashboard views for the terminal.
package render

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

const (
	maxCardsPerColumn = 12
	minColumnWidth    = 22
	defaultTermWidth  = 100
	maxTitleWidth     = 40
	cardPadding       = 2 // left+right padding inside cards
)

// BoardOptions configures board rendering.
type BoardOptions struct {
	// Stale marks the data as served from the local cache because the
	// backend could not be reached. FetchedAt is when it was cached.
	Stale     bool
	FetchedAt time.Time

	// Width overrides terminal width detection; zero means detect.
	Width int
}

// ColorsEnabled reports whether colored output should be produced.
func ColorsEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Board renders issues as a kanban board. All three status columns are
// always drawn, empty or not; column presence never depends on data.
func Board(issues []*models.Issue, opts BoardOptions) string {
	var b strings.Builder
	if opts.Stale {
		b.WriteString(staleBanner(opts.FetchedAt))
		b.WriteString("\n")
	}
	if ColorsEnabled() {
		b.WriteString(renderColorBoard(issues, opts))
	} else {
		b.WriteString(renderPlainBoard(issues))
	}
	return b.String()
}

func staleBanner(fetchedAt time.Time) string {
	msg := "⚠ backend unreachable, showing cached data"
	if !fetchedAt.IsZero() {
		msg = fmt.Sprintf("⚠ backend unreachable, showing cached data from %s", humanize.Time(fetchedAt))
	}
	if !ColorsEnabled() {
		return msg
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Render(msg)
}

// priorityMarker returns the glyph shown next to a card title.
func priorityMarker(p models.IssuePriority) string {
	switch p {
	case models.IssuePriorityLow:
		return "↓"
	case models.IssuePriorityMedium:
		return "→"
	case models.IssuePriorityHigh:
		return "↑"
	case models.IssuePriorityUrgent:
		return "‼"
	}
	return "·"
}

// priorityColor returns the lipgloss color for a priority marker.
func priorityColor(p models.IssuePriority) lipgloss.Color {
	switch p {
	case models.IssuePriorityLow:
		return lipgloss.Color("2")
	case models.IssuePriorityMedium:
		return lipgloss.Color("3")
	case models.IssuePriorityHigh:
		return lipgloss.Color("1")
	case models.IssuePriorityUrgent:
		return lipgloss.Color("9")
	}
	return lipgloss.Color("7")
}

// statusColor returns the lipgloss color for a column header and border.
func statusColor(s models.IssueStatus) lipgloss.Color {
	switch s {
	case models.IssueStatusOpen:
		return lipgloss.Color("2")
	case models.IssueStatusInProgress:
		return lipgloss.Color("3")
	case models.IssueStatusDone:
		return lipgloss.Color("6")
	}
	return lipgloss.Color("7")
}

func terminalWidth(opts BoardOptions) int {
	if opts.Width > 0 {
		return opts.Width
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

func groupByStatus(issues []*models.Issue) map[models.IssueStatus][]*models.Issue {
	groups := make(map[models.IssueStatus][]*models.Issue)
	for _, issue := range issues {
		groups[issue.Status] = append(groups[issue.Status], issue)
	}
	return groups
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func renderColorBoard(issues []*models.Issue, opts BoardOptions) string {
	groups := groupByStatus(issues)

	tw := terminalWidth(opts)
	gaps := len(models.StatusOrder) - 1
	colWidth := (tw - gaps) / len(models.StatusOrder)
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}
	contentWidth := max(colWidth-cardPadding-2, 5) // 2 for border chars

	var columns []string
	for _, status := range models.StatusOrder {
		columns = append(columns, renderColorColumn(status, groups[status], colWidth, contentWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderColorColumn(status models.IssueStatus, issues []*models.Issue, colWidth, contentWidth int) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(status)).
		Width(colWidth).
		Align(lipgloss.Center)
	header := headerStyle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(issues)))

	visible := issues
	overflow := 0
	if len(issues) > maxCardsPerColumn {
		visible = issues[:maxCardsPerColumn]
		overflow = len(issues) - maxCardsPerColumn
	}

	parts := make([]string, 0, len(visible)+2)
	parts = append(parts, header)
	for _, issue := range visible {
		parts = append(parts, renderColorCard(issue, colWidth, contentWidth))
	}
	if overflow > 0 {
		moreStyle := lipgloss.NewStyle().
			Width(colWidth).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("8"))
		parts = append(parts, moreStyle.Render(fmt.Sprintf("+%d more", overflow)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderColorCard(issue *models.Issue, colWidth, contentWidth int) string {
	marker := lipgloss.NewStyle().
		Foreground(priorityColor(issue.Priority)).
		Render(priorityMarker(issue.Priority))
	line1 := fmt.Sprintf("%s %s %s", issue.Type.Icon(), marker, truncate(issue.Title, contentWidth-5))

	lines := []string{line1}
	if issue.Assignee != nil && issue.Assignee.Name != "" {
		lines = append(lines, truncate("@"+issue.Assignee.Name, contentWidth))
	}
	if issue.DueDate != nil {
		due := "due " + humanize.Time(*issue.DueDate)
		if issue.Overdue(time.Now()) {
			due = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(due)
		}
		lines = append(lines, due)
	}

	cardStyle := lipgloss.NewStyle().
		Width(colWidth - 2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(statusColor(issue.Status))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// --- Plain text fallback ---

func renderPlainBoard(issues []*models.Issue) string {
	groups := groupByStatus(issues)

	var b strings.Builder
	for i, status := range models.StatusOrder {
		if i > 0 {
			b.WriteString("\n")
		}
		col := groups[status]
		fmt.Fprintf(&b, "=== %s (%d) ===\n", status.Label(), len(col))

		visible := col
		overflow := 0
		if len(col) > maxCardsPerColumn {
			visible = col[:maxCardsPerColumn]
			overflow = len(col) - maxCardsPerColumn
		}
		for _, issue := range visible {
			renderPlainCard(&b, issue)
		}
		if overflow > 0 {
			fmt.Fprintf(&b, "  +%d more\n", overflow)
		}
	}
	return b.String()
}

func renderPlainCard(b *strings.Builder, issue *models.Issue) {
	fmt.Fprintf(b, "  [%s] (%s) %s\n", issue.Priority, issue.Type, truncate(issue.Title, maxTitleWidth))
	if issue.Assignee != nil && issue.Assignee.Name != "" {
		fmt.Fprintf(b, "    @%s\n", issue.Assignee.Name)
	}
	if issue.DueDate != nil {
		fmt.Fprintf(b, "    due %s\n", issue.DueDate.Format("2006-01-02"))
	}
}
