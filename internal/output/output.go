package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

// UI provides colored output and respects verbose mode. Its Success and
// Error methods are the CLI's transient notifications; board code talks
// to it through the board.Toaster interface.
type UI struct {
	Verbose bool
	In      io.Reader
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdin/stdout/stderr streams.
func New() *UI {
	return &UI{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// StatusColor returns the status label colored by board column.
func StatusColor(status models.IssueStatus) string {
	switch status {
	case models.IssueStatusOpen:
		return green(status.Label())
	case models.IssueStatusInProgress:
		return yellow(status.Label())
	case models.IssueStatusDone:
		return cyan(status.Label())
	}
	return string(status)
}

// PriorityColor returns the priority colored by urgency.
func PriorityColor(priority models.IssuePriority) string {
	switch priority {
	case models.IssuePriorityLow:
		return green(string(priority))
	case models.IssuePriorityMedium:
		return yellow(string(priority))
	case models.IssuePriorityHigh:
		return red(string(priority))
	case models.IssuePriorityUrgent:
		return red(color.New(color.Bold).Sprint(string(priority)))
	}
	return string(priority)
}

// ProgressColor returns an integer percentage colored by completion.
func ProgressColor(percent int) string {
	s := fmt.Sprintf("%d%%", percent)
	switch {
	case percent >= 80:
		return green(s)
	case percent >= 50:
		return yellow(s)
	default:
		return red(s)
	}
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

// Confirm asks a yes/no question and reads the answer from In. Anything
// but an explicit yes declines, including a closed stdin.
func (u *UI) Confirm(format string, a ...any) bool {
	fmt.Fprintf(u.Out, "%s %s [y/N]: ", warningPrefix, fmt.Sprintf(format, a...))
	line, err := bufio.NewReader(u.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
