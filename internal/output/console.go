package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const separatorWidth = 60

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Border(lipgloss.DoubleBorder()).Padding(0, 2)
	errorHeaderStyle = headerStyle.BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9"))
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Console renders human-readable output: header boxes, separators, tables
// and plain lines.
type Console struct {
	w     io.Writer
	pause time.Duration
}

// NewConsole writes to w. A non-zero pause is slept around status messages
// when the caller asks for it; use zero for non-interactive output.
func NewConsole(w io.Writer, pause time.Duration) *Console {
	return &Console{w: w, pause: pause}
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer { return c.w }

// Header prints title inside a double-line box.
func (c *Console) Header(title string) {
	_, _ = fmt.Fprintln(c.w, headerStyle.Render(title))
}

// ErrorHeader prints the failure banner.
func (c *Console) ErrorHeader() {
	_, _ = fmt.Fprintln(c.w, errorHeaderStyle.Render("Error!"))
}

// Separator prints a horizontal rule.
func (c *Console) Separator() {
	_, _ = fmt.Fprintln(c.w, strings.Repeat("─", separatorWidth))
}

// Printf prints a formatted line.
func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.w, format+"\n", args...)
}

// Field prints an aligned "label: value" line.
func (c *Console) Field(label, value string) {
	_, _ = fmt.Fprintf(c.w, "%-16s %s\n", label+":", value)
}

// Table renders rows under headers with a rounded border.
func (c *Console) Table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	_, _ = fmt.Fprintln(c.w, t.Render())
}

// Pause sleeps for the configured pause.
func (c *Console) Pause() {
	if c.pause > 0 {
		time.Sleep(c.pause)
	}
}
