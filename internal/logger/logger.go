// Package logger prints tagged, colored status lines to stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tagStyle     = lipgloss.NewStyle().Bold(true).Width(8)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	statKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	bannerStyle  = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// output overrides stdout when set.
var output io.Writer

// SetOutput redirects log lines to w; nil restores stdout. The MCP server
// uses it to keep stdout free for the protocol.
func SetOutput(w io.Writer) { output = w }

func writer() io.Writer {
	if output != nil {
		return output
	}
	return os.Stdout
}

func line(style lipgloss.Style, symbol, tag, msg string) {
	fmt.Fprintf(writer(), "%s %s %s %s\n",
		timeStyle.Render(time.Now().Format("15:04:05")),
		style.Render(symbol),
		tagStyle.Render(tag),
		msg,
	)
}

// Info logs an informational message.
func Info(tag, msg string) { line(infoStyle, "•", tag, msg) }

// Success logs a completed step.
func Success(tag, msg string) { line(successStyle, "✓", tag, msg) }

// Warn logs a recoverable problem.
func Warn(tag, msg string) { line(warnStyle, "!", tag, msg) }

// Error logs a failure. It never exits; callers decide.
func Error(tag, msg string) { line(errorStyle, "✗", tag, msg) }

// Section prints a heading for a block of Stats lines.
func Section(title string) {
	fmt.Fprintln(writer(), sectionStyle.Render("── "+title+" "+strings.Repeat("─", max(0, 30-len(title)))))
}

// Stats prints one "key  value" line with a thousands-separated count.
func Stats(key string, value int) {
	fmt.Fprintf(writer(), "   %s %s\n", statKeyStyle.Render(key), humanize.Comma(int64(value)))
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Fprintln(writer(), bannerStyle.Render("EVE Frontier Toolbox "+version))
}

// Server logs the listen address.
func Server(addr string) {
	Success("Server", fmt.Sprintf("Listening on http://%s", addr))
}
