// Package output prints CLI results: colored status lines on stderr, JSON on
// stdout, and the small tables and trees the commands render.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/jobdesk/internal/models"
)

var (
	// Stdout and Stderr are swapped out by tests.
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Success prints a confirmation line.
func Success(format string, args ...any) {
	fmt.Fprintln(Stdout, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Warning prints a non-fatal problem to stderr.
func Warning(format string, args ...any) {
	fmt.Fprintln(Stderr, warningStyle.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

// Error prints a failure to stderr.
func Error(format string, args ...any) {
	fmt.Fprintln(Stderr, errorStyle.Render("error:")+" "+fmt.Sprintf(format, args...))
}

// JSON writes v as indented JSON.
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSONError writes an error object in the same shape the HTTP API uses.
func JSONError(code, message string) error {
	return JSON(map[string]any{
		"ok":    false,
		"error": map[string]string{"code": code, "message": message},
	})
}

// FormatStatus renders a status as "[label]".
func FormatStatus(s models.Status) string {
	if s == "" {
		return ""
	}
	return mutedStyle.Render("[" + string(s) + "]")
}

// FormatTimeAgo renders t relative to now.
func FormatTimeAgo(t time.Time) string {
	return formatTimeAgo(t, time.Now())
}

func formatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < 0 {
		return "in the future"
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
