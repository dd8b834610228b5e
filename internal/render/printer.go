package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/guilhermegouw/atelier/internal/conversation"
	"github.com/guilhermegouw/atelier/internal/store"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// Printer writes styled conversation output.
type Printer struct {
	out   *termenv.Output
	theme *Theme
	md    *Markdown
	width int
}

// NewPrinter creates a printer on w. The color profile is detected from w
// and the environment, so output to a pipe is plain.
func NewPrinter(w io.Writer, width int) *Printer {
	if width <= 0 {
		width = DefaultWidth
	}
	out := termenv.NewOutput(w)
	theme := DefaultTheme()
	return &Printer{
		out:   out,
		theme: theme,
		md:    NewMarkdown(theme, out.Profile),
		width: width,
	}
}

// Theme returns the printer's theme.
func (p *Printer) Theme() *Theme {
	return p.theme
}

func (p *Printer) paint(s string, c colorful.Color) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(c.Hex()))
}

// Title prints a bold heading.
func (p *Printer) Title(s string) {
	fmt.Fprintln(p.out, p.paint(s, p.theme.Primary).Bold())
}

// Muted prints secondary information.
func (p *Printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(fmt.Sprintf(format, args...), p.theme.FgMuted))
}

// Success prints a confirmation.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(fmt.Sprintf(format, args...), p.theme.Success))
}

// Warn prints a warning.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(fmt.Sprintf(format, args...), p.theme.Warning))
}

// Plain prints unstyled text.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Message prints one chat message. Model replies are rendered as markdown.
func (p *Printer) Message(m conversation.Message) {
	if m.Author == conversation.AuthorUser {
		fmt.Fprintf(p.out, "%s %s\n", p.paint("you>", p.theme.Secondary).Bold(), m.Content)
		return
	}

	fmt.Fprintln(p.out, p.paint("gemini>", p.theme.Accent).Bold())
	rendered, err := p.md.Render(m.Content, p.width)
	if err != nil {
		fmt.Fprintln(p.out, m.Content)
		return
	}
	fmt.Fprint(p.out, rendered)
}

// Summary prints one row of a conversation listing.
func (p *Printer) Summary(s store.Summary) {
	star := " "
	if s.IsFavorite {
		star = p.paint("*", p.theme.Warning).String()
	}

	meta := fmt.Sprintf("%s · %s · %s", kindLabel(s.Kind), entriesLabel(s), FormatRelativeTime(s.UpdatedAt))
	maxTitle := p.width - ansi.StringWidth(meta) - len(s.ID) - 6
	title := Truncate(strings.ReplaceAll(s.Title, "\n", " "), maxTitle)

	fmt.Fprintf(p.out, "%s %s  %s  %s\n",
		star,
		p.paint(s.ID, p.theme.FgSubtle),
		p.paint(title, p.theme.FgBase),
		p.paint(meta, p.theme.FgMuted),
	)
}

// Truncate shortens s to at most width terminal cells, ending in "...".
func Truncate(s string, width int) string {
	if width <= 3 {
		return strings.Repeat(".", max(width, 0))
	}
	return ansi.Truncate(s, width, "...")
}

func kindLabel(k conversation.Kind) string {
	switch k {
	case conversation.KindChat:
		return "chat"
	case conversation.KindImageGeneration:
		return "generate"
	case conversation.KindImageEditing:
		return "edit"
	default:
		return string(k)
	}
}

func entriesLabel(s store.Summary) string {
	unit := "entries"
	switch s.Kind {
	case conversation.KindChat:
		unit = "msgs"
	case conversation.KindImageGeneration:
		unit = "prompts"
	case conversation.KindImageEditing:
		unit = "edits"
	}
	return fmt.Sprintf("%d %s", s.Entries, unit)
}

// FormatRelativeTime formats a time as a relative string.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2")
	}
}
