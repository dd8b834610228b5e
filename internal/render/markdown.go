package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// Markdown renders model replies. The underlying renderer is rebuilt only
// when the width changes.
type Markdown struct {
	theme   *Theme
	profile termenv.Profile

	mu          sync.RWMutex
	renderer    *glamour.TermRenderer
	cachedWidth int
}

// NewMarkdown creates a renderer for the given theme and color profile.
func NewMarkdown(theme *Theme, profile termenv.Profile) *Markdown {
	return &Markdown{theme: theme, profile: profile}
}

// Render renders markdown content. On failure the plain content is
// returned along with the error.
func (m *Markdown) Render(content string, width int) (string, error) {
	if content == "" {
		return "", nil
	}

	renderer, err := m.getRenderer(width)
	if err != nil {
		return content, err
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}

func (m *Markdown) getRenderer(width int) (*glamour.TermRenderer, error) {
	m.mu.RLock()
	if m.renderer != nil && m.cachedWidth == width {
		defer m.mu.RUnlock()
		return m.renderer, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer != nil && m.cachedWidth == width {
		return m.renderer, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(m.style()),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
		glamour.WithColorProfile(m.profile),
	)
	if err != nil {
		return nil, err
	}

	m.renderer = renderer
	m.cachedWidth = width
	return renderer, nil
}

func (m *Markdown) style() ansi.StyleConfig {
	t := m.theme
	style := glamourstyles.DarkStyleConfig

	style.H1.Color = stringPtr(t.Accent.Hex())
	style.H1.Bold = boolPtr(true)
	style.H1.Prefix = ""
	style.H1.Suffix = ""
	style.H2.Color = stringPtr(t.Primary.Hex())
	style.H2.Bold = boolPtr(true)
	style.H2.Prefix = ""
	style.H3.Color = stringPtr(t.Secondary.Hex())
	style.H3.Prefix = ""

	style.Code.Color = stringPtr(t.Secondary.Hex())
	style.CodeBlock.Chroma.Text.Color = stringPtr(t.FgBase.Hex())
	style.CodeBlock.Chroma.Keyword.Color = stringPtr(t.Primary.Hex())
	style.CodeBlock.Chroma.Comment.Color = stringPtr(t.FgMuted.Hex())
	style.CodeBlock.Chroma.NameFunction.Color = stringPtr(t.Accent.Hex())

	style.Link.Color = stringPtr(t.Primary.Hex())
	style.Link.Underline = boolPtr(true)
	style.LinkText.Color = stringPtr(t.Primary.Hex())

	style.BlockQuote.Color = stringPtr(t.FgMuted.Hex())
	style.BlockQuote.Italic = boolPtr(true)
	style.HorizontalRule.Color = stringPtr(t.FgSubtle.Hex())

	return style
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
