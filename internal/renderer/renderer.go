// Package renderer formats prompts for terminal display.
package renderer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/kartikmehra/flowprompt/internal/models"
)

// Renderer turns prompt content into styled terminal output.
type Renderer struct {
	term *glamour.TermRenderer
}

// New creates a renderer wrapping markdown at the given width.
func New(wordWrap int) (*Renderer, error) {
	if wordWrap <= 0 {
		wordWrap = 80
	}

	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return &Renderer{term: term}, nil
}

// RenderMarkdown renders prompt content as styled markdown.
func (r *Renderer) RenderMarkdown(p models.Prompt) (string, error) {
	out, err := r.term.Render(p.Content)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt content: %w", err)
	}
	return out, nil
}

// RenderDetail renders a full plain-text view of the prompt: header,
// metadata, content. Used by the headless CLI where styling is off.
func RenderDetail(p models.Prompt, categoryName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "ID:       %s\n", p.ID)
	if categoryName != "" {
		fmt.Fprintf(&b, "Category: %s\n", categoryName)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	if p.UseCount > 0 {
		fmt.Fprintf(&b, "Used:     %d times\n", p.UseCount)
	}
	if p.LastUsedAt != nil {
		fmt.Fprintf(&b, "Last use: %s\n", p.LastUsedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "\n%s\n", p.Content)

	return b.String()
}
