package markdown

import (
	"github.com/charmbracelet/glamour"
)

// Renderer renders stored assistant messages when replaying a chat.
type Renderer struct {
	glamour *glamour.TermRenderer
}

// NewRenderer creates a renderer word-wrapped to the given width.
func NewRenderer(width int) (*Renderer, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{glamour: gr}, nil
}

// Render markdown content. Falls back to the raw content when rendering
// fails, so a replay never errors out over cosmetics.
func (r *Renderer) Render(content string) string {
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
