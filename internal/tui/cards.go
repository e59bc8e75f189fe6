package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/cardboard/internal/render"
)

// cardItem adapts a render.Card to bubbles/list.Item
type cardItem struct{ card render.Card }

func (i cardItem) FilterValue() string { return i.card.Title }

func cardItems(cards []render.Card) []list.Item {
	out := make([]list.Item, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardItem{card: c})
	}
	return out
}

const metaLines = 2

// cardDelegate draws a title row and up to two metadata rows per card.
type cardDelegate struct{}

func (d cardDelegate) Height() int                               { return 1 + metaLines }
func (d cardDelegate) Spacing() int                              { return 1 }
func (d cardDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(cardItem)
	if !ok {
		return
	}
	c := it.card
	width := m.Width() - 4
	if width < 10 {
		width = 10
	}

	mark := mutedStyle.Render(bullet)
	title := c.Title
	if c.Section.Toggleable() {
		mark = mutedStyle.Render(boxUnchecked)
		if c.Done {
			mark = successStyle.Render(boxChecked)
			title = doneStyle.Render(title)
		}
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	lines := []string{prefix + mark + " " + title}

	for _, ln := range c.Meta {
		if len(lines) > metaLines {
			break
		}
		lines = append(lines, "    "+metaLine(ln))
	}
	for len(lines) < 1+metaLines {
		lines = append(lines, "")
	}
	for i, ln := range lines {
		lines[i] = ansi.Truncate(ln, width, "…")
	}
	fmt.Fprint(w, strings.Join(lines, "\n"))
}

func metaLine(l render.Line) string {
	var parts []string
	if l.Strong != "" {
		parts = append(parts, titleStyle.Render(l.Strong))
	}
	if l.Text != "" {
		text := l.Text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i] + " …"
		}
		parts = append(parts, mutedStyle.Render(text))
	}
	if l.URL != "" {
		parts = append(parts, linkStyle.Render(l.URL))
	}
	return strings.Join(parts, " ")
}
