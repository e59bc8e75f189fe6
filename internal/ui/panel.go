// Package ui draws the plain-terminal output of the command line: framed
// panels, card listings and status lines.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/render"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel draws a framed box using the current theme. Widths are measured in
// terminal cells, ignoring escape sequences.
func Panel(w io.Writer, lines []string) {
	t := current
	maxw := 0
	for _, ln := range lines {
		if n := ansi.StringWidth(ln); n > maxw {
			maxw = n
		}
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		pad := maxw - ansi.StringWidth(ln)
		fmt.Fprintln(w, t.V+" "+ln+strings.Repeat(" ", pad)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

const maxLine = 72

func truncate(s string) string { return ansi.Truncate(s, maxLine, "…") }

// CardLines renders one card as panel lines: an id and title row, then its
// metadata indented below.
func CardLines(c render.Card) []string {
	t := current
	mark := t.SymUnchecked
	color := t.Muted
	if c.Section.Toggleable() {
		mark = t.BoxUnchecked
		if c.Done {
			mark, color = t.BoxChecked, t.Success
		}
	}
	title := c.Title
	if c.Done {
		title = C(t.Muted, title)
	}
	lines := []string{truncate(fmt.Sprintf("%s %s %s",
		C(dim, fmt.Sprintf("#%-3d", c.ID)), C(color, mark), title))}

	for _, m := range c.Meta {
		var parts []string
		if m.Strong != "" {
			parts = append(parts, C(t.Strong, m.Strong))
		}
		if m.Text != "" {
			parts = append(parts, m.Text)
		}
		if m.URL != "" {
			parts = append(parts, C(t.Link, m.URL))
		}
		for i, ln := range strings.Split(strings.Join(parts, " "), "\n") {
			if i > 0 && strings.TrimSpace(ln) == "" {
				continue
			}
			lines = append(lines, truncate("      "+ln))
		}
	}
	return lines
}

// SectionLines renders a whole section: header, todo progress, cards or the
// empty-state placeholder.
func SectionLines(sp render.SectionPage) []string {
	t := current
	header := C(t.Title, sp.Label)
	var lines []string
	if sp.Section.Toggleable() {
		done := 0
		for _, c := range sp.Cards {
			if c.Done {
				done++
			}
		}
		pending := len(sp.Cards) - done
		header = fmt.Sprintf("%s  %s %d  %s %d  %s %d", header,
			C(t.Success, t.SymDone), done,
			C(t.Pending, t.SymUnchecked), pending,
			C(t.Accent, "Total"), len(sp.Cards))
		lines = append(lines, header, C(t.Muted, ProgressBar(done, len(sp.Cards), 28)))
	} else {
		lines = append(lines, fmt.Sprintf("%s  %s %d", header, C(t.Accent, "Total"), len(sp.Cards)))
	}
	lines = append(lines, "")
	if len(sp.Cards) == 0 {
		return append(lines, C(t.Muted, sp.Placeholder))
	}
	for i, c := range sp.Cards {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, CardLines(c)...)
	}
	return lines
}

// ItemLines prints every field of one item, in form order.
func ItemLines(it model.Item) []string {
	t := current
	c := render.NewCard(it)
	lines := []string{fmt.Sprintf("%s %s", C(t.Title, model.Title(it)), C(dim, fmt.Sprintf("#%d", c.ID)))}
	for _, f := range model.FieldsOf(it.Section()) {
		v, _ := model.Value(it, f.Name)
		if v == "" {
			v = C(t.Muted, "—")
		}
		lines = append(lines, fmt.Sprintf("%s %s", C(t.Accent, f.Label+":"), v))
	}
	if todo, ok := it.(*model.Todo); ok {
		status := C(t.Pending, "Pending")
		if todo.Completed {
			status = C(t.Success, "Done")
		}
		lines = append(lines, fmt.Sprintf("%s %s", C(t.Accent, "Status:"), status))
	}
	if ts := it.Base().CreatedAt; !ts.IsZero() {
		lines = append(lines, C(t.Muted, "created "+ts.Local().Format("2006-01-02 15:04")))
	}
	return lines
}
