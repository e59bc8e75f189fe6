package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Makepad-fr/cardboard/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// SectionPage is one section as shown on the HTML dashboard.
type SectionPage struct {
	Section     model.Section
	Label       string
	Cards       []Card
	Placeholder string
}

// NewSectionPage renders the items of a section; the placeholder is only set
// when there are no items.
func NewSectionPage(section model.Section, items []model.Item) SectionPage {
	p := SectionPage{
		Section: section,
		Label:   section.Label(),
		Cards:   NewCards(items),
	}
	if len(p.Cards) == 0 {
		p.Placeholder = Placeholder(section)
	}
	return p
}

type Page struct {
	Title    string
	Sections []SectionPage
}

// WriteHTML writes the full dashboard page. html/template escapes all item
// text, and href values are escaped for the attribute context with unsafe
// schemes replaced.
func WriteHTML(w io.Writer, page Page) error {
	if err := pageTmpl.ExecuteTemplate(w, "dashboard", page); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// WriteSectionHTML writes the fragment of a single section.
func WriteSectionHTML(w io.Writer, sp SectionPage) error {
	if err := pageTmpl.ExecuteTemplate(w, "section", sp); err != nil {
		return fmt.Errorf("render %s: %w", sp.Section, err)
	}
	return nil
}
