// Package render turns items into cards.
//
// NewCard is pure: it only reads the item. Presenters (HTML here, the TUI and
// the CLI elsewhere) decide how a Card is drawn.
package render

import (
	"strings"

	"github.com/Makepad-fr/cardboard/internal/model"
)

type ControlKind string

const (
	ControlToggle ControlKind = "toggle"
	ControlEdit   ControlKind = "edit"
	ControlDelete ControlKind = "delete"
)

// Control is an action button on a card.
type Control struct {
	Kind  ControlKind
	Label string
}

// Line is one row of a card's metadata block. Strong is shown emphasised
// before Text; URL, when set, is shown as a link.
type Line struct {
	Strong string
	Text   string
	URL    string
}

type Card struct {
	Section  model.Section
	ID       int
	Title    string
	Done     bool
	Meta     []Line
	Controls []Control
}

// NewCard builds the card of an item.
func NewCard(it model.Item) Card {
	c := Card{
		Section: it.Section(),
		ID:      it.Base().ID,
		Title:   model.Title(it),
	}

	switch v := it.(type) {
	case *model.Todo:
		c.Done = v.Completed
		c.Meta = appendText(c.Meta, v.Description)
		status := "Pending"
		if v.Completed {
			status = "Done"
		}
		c.Meta = append(c.Meta, Line{Text: "Status: " + status})
	case *model.Link:
		c.Meta = appendText(c.Meta, v.Description)
		if strings.TrimSpace(v.URL) != "" {
			c.Meta = append(c.Meta, Line{URL: v.URL})
		}
	case *model.Assignment:
		c.Meta = append(c.Meta, Line{Strong: v.Subject, Text: v.Title})
		c.Meta = appendText(c.Meta, v.Description)
		if v.Due != "" {
			c.Meta = append(c.Meta, Line{Text: "Due: " + v.Due})
		}
	case *model.Job:
		c.Meta = append(c.Meta, Line{Strong: v.JobTitle, Text: "• " + v.Company})
		c.Meta = appendText(c.Meta, v.Requirements)
	}

	if c.Section.Toggleable() {
		label := "Mark Done"
		if c.Done {
			label = "Mark Pending"
		}
		c.Controls = append(c.Controls, Control{Kind: ControlToggle, Label: label})
	}
	c.Controls = append(c.Controls,
		Control{Kind: ControlEdit, Label: "Edit"},
		Control{Kind: ControlDelete, Label: "Delete"},
	)
	return c
}

// NewCards renders items in order.
func NewCards(items []model.Item) []Card {
	out := make([]Card, 0, len(items))
	for _, it := range items {
		out = append(out, NewCard(it))
	}
	return out
}

func appendText(lines []Line, s string) []Line {
	if strings.TrimSpace(s) == "" {
		return lines
	}
	return append(lines, Line{Text: s})
}

// Placeholder is the empty-state message of a section.
func Placeholder(section model.Section) string {
	switch section {
	case model.SectionTodo:
		return "No tasks yet — add one using the + Add button."
	case model.SectionLinks:
		return "No saved links yet."
	case model.SectionAssignments:
		return "No assignments yet."
	case model.SectionJobs:
		return "No job applications yet."
	}
	return "Nothing here yet."
}
