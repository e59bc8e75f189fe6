package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Meta holds the fields every item shares. The store owns both of them.
type Meta struct {
	ID        int       `json:"id"`
	CreatedAt Timestamp `json:"created_at,omitzero"`
}

// Base gives stores access to the shared fields of any variant.
func (m *Meta) Base() *Meta { return m }

// Item is one entry of a section. The concrete type is one of
// *Todo, *Link, *Assignment or *Job.
type Item interface {
	Section() Section
	Base() *Meta
	Clone() Item
}

type Todo struct {
	Meta
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type Link struct {
	Meta
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type Assignment struct {
	Meta
	Subject     string `json:"subject"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Due         string `json:"due"` // YYYY-MM-DD
}

type Job struct {
	Meta
	JobTitle     string `json:"job_title"`
	Company      string `json:"company"`
	Requirements string `json:"requirements"`
	YouDo        string `json:"you_do"`
}

func (*Todo) Section() Section       { return SectionTodo }
func (*Link) Section() Section       { return SectionLinks }
func (*Assignment) Section() Section { return SectionAssignments }
func (*Job) Section() Section        { return SectionJobs }

func (t *Todo) Clone() Item       { c := *t; return &c }
func (l *Link) Clone() Item       { c := *l; return &c }
func (a *Assignment) Clone() Item { c := *a; return &c }
func (j *Job) Clone() Item        { c := *j; return &c }

// UnmarshalJSON accepts "link" as an alias of "url"; the web form posts it
// under that name. Decoding onto an existing value keeps absent keys.
func (l *Link) UnmarshalJSON(b []byte) error {
	type plain Link
	aux := struct {
		*plain
		Link *string `json:"link"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Link != nil && strings.TrimSpace(*aux.Link) != "" {
		l.URL = *aux.Link
	}
	return nil
}

// New returns an empty item of the section's variant.
func New(section Section) (Item, error) {
	switch section {
	case SectionTodo:
		return &Todo{}, nil
	case SectionLinks:
		return &Link{}, nil
	case SectionAssignments:
		return &Assignment{}, nil
	case SectionJobs:
		return &Job{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

// Decode parses one JSON object as an item of the given section.
func Decode(section Section, b []byte) (Item, error) {
	it, err := New(section)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, it); err != nil {
		return nil, fmt.Errorf("decode %s item: %w", section, err)
	}
	return it, nil
}

// DecodeList parses a JSON array of items of the given section.
// A nil or empty input decodes to an empty list.
func DecodeList(section Section, b []byte) ([]Item, error) {
	if len(b) == 0 {
		return []Item{}, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", section, err)
	}
	out := make([]Item, 0, len(raws))
	for _, raw := range raws {
		it, err := Decode(section, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// Title is the display title of an item: title, else job title, else
// subject, else "Untitled".
func Title(it Item) string {
	var candidates []string
	switch v := it.(type) {
	case *Todo:
		candidates = []string{v.Title}
	case *Link:
		candidates = []string{v.Title}
	case *Assignment:
		candidates = []string{v.Title, v.Subject}
	case *Job:
		candidates = []string{v.JobTitle}
	}
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return "Untitled"
}
