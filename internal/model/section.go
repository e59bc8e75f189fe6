package model

import (
	"errors"
	"fmt"
)

// Section names one of the independent item lists on the dashboard.
type Section string

const (
	SectionTodo        Section = "todo"
	SectionLinks       Section = "links"
	SectionAssignments Section = "assignments"
	SectionJobs        Section = "jobs"
)

// Sections lists every section in display order.
var Sections = []Section{SectionTodo, SectionLinks, SectionAssignments, SectionJobs}

var ErrUnknownSection = errors.New("unknown section")

// ParseSection accepts a section name exactly as written; "TODO" is not
// a section.
func ParseSection(s string) (Section, error) {
	sec := Section(s)
	if !sec.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return sec, nil
}

func (s Section) Valid() bool {
	switch s {
	case SectionTodo, SectionLinks, SectionAssignments, SectionJobs:
		return true
	}
	return false
}

// Label is the human heading for the section.
func (s Section) Label() string {
	switch s {
	case SectionTodo:
		return "Tasks"
	case SectionLinks:
		return "Links"
	case SectionAssignments:
		return "Assignments"
	case SectionJobs:
		return "Jobs"
	}
	return string(s)
}

// Toggleable reports whether items of the section carry a completed flag.
func (s Section) Toggleable() bool { return s == SectionTodo }
