package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Field describes one editable form field of a section.
type Field struct {
	Name      string
	Label     string
	Required  bool
	Multiline bool
}

var sectionFields = map[Section][]Field{
	SectionTodo: {
		{Name: "title", Label: "Title", Required: true},
		{Name: "description", Label: "Description", Multiline: true},
	},
	SectionLinks: {
		{Name: "title", Label: "Title", Required: true},
		{Name: "url", Label: "URL", Required: true},
		{Name: "description", Label: "Description", Multiline: true},
	},
	SectionAssignments: {
		{Name: "subject", Label: "Subject", Required: true},
		{Name: "title", Label: "Title", Required: true},
		{Name: "due", Label: "Due (YYYY-MM-DD)", Required: true},
		{Name: "description", Label: "Description", Multiline: true},
	},
	SectionJobs: {
		{Name: "job_title", Label: "Job title", Required: true},
		{Name: "company", Label: "Company", Required: true},
		{Name: "requirements", Label: "Requirements", Multiline: true},
		{Name: "you_do", Label: "What you do", Multiline: true},
	},
}

// FieldsOf returns the form fields of a section in form order.
func FieldsOf(section Section) []Field {
	return append([]Field(nil), sectionFields[section]...)
}

// UnknownFieldError reports a field name the section does not declare.
type UnknownFieldError struct {
	Section Section
	Name    string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Section, e.Name)
}

// Value reads a form field of an item as text.
func Value(it Item, name string) (string, error) {
	p, err := fieldPtr(it, name)
	if err != nil {
		if v, ok := it.(*Todo); ok && name == "completed" {
			return strconv.FormatBool(v.Completed), nil
		}
		return "", err
	}
	return *p, nil
}

// Set writes a form field of an item. "link" is accepted for "url" and
// "completed" for todos, mirroring the wire format.
func Set(it Item, name, value string) error {
	if v, ok := it.(*Todo); ok && name == "completed" {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("completed: %w", err)
		}
		v.Completed = b
		return nil
	}
	if _, ok := it.(*Link); ok && name == "link" {
		name = "url"
	}
	p, err := fieldPtr(it, name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func fieldPtr(it Item, name string) (*string, error) {
	switch v := it.(type) {
	case *Todo:
		switch name {
		case "title":
			return &v.Title, nil
		case "description":
			return &v.Description, nil
		}
	case *Link:
		switch name {
		case "title":
			return &v.Title, nil
		case "description":
			return &v.Description, nil
		case "url":
			return &v.URL, nil
		}
	case *Assignment:
		switch name {
		case "subject":
			return &v.Subject, nil
		case "title":
			return &v.Title, nil
		case "description":
			return &v.Description, nil
		case "due":
			return &v.Due, nil
		}
	case *Job:
		switch name {
		case "job_title":
			return &v.JobTitle, nil
		case "company":
			return &v.Company, nil
		case "requirements":
			return &v.Requirements, nil
		case "you_do":
			return &v.YouDo, nil
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownSection, it)
	}
	return nil, &UnknownFieldError{Section: it.Section(), Name: name}
}
