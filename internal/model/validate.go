package model

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError is returned when required fields are empty or a value is
// malformed. Nothing is persisted when it occurs.
type ValidationError struct {
	Section Section
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "missing required field(s): " + strings.Join(e.Missing, ", ")
}

// CheckRequired verifies that every required field of the item is non-empty
// after trimming.
func CheckRequired(it Item) error {
	var missing []string
	for _, f := range FieldsOf(it.Section()) {
		if !f.Required {
			continue
		}
		v, err := Value(it, f.Name)
		if err != nil {
			return err
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Section: it.Section(), Missing: missing}
	}
	return nil
}

// Normalize trims required fields and rewrites the due date of assignments
// to YYYY-MM-DD.
func Normalize(it Item) error {
	for _, f := range FieldsOf(it.Section()) {
		if !f.Required {
			continue
		}
		v, err := Value(it, f.Name)
		if err != nil {
			return err
		}
		if err := Set(it, f.Name, strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	if a, ok := it.(*Assignment); ok && a.Due != "" {
		d, err := ParseDue(a.Due)
		if err != nil {
			return &ValidationError{Section: SectionAssignments, Reason: "invalid due date format"}
		}
		a.Due = d
	}
	return nil
}

var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// dateLayout takes unpadded months and days too ("2025-5-1").
const dateLayout = "2006-1-2"

// ParseDue accepts a calendar date or an ISO datetime and returns the date
// part as YYYY-MM-DD.
func ParseDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "T") {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return "", err
		}
		return d.Format(time.DateOnly), nil
	}
	var lastErr error
	for _, layout := range dueLayouts {
		d, err := time.Parse(layout, s)
		if err == nil {
			return d.Format(time.DateOnly), nil
		}
		lastErr = err
	}
	return "", lastErr
}

// Merge applies an edited draft onto the stored item. Required fields left
// empty keep their stored value; optional fields take the draft value. The
// shared id and creation time always come from the stored item.
func Merge(stored, draft Item) (Item, error) {
	if stored.Section() != draft.Section() {
		return nil, fmt.Errorf("merge %s draft into %s item", draft.Section(), stored.Section())
	}
	patch := draft.Clone()
	if err := Normalize(patch); err != nil {
		return nil, err
	}
	out := stored.Clone()
	for _, f := range FieldsOf(out.Section()) {
		v, err := Value(patch, f.Name)
		if err != nil {
			return nil, err
		}
		if f.Required && v == "" {
			continue
		}
		if err := Set(out, f.Name, v); err != nil {
			return nil, err
		}
	}
	if t, ok := out.(*Todo); ok {
		t.Completed = patch.(*Todo).Completed
	}
	return out, nil
}
