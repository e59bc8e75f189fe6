// Package form holds the add/edit form state shared by every section.
// Only one form can be open at a time.
package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
)

type State int

const (
	Closed State = iota
	Creating
	Editing
)

func (s State) String() string {
	switch s {
	case Creating:
		return "open-for-create"
	case Editing:
		return "open-for-edit"
	}
	return "closed"
}

var ErrClosed = errors.New("no form is open")

// Controller is the form state machine. It is not safe for concurrent use;
// the owner serialises calls.
type Controller struct {
	store   store.Store
	state   State
	section model.Section
	id      int
	draft   model.Item
}

func New(st store.Store) *Controller {
	return &Controller{store: st}
}

func (c *Controller) State() State           { return c.state }
func (c *Controller) Section() model.Section { return c.section }
func (c *Controller) EditingID() int         { return c.id }
func (c *Controller) IsOpen() bool           { return c.state != Closed }
func (c *Controller) Fields() []model.Field  { return model.FieldsOf(c.section) }

// Draft returns a copy of the values currently in the form.
func (c *Controller) Draft() model.Item {
	if c.draft == nil {
		return nil
	}
	return c.draft.Clone()
}

// OpenCreate opens an empty form for the section, closing any other form.
func (c *Controller) OpenCreate(section model.Section) error {
	draft, err := model.New(section)
	if err != nil {
		return err
	}
	c.state, c.section, c.id, c.draft = Creating, section, 0, draft
	return nil
}

// OpenEdit loads the item and opens the form populated with it. On failure
// the current state is left as it was.
func (c *Controller) OpenEdit(ctx context.Context, section model.Section, id int) error {
	it, err := c.store.Get(ctx, section, id)
	if err != nil {
		return fmt.Errorf("load item for edit: %w", err)
	}
	c.state, c.section, c.id, c.draft = Editing, section, id, it
	return nil
}

func (c *Controller) Cancel() {
	c.state, c.section, c.id, c.draft = Closed, "", 0, nil
}

// Set changes one field of the open form.
func (c *Controller) Set(name, value string) error {
	if !c.IsOpen() {
		return ErrClosed
	}
	return model.Set(c.draft, name, value)
}

func (c *Controller) Value(name string) (string, error) {
	if !c.IsOpen() {
		return "", ErrClosed
	}
	return model.Value(c.draft, name)
}

// Values returns every form field value keyed by field name.
func (c *Controller) Values() map[string]string {
	out := map[string]string{}
	if !c.IsOpen() {
		return out
	}
	for _, f := range c.Fields() {
		v, _ := model.Value(c.draft, f.Name)
		out[f.Name] = v
	}
	return out
}

// Save validates the form and creates or updates the item. A
// *model.ValidationError or a store failure leaves the form open and
// unchanged. On success the form closes and the saved item is returned
// together with the section that needs a refresh.
func (c *Controller) Save(ctx context.Context) (model.Section, model.Item, error) {
	if !c.IsOpen() {
		return "", nil, ErrClosed
	}
	if err := model.CheckRequired(c.draft); err != nil {
		return c.section, nil, err
	}

	var (
		saved model.Item
		err   error
	)
	switch c.state {
	case Creating:
		saved, err = c.store.Create(ctx, c.section, c.draft)
	case Editing:
		saved, err = c.store.Update(ctx, c.section, c.id, c.draft)
	}
	if err != nil {
		return c.section, nil, fmt.Errorf("save %s: %w", c.section, err)
	}
	section := c.section
	c.Cancel()
	return section, saved, nil
}
