package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/form"
	"github.com/Makepad-fr/cardboard/internal/model"
)

type ActionKind string

const (
	ActionOpen   ActionKind = "open"
	ActionEdit   ActionKind = "edit"
	ActionCancel ActionKind = "cancel"
	ActionSave   ActionKind = "save"
	ActionDelete ActionKind = "delete"
	ActionToggle ActionKind = "toggle"
	ActionReload ActionKind = "reload"
)

// Action is a user intent addressed to a section, and to an item for the
// kinds that need one (edit, delete, toggle).
type Action struct {
	Kind    ActionKind
	Section model.Section
	ID      int
}

func (a Action) String() string {
	if a.ID != 0 {
		return fmt.Sprintf("%s %s/%d", a.Kind, a.Section, a.ID)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Section)
}

// Result tells the caller what changed. Refreshed is the section that was
// re-rendered, if any; Form is the form state after the action.
type Result struct {
	Refreshed model.Section
	Form      form.State
}

type handler func(ctx context.Context, a Action) (model.Section, error)

func (d *Dashboard) dispatchTable() map[ActionKind]handler {
	return map[ActionKind]handler{
		ActionOpen: func(_ context.Context, a Action) (model.Section, error) {
			return "", d.form.OpenCreate(a.Section)
		},
		ActionEdit: func(ctx context.Context, a Action) (model.Section, error) {
			return "", d.form.OpenEdit(ctx, a.Section, a.ID)
		},
		ActionCancel: func(context.Context, Action) (model.Section, error) {
			d.form.Cancel()
			return "", nil
		},
		ActionSave: func(ctx context.Context, _ Action) (model.Section, error) {
			section, _, err := d.form.Save(ctx)
			if err != nil {
				return "", err
			}
			return section, nil
		},
		ActionDelete: func(ctx context.Context, a Action) (model.Section, error) {
			if err := d.store.Delete(ctx, a.Section, a.ID); err != nil {
				return "", fmt.Errorf("delete failed: %w", err)
			}
			return a.Section, nil
		},
		ActionToggle: func(ctx context.Context, a Action) (model.Section, error) {
			if _, err := d.store.Toggle(ctx, a.Section, a.ID); err != nil {
				return "", fmt.Errorf("toggle failed: %w", err)
			}
			return a.Section, nil
		},
		ActionReload: func(_ context.Context, a Action) (model.Section, error) {
			return a.Section, nil
		},
	}
}

// Dispatch runs one action: at most one store mutation followed by one
// reload of the affected section. On error nothing visible changes.
func (d *Dashboard) Dispatch(ctx context.Context, a Action) (Result, error) {
	d.run.Lock()
	defer d.run.Unlock()

	h, ok := d.handlers[a.Kind]
	if !ok {
		return Result{Form: d.form.State()}, fmt.Errorf("unknown action %q", a.Kind)
	}
	if a.Kind != ActionSave && a.Kind != ActionCancel && !a.Section.Valid() {
		return Result{Form: d.form.State()}, fmt.Errorf("%w: %q", model.ErrUnknownSection, a.Section)
	}

	refresh, err := h(ctx, a)
	if err != nil {
		d.log.Debug("action failed", zap.Stringer("action", a), zap.Error(err))
		return Result{Form: d.form.State()}, err
	}
	res := Result{Form: d.form.State()}
	if refresh != "" {
		if err := d.reload(ctx, refresh); err != nil {
			return res, err
		}
		res.Refreshed = refresh
	}
	d.log.Debug("action done", zap.Stringer("action", a))
	return res, nil
}

// FormSnapshot describes the open form for presenters.
type FormSnapshot struct {
	State   form.State
	Section model.Section
	ID      int
	Fields  []model.Field
	Values  map[string]string
}

func (d *Dashboard) Form() FormSnapshot {
	d.run.Lock()
	defer d.run.Unlock()
	return FormSnapshot{
		State:   d.form.State(),
		Section: d.form.Section(),
		ID:      d.form.EditingID(),
		Fields:  d.form.Fields(),
		Values:  d.form.Values(),
	}
}

// SetField writes one value of the open form.
func (d *Dashboard) SetField(name, value string) error {
	d.run.Lock()
	defer d.run.Unlock()
	return d.form.Set(name, value)
}
