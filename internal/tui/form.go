package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/cardboard/internal/dashboard"
	"github.com/Makepad-fr/cardboard/internal/form"
	"github.com/Makepad-fr/cardboard/internal/model"
)

// input is one form field; multiline fields use area, the rest line.
type input struct {
	field model.Field
	line  textinput.Model
	area  textarea.Model
}

func newInput(f model.Field, value string) input {
	in := input{field: f}
	if f.Multiline {
		in.area = textarea.New()
		in.area.ShowLineNumbers = false
		in.area.CharLimit = 0
		in.area.SetWidth(56)
		in.area.SetHeight(4)
		in.area.SetValue(value)
		in.area.Blur()
		return in
	}
	in.line = textinput.New()
	in.line.Prompt = "> "
	in.line.CharLimit = 500
	in.line.Width = 54
	in.line.SetValue(value)
	in.line.CursorEnd()
	return in
}

func (in *input) value() string {
	if in.field.Multiline {
		return in.area.Value()
	}
	return in.line.Value()
}

func (in *input) focus() tea.Cmd {
	if in.field.Multiline {
		return in.area.Focus()
	}
	return in.line.Focus()
}

func (in *input) blur() {
	if in.field.Multiline {
		in.area.Blur()
		return
	}
	in.line.Blur()
}

func (in *input) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if in.field.Multiline {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.line, cmd = in.line.Update(msg)
	}
	return cmd
}

func (in *input) view() string {
	if in.field.Multiline {
		return in.area.View()
	}
	return in.line.View()
}

// formView is the open form overlay, built from a dashboard form snapshot.
type formView struct {
	state   form.State
	section model.Section
	id      int
	inputs  []input
	focused int
	err     string
}

func newFormView(s dashboard.FormSnapshot) *formView {
	f := &formView{state: s.State, section: s.Section, id: s.ID}
	for _, fld := range s.Fields {
		f.inputs = append(f.inputs, newInput(fld, s.Values[fld.Name]))
	}
	return f
}

func (f *formView) values() map[string]string {
	out := make(map[string]string, len(f.inputs))
	for i := range f.inputs {
		out[f.inputs[i].field.Name] = f.inputs[i].value()
	}
	return out
}

func (f *formView) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focused].blur()
	f.focused = (f.focused + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focused].focus()
}

func (f *formView) focusFirst() tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focused = 0
	return f.inputs[0].focus()
}

func (f *formView) onLast() bool { return f.focused == len(f.inputs)-1 }

func (f *formView) current() *input { return &f.inputs[f.focused] }

func (f *formView) title() string {
	if f.state == form.Editing {
		return fmt.Sprintf("Edit %s #%d", singular(f.section), f.id)
	}
	return "Add " + singular(f.section)
}

func (f *formView) view(shake int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title()))
	b.WriteString("\n")
	for i := range f.inputs {
		in := &f.inputs[i]
		label := in.field.Label
		if in.field.Required {
			label += " *"
		}
		st := mutedStyle
		if i == f.focused {
			st = accentStyle
		}
		b.WriteString("\n" + st.Render(label) + "\n" + in.view() + "\n")
	}
	if f.err != "" {
		b.WriteString("\n" + errorStyle.Render(f.err) + "\n")
	}
	margin := 2 + shake
	if margin < 0 {
		margin = 0
	}
	return formStyle.MarginLeft(margin).Render(strings.TrimRight(b.String(), "\n"))
}

func singular(s model.Section) string {
	switch s {
	case model.SectionTodo:
		return "task"
	case model.SectionLinks:
		return "link"
	case model.SectionAssignments:
		return "assignment"
	case model.SectionJobs:
		return "job"
	}
	return "item"
}
