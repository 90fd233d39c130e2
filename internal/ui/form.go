package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/things2do/pkg/models"
)

var (
	formTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	formLabelStyle = lipgloss.NewStyle().Width(18)
	formErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	formHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	fieldName = iota
	fieldDescription
	fieldImportanceStep
	fieldUrgencyStep
	fieldEndDate
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name",
	"Description",
	"Importance step",
	"Urgency step",
	"End date",
}

// FormValues is what a submitted form produced.
type FormValues struct {
	Name           string
	Description    string
	ImportanceStep float64
	UrgencyStep    float64
	EndDate        *time.Time
}

// FormModel edits the user-supplied fields of a task.
type FormModel struct {
	title     string
	inputs    []textinput.Model
	focus     int
	err       string
	submitted bool
	cancelled bool
}

func newForm(title string) FormModel {
	f := FormModel{title: title, inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		f.inputs[i] = ti
	}
	f.inputs[fieldName].Placeholder = "Task name"
	f.inputs[fieldImportanceStep].Placeholder = "0"
	f.inputs[fieldUrgencyStep].Placeholder = "0"
	f.inputs[fieldEndDate].Placeholder = models.DateLayout
	f.inputs[fieldName].Focus()
	return f
}

// NewAddForm is the empty form for a task placed at the given cell.
func NewAddForm(x, y int) FormModel {
	return newForm(fmt.Sprintf("Add task at (%d, %d)", x, y))
}

// NewEditForm is prefilled with t.
func NewEditForm(t models.Task) FormModel {
	f := newForm(fmt.Sprintf("Edit %s", t.Name))
	f.inputs[fieldName].SetValue(t.Name)
	f.inputs[fieldDescription].SetValue(t.Description)
	f.inputs[fieldImportanceStep].SetValue(strconv.FormatFloat(t.ImportanceStep, 'g', -1, 64))
	f.inputs[fieldUrgencyStep].SetValue(strconv.FormatFloat(t.UrgencyStep, 'g', -1, 64))
	if t.EndDate != nil {
		f.inputs[fieldEndDate].SetValue(t.EndDate.Format(models.DateLayout))
	}
	return f
}

func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch key.String() {
	case "esc":
		f.cancelled = true
		return f, nil

	case "tab", "down":
		return f.setFocus((f.focus + 1) % fieldCount), nil

	case "shift+tab", "up":
		return f.setFocus((f.focus + fieldCount - 1) % fieldCount), nil

	case "enter":
		if f.focus < fieldCount-1 {
			return f.setFocus(f.focus + 1), nil
		}
		if strings.TrimSpace(f.inputs[fieldName].Value()) == "" {
			f.err = models.ErrEmptyName.Error()
			return f.setFocus(fieldName), nil
		}
		f.err = ""
		f.submitted = true
		return f, nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f FormModel) setFocus(i int) FormModel {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
	return f
}

func (f FormModel) Submitted() bool { return f.submitted }
func (f FormModel) Cancelled() bool { return f.cancelled }

// Values parses the inputs. Non-numeric steps become zero and an invalid
// end date becomes no end date.
func (f FormModel) Values() FormValues {
	return FormValues{
		Name:           strings.TrimSpace(f.inputs[fieldName].Value()),
		Description:    f.inputs[fieldDescription].Value(),
		ImportanceStep: models.ParseStep(f.inputs[fieldImportanceStep].Value()),
		UrgencyStep:    models.ParseStep(f.inputs[fieldUrgencyStep].Value()),
		EndDate:        models.ParseEndDate(f.inputs[fieldEndDate].Value()),
	}
}

func (f FormModel) View() string {
	var s strings.Builder

	s.WriteString(formTitleStyle.Render(f.title))
	s.WriteString("\n\n")

	for i, in := range f.inputs {
		s.WriteString(formLabelStyle.Render(fieldLabels[i]))
		s.WriteString(in.View())
		s.WriteString("\n")
	}

	if f.err != "" {
		s.WriteString("\n")
		s.WriteString(formErrorStyle.Render(f.err))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(formHelpStyle.Render("(tab to move, enter on the last field to save, esc to cancel)"))
	s.WriteString("\n")

	return s.String()
}
