package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/things2do/internal/board"
	"github.com/nick-dorsch/things2do/internal/ui/components"
	"github.com/nick-dorsch/things2do/pkg/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

type boardMode int

const (
	modeGrid boardMode = iota
	modeForm
	modeConfirmDelete
	modeDetails
)

// BoardModel is the interactive board. It holds only UI state; tasks live
// in the board.Board it was given.
type BoardModel struct {
	board    *board.Board
	interval time.Duration
	now      func() time.Time

	cursorX, cursorY int
	mode             boardMode

	form    FormModel
	editing string
	pending *models.Task

	list    *components.TaskList
	details *components.Details

	status   string
	quitting bool
}

func NewBoardModel(b *board.Board, interval time.Duration) BoardModel {
	if interval <= 0 {
		interval = board.DefaultInterval
	}
	mid := b.GridSize() / 2
	return BoardModel{
		board:    b,
		interval: interval,
		now:      time.Now,
		cursorX:  mid,
		cursorY:  mid,
		list:     components.NewTaskList(48),
		details:  components.NewDetails(48, 10),
		status:   "Press 'a' to add, 'e' to edit, 'd' to delete, enter for details.",
	}
}

func (m BoardModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m BoardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - (2*m.board.GridSize() + 4)
		if width < 30 {
			width = 30
		}
		m.list.Width = width
		m.details.SetSize(width, 10)
		return m, nil

	case tickMsg:
		moved := m.board.Tick(time.Time(msg))
		m.status = fmt.Sprintf("Daily update: %d task(s) moved", moved)
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg.String())
		case modeDetails:
			return m.updateDetails(msg)
		default:
			return m.updateGrid(msg.String())
		}
	}

	return m, nil
}

func (m BoardModel) updateGrid(key string) (tea.Model, tea.Cmd) {
	last := m.board.GridSize() - 1

	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.cursorX < last {
			m.cursorX++
		}
	case "up", "k":
		if m.cursorY > 0 {
			m.cursorY--
		}
	case "down", "j":
		if m.cursorY < last {
			m.cursorY++
		}

	case "a":
		if t, ok := m.board.TaskAt(m.cursorX, m.cursorY); ok {
			m.status = fmt.Sprintf("Cell taken by '%s', press 'e' to edit", t.Name)
			return m, nil
		}
		m.form = NewAddForm(m.cursorX, m.cursorY)
		m.editing = ""
		m.mode = modeForm

	case "e":
		t, ok := m.board.TaskAt(m.cursorX, m.cursorY)
		if !ok {
			m.status = "No task here"
			return m, nil
		}
		m.form = NewEditForm(t)
		m.editing = t.ID
		m.mode = modeForm

	case "d":
		t, ok := m.board.TaskAt(m.cursorX, m.cursorY)
		if !ok {
			m.status = "No task here"
			return m, nil
		}
		m.pending = &t
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete '%s'? (y/n)", t.Name)

	case "enter":
		t, ok := m.board.TaskAt(m.cursorX, m.cursorY)
		if !ok {
			m.status = "No task here"
			return m, nil
		}
		m.details.Show(m.board.View(&t))
		m.mode = modeDetails

	case "t":
		moved := m.board.Tick(m.now())
		m.status = fmt.Sprintf("Update: %d task(s) moved", moved)
	}

	return m, nil
}

func (m BoardModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)

	switch {
	case m.form.Cancelled():
		m.mode = modeGrid
		m.status = "Cancelled"
	case m.form.Submitted():
		m.mode = modeGrid
		m.status = m.applyForm(m.form.Values())
	}
	return m, cmd
}

func (m BoardModel) applyForm(v FormValues) string {
	if m.editing == "" {
		t := models.NewTask(v.Name, v.Description, float64(m.cursorX), float64(m.cursorY),
			v.ImportanceStep, v.UrgencyStep, v.EndDate, m.now())
		added, err := m.board.Add(t)
		if err != nil {
			return fmt.Sprintf("Add failed: %v", err)
		}
		return fmt.Sprintf("Added '%s'", added.Name)
	}

	updated, err := m.board.Update(m.editing, func(t *models.Task) {
		t.Name = v.Name
		t.Description = v.Description
		t.ImportanceStep = v.ImportanceStep
		t.UrgencyStep = v.UrgencyStep
		t.EndDate = v.EndDate
	})
	if errors.Is(err, board.ErrNotFound) {
		return "Task no longer exists"
	}
	if err != nil {
		return fmt.Sprintf("Edit failed: %v", err)
	}
	return fmt.Sprintf("Updated '%s'", updated.Name)
}

func (m BoardModel) updateConfirmDelete(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.board.Remove(m.pending.ID) {
			m.status = fmt.Sprintf("Deleted '%s'", m.pending.Name)
		} else {
			m.status = "Task no longer exists"
		}
	case "n", "N", "esc":
		m.status = "Cancelled"
	default:
		return m, nil
	}
	m.pending = nil
	m.mode = modeGrid
	return m, nil
}

func (m BoardModel) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.mode = modeGrid
		return m, nil
	}
	return m, m.details.Update(msg)
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	tasks := m.board.Tasks()
	grid := renderGrid(tasks, m.board.GridSize(), m.cursorX, m.cursorY)

	var side string
	switch m.mode {
	case modeForm:
		side = m.form.View()
	case modeDetails:
		side = titleStyle.Render("Task details") + "\n\n" + m.details.View()
	default:
		m.list.SetTasks(m.board.Views(true))
		m.list.Selected = ""
		if t, ok := m.board.TaskAt(m.cursorX, m.cursorY); ok {
			m.list.Selected = t.ID
		}
		side = m.list.View()
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("things2do"))
	s.WriteString(fmt.Sprintf("  cursor (%d, %d)  %d task(s)\n\n", m.cursorX, m.cursorY, len(tasks)))
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", side))
	s.WriteString("\n\n")
	s.WriteString(statusStyle.Render(m.status))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("(hjkl/arrows move, a add, e edit, d delete, enter details, t update, q quit)"))
	s.WriteString("\n")

	return s.String()
}

// RunBoard runs the board until the user quits.
func RunBoard(b *board.Board, interval time.Duration) error {
	p := tea.NewProgram(NewBoardModel(b, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
